package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// pattern is an rsync-style glob compiled to a regular expression. A single
// star matches within one path component and a double star crosses
// separators. ? matches one character except /, and [..] is a character
// class ([!..] negated).
//
// A leading / or any inner / anchors the pattern at the root; otherwise it
// matches the final path component(s). A trailing / restricts it to
// directories.
type pattern struct {
	re       *regexp.Regexp
	source   string
	anchored bool
	dirOnly  bool
}

func compile(glob string) (*pattern, error) {
	if strings.TrimSpace(glob) == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	p := &pattern{source: glob}
	body := glob

	if strings.HasSuffix(body, "/") {
		p.dirOnly = true
		body = strings.TrimRight(body, "/")
	}
	switch {
	case strings.HasPrefix(body, "/"):
		p.anchored = true
		body = strings.TrimLeft(body, "/")
	case strings.Contains(body, "/"):
		p.anchored = true
	}

	prefix := "(^|/)"
	if p.anchored {
		prefix = "^"
	}

	re, err := regexp.Compile(prefix + translate(body) + "$")
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", glob, err)
	}
	p.re = re
	return p, nil
}

func (p *pattern) match(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	return p.re.MatchString(relPath)
}

// translate turns glob syntax into regexp syntax.
func translate(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			if !strings.HasPrefix(glob[i:], "**") {
				b.WriteString("[^/]*")
				continue
			}
			if strings.HasPrefix(glob[i:], "**/") {
				b.WriteString("(.*/)?")
				i += 2
			} else {
				b.WriteString(".*")
				i++
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := classEnd(glob, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

// classEnd returns the index of the ] closing the class opened at start,
// or -1. A ] right after [ or [! is a literal member.
func classEnd(glob string, start int) int {
	j := start + 1
	if j < len(glob) && glob[j] == '!' {
		j++
	}
	if j < len(glob) && glob[j] == ']' {
		j++
	}
	for ; j < len(glob); j++ {
		if glob[j] == ']' {
			return j
		}
	}
	return -1
}
