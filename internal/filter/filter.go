package filter

import "strings"

// Rule is a single include or exclude rule.
type Rule struct {
	pattern *pattern
	Include bool
}

// String renders the rule in filter-file syntax ("+ pat" or "- pat").
func (r Rule) String() string {
	if r.Include {
		return "+ " + r.pattern.source
	}
	return "- " + r.pattern.source
}

// Chain is an ordered rule list. The first matching rule decides whether a
// path is kept; paths no rule matches are kept.
type Chain struct {
	rules []Rule
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(glob string) error {
	return c.add(glob, false)
}

// AddInclude appends an include rule.
func (c *Chain) AddInclude(glob string) error {
	return c.add(glob, true)
}

// AddExcludes appends one exclude rule per glob, stopping at the first bad one.
func (c *Chain) AddExcludes(globs []string) error {
	for _, g := range globs {
		if err := c.AddExclude(g); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) add(glob string, include bool) error {
	p, err := compile(glob)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{pattern: p, Include: include})
	return nil
}

// Empty reports whether the chain has no rules.
func (c *Chain) Empty() bool {
	return c == nil || len(c.rules) == 0
}

// Rules returns a copy of the rules in evaluation order.
func (c *Chain) Rules() []Rule {
	if c == nil {
		return nil
	}
	return append([]Rule(nil), c.rules...)
}

// Match reports whether relPath should be KEPT. relPath uses forward
// slashes and is relative to the scan root.
func (c *Chain) Match(relPath string, isDir bool) bool {
	if c == nil {
		return true
	}
	for _, r := range c.rules {
		if r.pattern.match(relPath, isDir) {
			return r.Include
		}
	}
	return true
}

func (c *Chain) String() string {
	lines := make([]string, 0, len(c.Rules()))
	for _, r := range c.Rules() {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}
