package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/bamsammich/dirdiff/internal/tree"
)

// RenderOptions controls RenderTree.
type RenderOptions struct {
	ChangedOnly bool   // omit nodes that neither differ nor contain a difference
	Theme       *Theme // nil renders plain text
}

const (
	connMid  = "├── "
	connLast = "└── "
	pipe     = "│   "
	blank    = "    "
)

// Glyph returns the one-character marker for a status.
func Glyph(s tree.Status) string {
	switch s {
	case tree.Added:
		return "+"
	case tree.Removed:
		return "-"
	case tree.Modified:
		return "~"
	case tree.Failure:
		return "!"
	default:
		return " "
	}
}

// RenderTree writes root and its descendants to w, one line per node with
// the status glyph, name and size.
func RenderTree(w io.Writer, root tree.Node, opts RenderOptions) error {
	if root == nil {
		return nil
	}
	var b strings.Builder
	r := renderer{b: &b, opts: opts}
	r.line("", root, root.Meta().Path)
	if d, ok := root.(*tree.Dir); ok {
		r.children(d, "")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type renderer struct {
	b    *strings.Builder
	opts RenderOptions
}

func (r *renderer) visible(children []tree.Node) []tree.Node {
	if !r.opts.ChangedOnly {
		return children
	}
	out := make([]tree.Node, 0, len(children))
	for _, c := range children {
		if tree.Differs(c) {
			out = append(out, c)
		}
	}
	return out
}

func (r *renderer) children(d *tree.Dir, prefix string) {
	kids := r.visible(d.Children)
	for i, c := range kids {
		conn, next := connMid, pipe
		if i == len(kids)-1 {
			conn, next = connLast, blank
		}
		r.line(prefix+conn, c, c.Meta().Name)
		// Added and removed directories are listed in full; their
		// contents carry the same status.
		if cd, ok := c.(*tree.Dir); ok {
			r.children(cd, prefix+next)
		}
	}
}

func (r *renderer) line(prefix string, n tree.Node, label string) {
	t := r.opts.Theme
	e := n.Meta()

	name := label
	if n.IsDir() {
		name += "/"
	}
	switch {
	case e.Status.Differs():
		name = t.Status(e.Status, name)
	case n.IsDir():
		name = t.Dir(name)
	}

	fmt.Fprintf(r.b, "%s%s %s  %s\n",
		t.Muted(prefix),
		t.Status(e.Status, Glyph(e.Status)),
		name,
		t.Muted(FormatBytes(e.Size)),
	)
}
