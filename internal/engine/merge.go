package engine

import (
	"maps"
	"slices"

	"github.com/bamsammich/dirdiff/internal/tree"
)

// Merge derives a unified tree from two compared trees without mutating
// either. Where both sides hold a directory of the same name the result is
// a new directory carrying the right side's metadata; everywhere else the
// existing node is shared, preferring the right side.
func Merge(left, right tree.Node) tree.Node {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	l, lok := left.(*tree.Dir)
	r, rok := right.(*tree.Dir)
	if !lok || !rok {
		return right
	}
	return mergeDirs(l, r)
}

func mergeDirs(l, r *tree.Dir) *tree.Dir {
	leftByName := byName(l.Children)
	rightByName := byName(r.Children)

	names := make(map[string]struct{}, len(leftByName)+len(rightByName))
	for name := range leftByName {
		names[name] = struct{}{}
	}
	for name := range rightByName {
		names[name] = struct{}{}
	}

	merged := &tree.Dir{Entry: r.Entry, Children: make([]tree.Node, 0, len(names))}
	for _, name := range slices.Sorted(maps.Keys(names)) {
		merged.Children = append(merged.Children, Merge(leftByName[name], rightByName[name]))
	}
	return merged
}

func byName(children []tree.Node) map[string]tree.Node {
	m := make(map[string]tree.Node, len(children))
	for _, c := range children {
		m[c.Meta().Name] = c
	}
	return m
}
