package tree

import (
	"errors"
	"path/filepath"
)

// SkipDir can be returned by a WalkFunc to skip a directory's children.
var SkipDir = errors.New("skip this directory")

// WalkFunc is called for each node visited by Walk.
type WalkFunc func(n Node) error

// Walk visits root and its descendants in pre-order. Returning SkipDir from
// fn on a directory skips its children; any other error stops the walk.
func Walk(root Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	err := walk(root, fn)
	if errors.Is(err, SkipDir) {
		return nil
	}
	return err
}

func walk(n Node, fn WalkFunc) error {
	if err := fn(n); err != nil {
		return err
	}
	d, ok := n.(*Dir)
	if !ok {
		return nil
	}
	for _, child := range d.Children {
		if err := walk(child, fn); err != nil {
			if errors.Is(err, SkipDir) {
				if child.IsDir() {
					continue
				}
				return nil
			}
			return err
		}
	}
	return nil
}

// Find returns the node at path under root, or nil.
func Find(root Node, path string) Node {
	if root == nil {
		return nil
	}
	path = filepath.Clean(path)
	var found Node
	_ = Walk(root, func(n Node) error {
		p := n.Meta().Path
		if p == path {
			found = n
			return errStop
		}
		if n.IsDir() && !isAncestor(p, path) {
			return SkipDir
		}
		return nil
	})
	return found
}

var errStop = errors.New("stop")

func isAncestor(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !hasParentPrefix(rel)
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// Index maps every node path under root to its node. Callers use the paths
// as stable identities, e.g. to restore expanded rows after a rescan.
func Index(root Node) map[string]Node {
	idx := make(map[string]Node)
	_ = Walk(root, func(n Node) error {
		idx[n.Meta().Path] = n
		return nil
	})
	return idx
}

// Rel returns n's path relative to root's path.
func Rel(root, n Node) (string, error) {
	return filepath.Rel(root.Meta().Path, n.Meta().Path)
}

// CountFiles returns the number of file nodes under n, including n itself.
func CountFiles(n Node) int64 {
	var count int64
	_ = Walk(n, func(c Node) error {
		if !c.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// Clone returns a deep copy of n that shares no nodes with the original.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *File:
		c := *v
		return &c
	case *Dir:
		c := &Dir{Entry: v.Entry, Children: make([]Node, len(v.Children))}
		for i, child := range v.Children {
			c.Children[i] = Clone(child)
		}
		return c
	default:
		return nil
	}
}
