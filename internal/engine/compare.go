package engine

import (
	"github.com/bamsammich/dirdiff/internal/tree"
)

// CompareOptions controls how file pairs of equal size are judged.
type CompareOptions struct {
	// VerifyContent hashes equal-size files and compares digests. When false,
	// equal size means unchanged.
	VerifyContent bool
}

// Compare annotates left and right in place with Status and ContainsDiff.
// It does nothing unless both are directories. Scan-time Failure statuses
// are preserved. Running Compare again on the same trees yields the same
// annotations.
func Compare(left, right tree.Node, opts CompareOptions) {
	l, lok := left.(*tree.Dir)
	r, rok := right.(*tree.Dir)
	if !lok || !rok || l.Children == nil || r.Children == nil {
		return
	}
	if l.Status == tree.Failure || r.Status == tree.Failure {
		l.ContainsDiff = true
		r.ContainsDiff = true
		return
	}
	compareDirs(l, r, opts)
}

// compareDirs compares the children of l and r and returns whether any of
// them differ. Both parents' ContainsDiff are set to the result.
func compareDirs(l, r *tree.Dir, opts CompareOptions) bool {
	rightByName := make(map[string]tree.Node, len(r.Children))
	for _, c := range r.Children {
		rightByName[c.Meta().Name] = c
	}

	diff := false
	seen := make(map[string]struct{}, len(l.Children))
	for _, lc := range l.Children {
		name := lc.Meta().Name
		seen[name] = struct{}{}
		rc, ok := rightByName[name]
		if !ok {
			markSubtree(lc, tree.Removed)
			diff = true
			continue
		}
		if comparePair(lc, rc, opts) {
			diff = true
		}
	}
	for _, rc := range r.Children {
		if _, ok := seen[rc.Meta().Name]; ok {
			continue
		}
		markSubtree(rc, tree.Added)
		diff = true
	}

	l.ContainsDiff = diff
	r.ContainsDiff = diff
	return diff
}

// comparePair classifies two nodes sharing a name and reports whether the
// pair differs.
func comparePair(lc, rc tree.Node, opts CompareOptions) bool {
	le, re := lc.Meta(), rc.Meta()

	if le.Status == tree.Failure || re.Status == tree.Failure {
		le.ContainsDiff = true
		re.ContainsDiff = true
		return true
	}

	switch l := lc.(type) {
	case *tree.Dir:
		r, ok := rc.(*tree.Dir)
		if !ok {
			return setPair(le, re, tree.Modified)
		}
		le.Status, re.Status = tree.Unchanged, tree.Unchanged
		return compareDirs(l, r, opts)
	case *tree.File:
		r, ok := rc.(*tree.File)
		if !ok {
			return setPair(le, re, tree.Modified)
		}
		return setPair(le, re, compareFiles(l, r, opts))
	}
	return false
}

func compareFiles(l, r *tree.File, opts CompareOptions) tree.Status {
	if l.Size != r.Size {
		return tree.Modified
	}
	if !opts.VerifyContent {
		return tree.Unchanged
	}
	l.Digest = Digest(l.Path)
	r.Digest = Digest(r.Path)
	if l.Digest == FailedDigest || r.Digest == FailedDigest || l.Digest != r.Digest {
		return tree.Modified
	}
	return tree.Unchanged
}

func setPair(le, re *tree.Entry, status tree.Status) bool {
	le.Status, re.Status = status, status
	differs := status.Differs()
	le.ContainsDiff, re.ContainsDiff = differs, differs
	return differs
}

// markSubtree marks n and every descendant with status. Nodes that failed
// to scan keep their Failure status.
func markSubtree(n tree.Node, status tree.Status) {
	_ = tree.Walk(n, func(c tree.Node) error {
		e := c.Meta()
		if e.Status != tree.Failure {
			e.Status = status
		}
		e.ContainsDiff = true
		return nil
	})
}
