package engine

import (
	"fmt"

	"github.com/bamsammich/dirdiff/internal/stats"
	"github.com/bamsammich/dirdiff/internal/tree"
)

// Summary counts the differences in a compared pair of trees. Added and
// Removed count files; Modified counts pairs, including type changes.
type Summary struct {
	Added        int
	Removed      int
	Modified     int
	Failed       int
	Unchanged    int
	AddedBytes   int64
	RemovedBytes int64
}

// HasChanges reports whether any difference or failure was found.
func (s Summary) HasChanges() bool {
	return s.Added > 0 || s.Removed > 0 || s.Modified > 0 || s.Failed > 0
}

// Summarize counts the annotations of a snapshot.
func Summarize(snap *Snapshot) Summary {
	var s Summary
	if snap == nil {
		return s
	}
	_ = tree.Walk(snap.Right, func(n tree.Node) error {
		e := n.Meta()
		switch {
		case e.Status == tree.Failure:
			s.Failed++
		case e.Status == tree.Modified:
			s.Modified++
		case n.IsDir():
		case e.Status == tree.Added:
			s.Added++
			s.AddedBytes += e.Size
		case e.Status == tree.Unchanged:
			s.Unchanged++
		}
		return nil
	})
	_ = tree.Walk(snap.Left, func(n tree.Node) error {
		e := n.Meta()
		switch {
		case e.Status == tree.Failure:
			s.Failed++
		case n.IsDir():
		case e.Status == tree.Removed:
			s.Removed++
			s.RemovedBytes += e.Size
		}
		return nil
	})
	return s
}

func (s Summary) String() string {
	if !s.HasChanges() {
		return fmt.Sprintf("No differences (%d files unchanged).", s.Unchanged)
	}
	out := fmt.Sprintf("%d added (%s), %d removed (%s), %d modified, %d unchanged",
		s.Added, stats.FormatBytes(s.AddedBytes),
		s.Removed, stats.FormatBytes(s.RemovedBytes),
		s.Modified, s.Unchanged)
	if s.Failed > 0 {
		out += fmt.Sprintf(", %d unreadable", s.Failed)
	}
	return out
}
