package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dirdiff/internal/event"
	"github.com/bamsammich/dirdiff/internal/tree"
)

// writeTree creates files under root. Keys ending in "/" are directories.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func mustScan(t *testing.T, root string) *tree.Dir {
	t.Helper()
	n, err := Scan(context.Background(), root, ScanOptions{})
	require.NoError(t, err)
	d, ok := n.(*tree.Dir)
	require.True(t, ok, "root %s is not a directory", root)
	return d
}

// scanPair scans and compares two roots.
func scanPair(t *testing.T, left, right string, opts CompareOptions) (*tree.Dir, *tree.Dir) {
	t.Helper()
	l, r := mustScan(t, left), mustScan(t, right)
	Compare(l, r, opts)
	return l, r
}

func find(t *testing.T, root tree.Node, rel string) tree.Node {
	t.Helper()
	n := tree.Find(root, filepath.Join(root.Meta().Path, filepath.FromSlash(rel)))
	require.NotNil(t, n, "no node %s under %s", rel, root.Meta().Path)
	return n
}

func childNames(d *tree.Dir) []string {
	names := make([]string, 0, len(d.Children))
	for _, c := range d.Children {
		names = append(names, c.Meta().Name)
	}
	return names
}

type annotation struct {
	Status       tree.Status
	ContainsDiff bool
	Digest       string
}

// annotations captures the comparison state of every node keyed by path.
func annotations(root tree.Node) map[string]annotation {
	out := make(map[string]annotation)
	_ = tree.Walk(root, func(n tree.Node) error {
		a := annotation{Status: n.Meta().Status, ContainsDiff: n.Meta().ContainsDiff}
		if f, ok := n.(*tree.File); ok {
			a.Digest = f.Digest
		}
		out[n.Meta().Path] = a
		return nil
	})
	return out
}

func anyDiffers(root tree.Node) bool {
	found := false
	_ = tree.Walk(root, func(n tree.Node) error {
		if n.Meta().Status != tree.Unchanged {
			found = true
		}
		return nil
	})
	return found
}

func drain(ch chan event.Event) []event.Event {
	var out []event.Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func ofType(events []event.Event, typ event.Type) []event.Event {
	var out []event.Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
