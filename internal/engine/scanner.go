package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bamsammich/dirdiff/internal/filter"
	"github.com/bamsammich/dirdiff/internal/tree"
)

// ErrNotFound is returned by Scan when the root does not exist.
var ErrNotFound = fmt.Errorf("scan root: %w", fs.ErrNotExist)

// SystemEntries are OS metadata entries hidden unless IncludeSystem is set:
// the Finder metadata file and the macOS localized-directory marker.
var SystemEntries = []string{".DS_Store", ".localized"}

// ScanOptions controls which entries a scan keeps and how they are ordered.
type ScanOptions struct {
	Filter        *filter.Chain
	Locale        language.Tag
	IncludeHidden bool
	IncludeSystem bool
}

// Scanner builds a tree from a directory on disk. A Scanner is not safe for
// concurrent use; Scan creates one per call.
type Scanner struct {
	opts   ScanOptions
	coll   *collate.Collator
	root   string
	logger *slog.Logger
}

// NewScanner creates a scanner for root.
func NewScanner(root string, opts ScanOptions) *Scanner {
	return &Scanner{
		opts:   opts,
		coll:   collate.New(opts.Locale, collate.IgnoreCase, collate.Numeric),
		root:   filepath.Clean(root),
		logger: slog.Default().With("root", root),
	}
}

// Scan walks root depth-first and returns its tree. Only a missing root is
// an error (ErrNotFound); unreadable entries become Failure nodes.
func Scan(ctx context.Context, root string, opts ScanOptions) (tree.Node, error) {
	return NewScanner(root, opts).Scan(ctx)
}

// Scan walks the scanner's root. See the package-level Scan.
func (s *Scanner) Scan(ctx context.Context) (tree.Node, error) {
	info, err := os.Stat(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("scan %s: %w", s.root, ErrNotFound)
	}
	if err != nil {
		s.logger.Debug("stat failed", "path", s.root, "error", err)
		d := tree.NewDir(s.root, filepath.Base(s.root))
		d.Status = tree.Failure
		return d, nil
	}
	if !info.IsDir() {
		return tree.NewFile(s.root, filepath.Base(s.root), info.Size()), nil
	}
	d, err := s.scanDir(ctx, s.root, filepath.Base(s.root))
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Scanner) scanDir(ctx context.Context, path, name string) (*tree.Dir, error) {
	d := tree.NewDir(path, name)

	entries, err := os.ReadDir(path)
	if err != nil {
		s.logger.Debug("readdir failed", "path", path, "error", err)
		d.Status = tree.Failure
		return d, nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.visible(entry.Name()) {
			continue
		}
		childPath := filepath.Join(path, entry.Name())
		if !s.kept(childPath, entry.IsDir()) {
			continue
		}

		child, err := s.scanEntry(ctx, childPath, entry.Name(), entry.IsDir())
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		d.Children = append(d.Children, child)
		d.Size += child.Meta().Size
	}

	s.sortChildren(d.Children)
	return d, nil
}

// scanEntry resolves path with Stat so symlinks are followed. The caller has
// already filtered on the directory entry; a symlink that turns out to be a
// directory is filtered again with isDir set. It returns a nil node when the
// filter drops the entry.
func (s *Scanner) scanEntry(ctx context.Context, path, name string, entryIsDir bool) (tree.Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Debug("stat failed", "path", path, "error", err)
		f := tree.NewFile(path, name, 0)
		f.Status = tree.Failure
		return f, nil
	}

	if info.IsDir() && !entryIsDir && !s.kept(path, true) {
		return nil, nil
	}

	if info.IsDir() {
		d, err := s.scanDir(ctx, path, name)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return tree.NewFile(path, name, info.Size()), nil
}

// kept reports whether the user filter admits path.
func (s *Scanner) kept(path string, isDir bool) bool {
	if s.opts.Filter.Empty() {
		return true
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return true
	}
	return s.opts.Filter.Match(filepath.ToSlash(rel), isDir)
}

func (s *Scanner) visible(name string) bool {
	if !s.opts.IncludeSystem && slices.Contains(SystemEntries, name) {
		return false
	}
	if !s.opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return false
	}
	return true
}

// sortChildren orders by case-insensitive natural order, so "File2" sorts
// before "file10". Names equal under collation fall back to byte order.
func (s *Scanner) sortChildren(children []tree.Node) {
	slices.SortStableFunc(children, func(a, b tree.Node) int {
		an, bn := a.Meta().Name, b.Meta().Name
		if c := s.coll.CompareString(an, bn); c != 0 {
			return c
		}
		return strings.Compare(an, bn)
	})
}
