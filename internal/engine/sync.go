package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/bamsammich/dirdiff/internal/event"
	"github.com/bamsammich/dirdiff/internal/platform"
	"github.com/bamsammich/dirdiff/internal/stats"
	"github.com/bamsammich/dirdiff/internal/tree"
)

// ErrUnreadable is returned when a sync reaches a node that failed to scan.
var ErrUnreadable = errors.New("entry could not be read during scan")

// SyncConfig controls Sync and Delete. The zero value copies at full speed
// with no progress reporting.
type SyncConfig struct {
	Events  chan<- event.Event
	Stats   *stats.Collector
	Journal *Journal
	BWLimit int64 // bytes/sec, 0 = unlimited
	DryRun  bool
}

// emit delivers a sync or delete event. Every event reaches the receiver
// unless ctx is cancelled first.
func (c SyncConfig) emit(ctx context.Context, e event.Event) {
	event.Emit(ctx, c.Events, e)
}

// notify delivers a scan or compare notification, dropping it when the
// receiver is not keeping up.
func (c SyncConfig) notify(e event.Event) {
	event.Send(c.Events, e)
}

// Sync copies node to dst: a directory is created and its children synced
// beneath it, a file replaces whatever is at dst. The first error stops the
// sync; files already copied stay in place.
func Sync(ctx context.Context, node tree.Node, dst string, cfg SyncConfig) error {
	s := &syncer{
		cfg:  cfg,
		root: node.Meta().Path,
	}
	if cfg.BWLimit > 0 {
		s.limiter = NewBWLimiter(cfg.BWLimit)
	}

	files, size := tree.CountFiles(node), node.Meta().Size
	if cfg.Stats != nil {
		cfg.Stats.SetTotals(files, size)
	}
	cfg.emit(ctx, event.Event{
		Type:      event.SyncStarted,
		Path:      s.root,
		Name:      node.Meta().Name,
		Total:     files,
		TotalSize: size,
	})

	if err := s.sync(ctx, node, dst); err != nil {
		return err
	}
	if cfg.Journal != nil {
		if err := cfg.Journal.Flush(); err != nil {
			return fmt.Errorf("flush journal: %w", err)
		}
	}
	cfg.emit(ctx, event.Event{Type: event.SyncComplete, Path: s.root, Total: files, TotalSize: size})
	return nil
}

type syncer struct {
	cfg     SyncConfig
	limiter *rate.Limiter
	root    string
}

func (s *syncer) sync(ctx context.Context, node tree.Node, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if node.Meta().Status == tree.Failure {
		return fmt.Errorf("sync %s: %w", node.Meta().Path, ErrUnreadable)
	}

	switch n := node.(type) {
	case *tree.Dir:
		if err := s.makeDir(ctx, n, dst); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := s.sync(ctx, child, filepath.Join(dst, child.Meta().Name)); err != nil {
				return err
			}
		}
		return nil
	case *tree.File:
		return s.syncFile(ctx, n, dst)
	}
	return nil
}

func (s *syncer) makeDir(ctx context.Context, d *tree.Dir, dst string) error {
	info, err := os.Lstat(dst)
	if err == nil && info.IsDir() {
		return nil
	}
	s.cfg.emit(ctx, event.Event{Type: event.DirCreated, Path: dst, Name: d.Name})
	if s.cfg.DryRun {
		return nil
	}
	if err == nil {
		// A non-directory is in the way.
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("remove %s: %w", dst, err)
		}
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dst, err)
	}
	if s.cfg.Stats != nil {
		s.cfg.Stats.AddDirsCreated(1)
	}
	return nil
}

func (s *syncer) syncFile(ctx context.Context, f *tree.File, dst string) error {
	if s.cfg.Stats != nil {
		s.cfg.Stats.SetCurrent(f.Name)
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		return s.fail(ctx, f, fmt.Errorf("stat %s: %w", f.Path, err))
	}
	rel := s.relPath(f.Path)

	if s.skip(rel, info, dst) {
		slog.Debug("skipping journaled file", "path", f.Path)
		if s.cfg.Stats != nil {
			s.cfg.Stats.AddFilesSkipped(1)
			s.cfg.Stats.AddBytesCopied(info.Size())
		}
		s.cfg.emit(ctx, event.Event{Type: event.FileSkipped, Path: f.Path, Name: f.Name, Size: info.Size()})
		return nil
	}

	written := info.Size()
	if !s.cfg.DryRun {
		written, err = s.copyFile(ctx, f.Path, dst, info)
		if err != nil {
			return s.fail(ctx, f, err)
		}
		if s.cfg.Journal != nil {
			if err := s.cfg.Journal.MarkCompleted(rel, info.Size(), info.ModTime().UnixNano()); err != nil {
				slog.Warn("journal write failed", "path", f.Path, "error", err)
			}
		}
	}

	if s.cfg.Stats != nil {
		s.cfg.Stats.AddFilesCopied(1)
		s.cfg.Stats.AddBytesCopied(written)
	}
	s.cfg.emit(ctx, event.Event{Type: event.FileCompleted, Path: f.Path, Name: f.Name, Size: written})
	return nil
}

// copyFile replaces dst with a full copy of src through a temp file in the
// destination directory.
func (s *syncer) copyFile(ctx context.Context, src, dst string, info fs.FileInfo) (int64, error) {
	if err := os.RemoveAll(dst); err != nil {
		return 0, fmt.Errorf("remove %s: %w", dst, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("create parent dir %s: %w", filepath.Dir(dst), err)
	}

	tmp := tmpPath(dst)
	tmpFiles.add(tmp)
	defer func() {
		tmpFiles.remove(tmp)
		_ = os.Remove(tmp) // no-op once renamed
	}()

	var written int64
	if s.limiter != nil {
		n, err := copyLimited(ctx, src, tmp, info.Mode().Perm(), s.limiter)
		if err != nil {
			return 0, fmt.Errorf("copy %s: %w", src, err)
		}
		written = n
	} else {
		res, err := platform.CopyFile(src, tmp)
		if err != nil {
			return 0, fmt.Errorf("copy %s: %w", src, err)
		}
		written = res.BytesWritten
	}

	if err := os.Chtimes(tmp, info.ModTime(), info.ModTime()); err != nil {
		return 0, fmt.Errorf("set times %s: %w", dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return 0, fmt.Errorf("rename %s -> %s: %w", tmp, dst, err)
	}
	return written, nil
}

// skip reports whether the journal shows rel as already copied and dst
// still matches it.
func (s *syncer) skip(rel string, info fs.FileInfo, dst string) bool {
	if s.cfg.Journal == nil {
		return false
	}
	if !s.cfg.Journal.IsCompleted(rel, info.Size(), info.ModTime().UnixNano()) {
		return false
	}
	dinfo, err := os.Stat(dst)
	return err == nil && dinfo.Mode().IsRegular() && dinfo.Size() == info.Size()
}

func (s *syncer) fail(ctx context.Context, f *tree.File, err error) error {
	if s.cfg.Stats != nil {
		s.cfg.Stats.AddFilesFailed(1)
	}
	s.cfg.emit(ctx, event.Event{Type: event.FileFailed, Path: f.Path, Name: f.Name, Error: err})
	return err
}

func (s *syncer) relPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func copyLimited(ctx context.Context, src, dst string, perm fs.FileMode, limiter *rate.Limiter) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, throttle(ctx, in, limiter))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Delete removes the entry at path, recursively for a directory. A missing
// path is an error.
func Delete(path string, cfg SyncConfig) error {
	return DeleteContext(context.Background(), path, cfg)
}

// DeleteContext is Delete with a context bounding event delivery.
func DeleteContext(ctx context.Context, path string, cfg SyncConfig) error {
	err := deletePath(path, cfg.DryRun)
	if err != nil {
		if cfg.Stats != nil {
			cfg.Stats.AddDeleteFailed(1)
		}
		cfg.emit(ctx, event.Event{Type: event.DeleteFailed, Path: path, Name: filepath.Base(path), Error: err})
		return err
	}
	if cfg.Stats != nil {
		cfg.Stats.AddDeleted(1)
	}
	cfg.emit(ctx, event.Event{Type: event.DeleteFile, Path: path, Name: filepath.Base(path)})
	return nil
}

func deletePath(path string, dryRun bool) error {
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	if dryRun {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}
