package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bamsammich/dirdiff/internal/event"
	"github.com/bamsammich/dirdiff/internal/tree"
)

// Direction picks the source side of a SyncPath.
type Direction int

const (
	ToRight Direction = iota // copy left -> right
	ToLeft                   // copy right -> left
)

func (d Direction) String() string {
	if d == ToLeft {
		return "left"
	}
	return "right"
}

// Side names one of the two compared roots.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Snapshot is the result of one scan, compare and merge pass. It is never
// mutated after publication. Left or Right is nil when that root is missing.
type Snapshot struct {
	Left      tree.Node
	Right     tree.Node
	Unified   tree.Node
	ScannedAt time.Time
}

// SessionConfig holds the roots and options shared by every pass.
type SessionConfig struct {
	LeftRoot  string
	RightRoot string
	Scan      ScanOptions
	Compare   CompareOptions
	Sync      SyncConfig // also carries the Events channel for scan progress
}

// Session owns the trees of a left/right comparison and rebuilds them after
// every change it makes.
type Session struct {
	cfg     SessionConfig
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex // serializes passes and mutations
}

// NewSession creates a session. Roots are made absolute; no scan runs until
// Refresh.
func NewSession(cfg SessionConfig) (*Session, error) {
	var err error
	if cfg.LeftRoot, err = filepath.Abs(cfg.LeftRoot); err != nil {
		return nil, fmt.Errorf("resolve left root: %w", err)
	}
	if cfg.RightRoot, err = filepath.Abs(cfg.RightRoot); err != nil {
		return nil, fmt.Errorf("resolve right root: %w", err)
	}
	return &Session{cfg: cfg}, nil
}

// Current returns the latest published snapshot, or nil before the first
// Refresh.
func (s *Session) Current() *Snapshot {
	return s.current.Load()
}

// Refresh scans both roots concurrently, compares and merges them, and
// publishes the result. It fails only when neither root exists or the
// context is cancelled.
func (s *Session) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

func (s *Session) refresh(ctx context.Context) (*Snapshot, error) {
	var left, right tree.Node
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		left, err = s.scanSide(gctx, s.cfg.LeftRoot)
		return err
	})
	g.Go(func() (err error) {
		right, err = s.scanSide(gctx, s.cfg.RightRoot)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	switch {
	case left == nil && right == nil:
		return nil, fmt.Errorf("scan %s and %s: %w", s.cfg.LeftRoot, s.cfg.RightRoot, ErrNotFound)
	case left == nil:
		markSubtree(right, tree.Added)
	case right == nil:
		markSubtree(left, tree.Removed)
	default:
		Compare(left, right, s.cfg.Compare)
	}

	s.cfg.Sync.notify(event.Event{Type: event.CompareComplete, Path: s.cfg.LeftRoot})

	snap := &Snapshot{
		Left:      left,
		Right:     right,
		Unified:   Merge(left, right),
		ScannedAt: time.Now(),
	}
	s.current.Store(snap)
	slog.Debug("refreshed", "left", s.cfg.LeftRoot, "right", s.cfg.RightRoot)
	return snap, nil
}

// scanSide scans root, returning a nil node when it does not exist.
func (s *Session) scanSide(ctx context.Context, root string) (tree.Node, error) {
	s.cfg.Sync.notify(event.Event{Type: event.ScanStarted, Path: root})
	n, err := Scan(ctx, root, s.cfg.Scan)
	if errors.Is(err, ErrNotFound) {
		slog.Debug("root missing", "path", root)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.cfg.Sync.notify(event.Event{
		Type:      event.ScanComplete,
		Path:      root,
		Total:     tree.CountFiles(n),
		TotalSize: n.Meta().Size,
	})
	return n, nil
}

// SyncPath copies the entry at rel (relative to both roots) to the other
// side, then refreshes. rel "." syncs the whole root.
func (s *Session) SyncPath(ctx context.Context, rel string, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}

	srcTree, srcRoot, dstRoot := snap.Left, s.cfg.LeftRoot, s.cfg.RightRoot
	if dir == ToLeft {
		srcTree, srcRoot, dstRoot = snap.Right, s.cfg.RightRoot, s.cfg.LeftRoot
	}

	node, err := lookup(srcTree, srcRoot, rel)
	if err != nil {
		return fmt.Errorf("sync %s: %w", rel, err)
	}

	syncErr := Sync(ctx, node, filepath.Join(dstRoot, rel), s.cfg.Sync)
	if _, err := s.refresh(ctx); err != nil && syncErr == nil {
		return err
	}
	return syncErr
}

// DeletePath removes the entry at rel on one side, then refreshes.
func (s *Session) DeletePath(ctx context.Context, rel string, side Side) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}

	t, root := snap.Left, s.cfg.LeftRoot
	if side == Right {
		t, root = snap.Right, s.cfg.RightRoot
	}

	node, err := lookup(t, root, rel)
	if err != nil {
		return fmt.Errorf("delete %s: %w", rel, err)
	}

	delErr := DeleteContext(ctx, node.Meta().Path, s.cfg.Sync)
	if _, err := s.refresh(ctx); err != nil && delErr == nil {
		return err
	}
	return delErr
}

func (s *Session) snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.refresh(ctx)
}

// ErrNoEntry is returned when a relative path is not present in a tree.
var ErrNoEntry = errors.New("no such entry")

func lookup(t tree.Node, root, rel string) (tree.Node, error) {
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("path %q escapes the root", rel)
	}
	if t == nil {
		return nil, ErrNoEntry
	}
	n := tree.Find(t, filepath.Join(root, rel))
	if n == nil {
		return nil, ErrNoEntry
	}
	return n, nil
}
