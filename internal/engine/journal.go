package engine

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"
)

const journalBatchSize = 100

// Journal records files a sync has finished so an interrupted sync of the
// same source and destination can skip them on the next run.
type Journal struct {
	db   *sql.DB
	path string

	// Pending MarkCompleted calls, flushed every journalBatchSize entries
	// or by the background ticker.
	mu      sync.Mutex
	batch   []journalEntry
	done    chan struct{}
	stopped bool
}

type journalEntry struct {
	relPath   string
	size      int64
	mtimeNano int64
}

// OpenJournal opens (or creates) the journal for a src/dst pair. The DB is
// stored at $XDG_RUNTIME_DIR/dirdiff/<job-id>.db or in the temp dir.
func OpenJournal(src, dst string) (*Journal, error) {
	dbPath := journalPath(journalJobID(src, dst))

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	j := &Journal{
		db:   db,
		path: dbPath,
		done: make(chan struct{}),
	}
	if err := j.init(src, dst); err != nil {
		db.Close()
		return nil, err
	}

	go j.flushLoop()
	return j, nil
}

func (j *Journal) init(src, dst string) error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS completed (
			path    TEXT PRIMARY KEY,
			size    INTEGER NOT NULL,
			mtime   INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	var storedSrc, storedDst string
	err = j.db.QueryRow("SELECT value FROM meta WHERE key = 'src_root'").Scan(&storedSrc)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = j.db.Exec(
			"INSERT OR REPLACE INTO meta (key, value) VALUES ('src_root', ?), ('dst_root', ?)",
			src, dst,
		)
		if err != nil {
			return fmt.Errorf("store meta: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read meta: %w", err)
	}

	if err := j.db.QueryRow("SELECT value FROM meta WHERE key = 'dst_root'").Scan(&storedDst); err != nil {
		return fmt.Errorf("read meta: %w", err)
	}
	if storedSrc != src || storedDst != dst {
		return fmt.Errorf("journal roots mismatch: stored %s->%s, got %s->%s",
			storedSrc, storedDst, src, dst)
	}
	return nil
}

// IsCompleted reports whether relPath was recorded with the given source
// size and modification time.
func (j *Journal) IsCompleted(relPath string, size, mtimeNano int64) bool {
	if e, ok := j.pending(relPath); ok {
		return e.size == size && e.mtimeNano == mtimeNano
	}
	var storedSize, storedMtime int64
	err := j.db.QueryRow(
		"SELECT size, mtime FROM completed WHERE path = ?", relPath,
	).Scan(&storedSize, &storedMtime)
	if err != nil {
		return false
	}
	return storedSize == size && storedMtime == mtimeNano
}

// pending returns the newest unflushed entry for relPath.
func (j *Journal) pending(relPath string) (journalEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.batch) - 1; i >= 0; i-- {
		if j.batch[i].relPath == relPath {
			return j.batch[i], true
		}
	}
	return journalEntry{}, false
}

// MarkCompleted records relPath as copied.
func (j *Journal) MarkCompleted(relPath string, size, mtimeNano int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.batch = append(j.batch, journalEntry{relPath: relPath, size: size, mtimeNano: mtimeNano})
	if len(j.batch) >= journalBatchSize {
		return j.flushLocked()
	}
	return nil
}

// Flush writes any pending entries to the database.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.flushLocked()
}

func (j *Journal) flushLocked() error {
	if len(j.batch) == 0 {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO completed (path, size, mtime) VALUES (?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range j.batch {
		if _, err := stmt.Exec(e.relPath, e.size, e.mtimeNano); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", e.relPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	j.batch = j.batch[:0]
	return nil
}

func (j *Journal) flushLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			_ = j.Flush()
		}
	}
}

// Close flushes pending writes and closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	if !j.stopped {
		j.stopped = true
		close(j.done)
	}
	err := j.flushLocked()
	j.mu.Unlock()
	if cerr := j.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// Remove deletes the journal database and its WAL side files.
func (j *Journal) Remove() error {
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(j.path + suffix)
	}
	return os.Remove(j.path)
}

// Path returns the path to the journal database file.
func (j *Journal) Path() string {
	return j.path
}

// journalJobID derives a stable job ID from the source and destination.
func journalJobID(src, dst string) string {
	h := blake3.New()
	h.Write([]byte(src))
	h.Write([]byte{0})
	h.Write([]byte(dst))
	digest := h.Sum(nil)
	return hex.EncodeToString(digest[:8])
}

func journalPath(jobID string) string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "dirdiff", jobID+".db")
	}
	return filepath.Join(os.TempDir(), "dirdiff-"+jobID+".db")
}
