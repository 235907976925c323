package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 30

// Progress is the caller-facing view of a running sync.
type Progress struct {
	TotalBytes     int64
	BytesCopied    int64
	TotalItems     int64
	ItemsCompleted int64
	Current        string
}

// Fraction returns the completed share of bytes in [0, 1], or 0 when there is
// nothing to copy.
func (p Progress) Fraction() float64 {
	if p.TotalBytes <= 0 {
		return 0
	}
	f := float64(p.BytesCopied) / float64(p.TotalBytes)
	if f > 1 {
		return 1
	}
	return f
}

// Collector aggregates sync and delete counters. All methods are safe for
// concurrent use.
type Collector struct {
	bytesTotal   atomic.Int64
	filesTotal   atomic.Int64
	bytesCopied  atomic.Int64
	filesCopied  atomic.Int64
	filesSkipped atomic.Int64
	filesFailed  atomic.Int64
	dirsCreated  atomic.Int64
	deleted      atomic.Int64
	deleteFailed atomic.Int64
	current      atomic.Pointer[string]
	startTime    time.Time

	// Written only by the presenter's Tick.
	mu         sync.Mutex
	throughput [ringSize]int64
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotals records the size of the work (called once before copying starts).
func (c *Collector) SetTotals(files, bytes int64) {
	c.filesTotal.Store(files)
	c.bytesTotal.Store(bytes)
}

func (c *Collector) AddBytesCopied(n int64)  { c.bytesCopied.Add(n) }
func (c *Collector) AddFilesCopied(n int64)  { c.filesCopied.Add(n) }
func (c *Collector) AddFilesSkipped(n int64) { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesFailed(n int64)  { c.filesFailed.Add(n) }
func (c *Collector) AddDirsCreated(n int64)  { c.dirsCreated.Add(n) }
func (c *Collector) AddDeleted(n int64)      { c.deleted.Add(n) }
func (c *Collector) AddDeleteFailed(n int64) { c.deleteFailed.Add(n) }

// SetCurrent records the name of the entry being processed.
func (c *Collector) SetCurrent(name string) { c.current.Store(&name) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	BytesTotal   int64
	FilesTotal   int64
	BytesCopied  int64
	FilesCopied  int64
	FilesSkipped int64
	FilesFailed  int64
	DirsCreated  int64
	Deleted      int64
	DeleteFailed int64
	Elapsed      time.Duration
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		BytesTotal:   c.bytesTotal.Load(),
		FilesTotal:   c.filesTotal.Load(),
		BytesCopied:  c.bytesCopied.Load(),
		FilesCopied:  c.filesCopied.Load(),
		FilesSkipped: c.filesSkipped.Load(),
		FilesFailed:  c.filesFailed.Load(),
		DirsCreated:  c.dirsCreated.Load(),
		Deleted:      c.deleted.Load(),
		DeleteFailed: c.deleteFailed.Load(),
		Elapsed:      c.Elapsed(),
	}
}

// Progress returns the current copy progress. Skipped files count as
// completed items.
func (c *Collector) Progress() Progress {
	p := Progress{
		TotalBytes:     c.bytesTotal.Load(),
		BytesCopied:    c.bytesCopied.Load(),
		TotalItems:     c.filesTotal.Load(),
		ItemsCompleted: c.filesCopied.Load() + c.filesSkipped.Load(),
	}
	if cur := c.current.Load(); cur != nil {
		p.Current = *cur
	}
	return p
}

// Tick samples the bytes copied since the previous tick. Called once per
// second by the presenter.
func (c *Collector) Tick() {
	current := c.bytesCopied.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n samples.
func (c *Collector) RollingSpeed(n int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		sum += c.throughput[(c.ringIdx-1-i+ringSize)%ringSize]
	}
	return float64(sum) / float64(count)
}

// ETA estimates remaining time from the rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesCopied.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"copied=%d skipped=%d failed=%d bytes=%d dirs=%d deleted=%d",
		s.FilesCopied, s.FilesSkipped, s.FilesFailed,
		s.BytesCopied, s.DirsCreated, s.Deleted,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
