package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/dirdiff/internal/stats"
)

func newPlain(out, errOut *bytes.Buffer, root string) *plainPresenter {
	return &plainPresenter{w: out, errW: errOut, stats: stats.NewCollector(), root: root}
}

func TestPlainPresenterFileCompleted(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, "/src")

	events := make(chan Event, 10)
	events <- Event{Type: FileCompleted, Path: "/src/dir/file.txt", Size: 1024}
	events <- Event{Type: FileCompleted, Path: "/src/dir/big.bin", Size: 1024 * 1024 * 100}
	close(events)

	assert.NoError(t, p.Run(events))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "dir/file.txt  1.0 KiB", lines[0])
	assert.Equal(t, "dir/big.bin  100.0 MiB", lines[1])
}

func TestPlainPresenterEvents(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"failed", Event{Type: FileFailed, Path: "/src/bad.txt", Error: errors.New("permission denied")}, "bad.txt  permission denied"},
		{"failed without error", Event{Type: FileFailed, Path: "/src/bad.txt"}, "bad.txt  error"},
		{"skipped", Event{Type: FileSkipped, Path: "/src/skip.txt"}, "skip.txt  skipped"},
		{"delete", Event{Type: DeleteFile, Path: "/src/extra.txt"}, "delete: extra.txt"},
		{"delete failed", Event{Type: DeleteFailed, Path: "/src/x", Error: errors.New("busy")}, "delete: x  busy"},
		{"sync started", Event{Type: SyncStarted, Path: "/src/tree", Total: 1200, TotalSize: 2048}, "sync: tree  1,200 files  2.0 KiB"},
		{"scan complete", Event{Type: ScanComplete, Path: "/left", Total: 3, TotalSize: 10}, "scanned /left  3 files  10 B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			p := newPlain(&out, &errOut, "/src")
			p.handleEvent(tt.ev)
			assert.Equal(t, tt.want+"\n", out.String())
		})
	}
}

func TestPlainPresenterSilentEvents(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, "")

	for _, ev := range []Event{
		{Type: ScanStarted}, {Type: CompareComplete}, {Type: DirCreated}, {Type: SyncComplete},
	} {
		p.handleEvent(ev)
	}
	assert.Empty(t, out.String())
}

func TestPlainPresenterProgress(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, "")

	p.printProgress()
	assert.Equal(t, "progress: 0 B copied 0 files\n", errOut.String())

	errOut.Reset()
	p.stats.SetTotals(4, 4096)
	p.stats.AddBytesCopied(2048)
	p.stats.AddFilesCopied(1)
	p.stats.AddFilesSkipped(1)
	p.printProgress()
	assert.True(t, strings.HasPrefix(errOut.String(), "progress: 50% 2.0 KiB/4.0 KiB 2/4 files"))
}

func TestPlainPresenterSummary(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddFilesCopied(100)
	collector.AddBytesCopied(1024 * 1024)

	p := &plainPresenter{stats: collector}
	s := p.Summary()
	assert.Contains(t, s, "done ✓")
	assert.Contains(t, s, "files 100")
	assert.Contains(t, s, "errors 0")
	assert.NotContains(t, s, "skipped")
}

func TestCompletionSummary(t *testing.T) {
	snap := stats.Snapshot{
		FilesCopied:  1500,
		FilesSkipped: 2,
		FilesFailed:  1,
		Deleted:      3,
		DeleteFailed: 1,
		BytesCopied:  2048,
		Elapsed:      2 * time.Second,
	}
	assert.Equal(t,
		"done ✗  files 1,500  skipped 2  deleted 3  size 2.0 KiB  avg 1.0 KiB/s  time 2s  errors 2",
		completionSummary(snap))
}

func TestQuietPresenterSummary(t *testing.T) {
	collector := stats.NewCollector()
	p := &quietPresenter{stats: collector}

	events := make(chan Event, 1)
	events <- Event{Type: FileCompleted}
	close(events)
	assert.NoError(t, p.Run(events))
	assert.Empty(t, p.Summary())

	collector.AddFilesFailed(1)
	assert.Contains(t, p.Summary(), "errors 1")
}
