package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_OpenClose(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	j, err := OpenJournal("/src", "/dst")
	require.NoError(t, err)
	assert.FileExists(t, j.Path())
	require.NoError(t, j.Close())
}

func TestJournal_MarkAndCheck(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	j, err := OpenJournal("/src", "/dst")
	require.NoError(t, err)
	defer j.Close()

	assert.False(t, j.IsCompleted("file.txt", 100, 12345))

	require.NoError(t, j.MarkCompleted("file.txt", 100, 12345))
	assert.True(t, j.IsCompleted("file.txt", 100, 12345))

	assert.False(t, j.IsCompleted("file.txt", 200, 12345), "size differs")
	assert.False(t, j.IsCompleted("file.txt", 100, 99999), "mtime differs")
	assert.False(t, j.IsCompleted("other.txt", 100, 12345))
}

func TestJournal_CheckDoesNotCommitBatch(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	j, err := OpenJournal("/src", "/dst")
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.MarkCompleted("a.txt", 1, 1))
	require.NoError(t, j.MarkCompleted("a.txt", 2, 2))
	require.NoError(t, j.MarkCompleted("b.txt", 3, 3))

	assert.True(t, j.IsCompleted("a.txt", 2, 2), "newest pending entry wins")
	assert.False(t, j.IsCompleted("a.txt", 1, 1))
	assert.True(t, j.IsCompleted("b.txt", 3, 3))

	j.mu.Lock()
	pending := len(j.batch)
	j.mu.Unlock()
	assert.Equal(t, 3, pending, "checks must leave the batch to the size or timer flush")

	require.NoError(t, j.Flush())
	assert.True(t, j.IsCompleted("a.txt", 2, 2), "read back from the database")
}

func TestJournal_BatchFlush(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	j, err := OpenJournal("/src", "/dst")
	require.NoError(t, err)
	defer j.Close()

	for i := range journalBatchSize + 50 {
		require.NoError(t, j.MarkCompleted(fmt.Sprintf("dir/file_%d.txt", i), int64(i*100), int64(i*1000)))
	}
	require.NoError(t, j.Flush())

	assert.True(t, j.IsCompleted("dir/file_0.txt", 0, 0))
	assert.True(t, j.IsCompleted("dir/file_149.txt", 14900, 149000))
}

func TestJournal_JobIDDeterminism(t *testing.T) {
	id1 := journalJobID("/src/a", "/dst/b")
	id2 := journalJobID("/src/a", "/dst/b")
	id3 := journalJobID("/src/a", "/dst/c")

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.Len(t, id1, 16)
}

func TestJournal_PathUsesTempDirWithoutRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Contains(t, journalPath("abc"), "dirdiff-abc.db")
}

func TestJournal_Resume(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	j, err := OpenJournal("/src", "/dst")
	require.NoError(t, err)
	require.NoError(t, j.MarkCompleted("done.txt", 500, 99999))
	require.NoError(t, j.Close())

	j, err = OpenJournal("/src", "/dst")
	require.NoError(t, err)
	defer j.Close()

	assert.True(t, j.IsCompleted("done.txt", 500, 99999))
	assert.False(t, j.IsCompleted("new.txt", 100, 12345))
}

func TestJournal_Remove(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	j, err := OpenJournal("/src", "/dst")
	require.NoError(t, err)
	path := j.Path()
	require.NoError(t, j.Close())

	require.NoError(t, j.Remove())
	assert.NoFileExists(t, path)
}
