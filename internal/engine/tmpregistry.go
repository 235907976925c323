package engine

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// tmpFiles holds the temp files of copies in flight so an interrupted
// process can remove them before exiting.
var tmpFiles = &tmpRegistry{}

type tmpRegistry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func (r *tmpRegistry) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paths == nil {
		r.paths = make(map[string]struct{})
	}
	r.paths[path] = struct{}{}
}

func (r *tmpRegistry) remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paths, path)
}

func (r *tmpRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

// CleanupTmpFiles removes the temp files of every copy still in flight.
func CleanupTmpFiles() {
	tmpFiles.mu.Lock()
	paths := make([]string, 0, len(tmpFiles.paths))
	for p := range tmpFiles.paths {
		paths = append(paths, p)
	}
	tmpFiles.paths = nil
	tmpFiles.mu.Unlock()

	for _, p := range paths {
		_ = os.Remove(p)
	}
}

// tmpPath returns a unique hidden sibling of dst to copy into before the
// final rename.
func tmpPath(dst string) string {
	dir, name := filepath.Split(dst)
	return filepath.Join(dir, "."+name+"."+uuid.NewString()+".dirdiff.tmp")
}
