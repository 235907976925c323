package tree

// Status classifies a node relative to its counterpart in the other tree.
type Status int

const (
	Unchanged Status = iota
	Added
	Removed
	Modified
	Failure
)

var statusNames = [...]string{
	Unchanged: "unchanged",
	Added:     "added",
	Removed:   "removed",
	Modified:  "modified",
	Failure:   "failure",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Differs reports whether s marks the node as different from its counterpart.
func (s Status) Differs() bool {
	return s != Unchanged
}

// Entry is the identity and comparison state shared by files and directories.
// The comparator mutates Status, ContainsDiff and File.Digest only.
type Entry struct {
	Path         string // absolute path
	Name         string // final path component
	Size         int64  // bytes; for a directory the sum of its children
	Status       Status
	ContainsDiff bool // this node or a descendant differs
}

// Node is either a *File or a *Dir.
type Node interface {
	Meta() *Entry
	IsDir() bool
	isNode()
}

// File is a regular file (or anything that is not a directory).
type File struct {
	Entry
	Digest string // set only after a content comparison
}

// Dir is a directory. Children is never nil for a scanned directory,
// even when the directory is empty or could not be listed.
type Dir struct {
	Entry
	Children []Node
}

func (f *File) Meta() *Entry { return &f.Entry }
func (*File) IsDir() bool    { return false }
func (*File) isNode()        {}

func (d *Dir) Meta() *Entry { return &d.Entry }
func (*Dir) IsDir() bool    { return true }
func (*Dir) isNode()        {}

// NewFile creates a file node.
func NewFile(path, name string, size int64) *File {
	return &File{Entry: Entry{Path: path, Name: name, Size: size}}
}

// NewDir creates a directory node with an empty, non-nil children slice.
func NewDir(path, name string) *Dir {
	return &Dir{Entry: Entry{Path: path, Name: name}, Children: []Node{}}
}

// Differs reports whether n itself or any descendant differs.
func Differs(n Node) bool {
	e := n.Meta()
	return e.Status.Differs() || e.ContainsDiff
}
