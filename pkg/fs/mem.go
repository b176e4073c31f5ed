package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Mem is an in-memory [FS]. The root directory always exists; other
// directories are created by [Mem.MkdirAll]. Writes replace the whole file
// under a lock, so they are atomic with respect to readers.
//
// The zero value is not usable; call [NewMem].
type Mem struct {
	mu    sync.RWMutex
	nodes map[string]*memNode

	// Now stamps modification times. Defaults to [time.Now].
	Now func() time.Time
}

type memNode struct {
	data  []byte
	mode  os.FileMode
	mtime time.Time
	dir   bool
}

// NewMem returns an empty in-memory filesystem.
func NewMem() *Mem {
	return &Mem{nodes: make(map[string]*memNode), Now: time.Now}
}

func memKey(path string) string {
	return filepath.Clean(path)
}

func isRoot(key string) bool {
	return key == "." || key == string(filepath.Separator) || filepath.Dir(key) == key
}

func (m *Mem) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}

	return m.Now()
}

// ReadFile returns a copy of the file's content.
func (m *Mem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.nodes[memKey(path)]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	if n.dir {
		return nil, &os.PathError{Op: "read", Path: path, Err: errIsDir}
	}

	return append([]byte(nil), n.data...), nil
}

// WriteFileAtomic stores a copy of data at path.
func (m *Mem) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	key := memKey(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirExistsLocked(filepath.Dir(key)) {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	if n, ok := m.nodes[key]; ok && n.dir {
		return &os.PathError{Op: "open", Path: path, Err: errIsDir}
	}

	m.nodes[key] = &memNode{data: append([]byte(nil), data...), mode: perm, mtime: m.now()}

	return nil
}

// ReadDir lists the direct children of path sorted by name.
func (m *Mem) ReadDir(path string) ([]os.DirEntry, error) {
	key := memKey(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.dirExistsLocked(key) {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	var out []os.DirEntry

	for childKey, n := range m.nodes {
		if childKey == key || filepath.Dir(childKey) != key {
			continue
		}

		out = append(out, iofs.FileInfoToDirEntry(n.info(filepath.Base(childKey))))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })

	return out, nil
}

// MkdirAll creates path and any missing parents.
func (m *Mem) MkdirAll(path string, perm os.FileMode) error {
	key := memKey(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	var missing []string

	for cur := key; !isRoot(cur); cur = filepath.Dir(cur) {
		n, ok := m.nodes[cur]
		if ok {
			if !n.dir {
				return &os.PathError{Op: "mkdir", Path: cur, Err: errNotDir}
			}

			break
		}

		missing = append(missing, cur)
	}

	for _, dir := range missing {
		m.nodes[dir] = &memNode{mode: perm | os.ModeDir, mtime: m.now(), dir: true}
	}

	return nil
}

// Stat describes path.
func (m *Mem) Stat(path string) (os.FileInfo, error) {
	key := memKey(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if isRoot(key) {
		return memInfo{name: filepath.Base(key), mode: os.ModeDir | 0o755}, nil
	}

	n, ok := m.nodes[key]
	if !ok {
		return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
	}

	return n.info(filepath.Base(key)), nil
}

// Exists reports whether path is a file or directory.
func (m *Mem) Exists(path string) (bool, error) {
	_, err := m.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// Paths returns every file path, sorted. Directories are omitted.
func (m *Mem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string

	for k, n := range m.nodes {
		if !n.dir {
			out = append(out, k)
		}
	}

	sort.Strings(out)

	return out
}

func (m *Mem) dirExistsLocked(key string) bool {
	if isRoot(key) {
		return true
	}

	n, ok := m.nodes[key]

	return ok && n.dir
}

func (n *memNode) info(name string) memInfo {
	mode := n.mode
	if n.dir {
		mode |= os.ModeDir
	}

	return memInfo{name: name, size: int64(len(n.data)), mode: mode, mtime: n.mtime}
}

type memInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	mtime time.Time
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() os.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return i.mtime }
func (i memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i memInfo) Sys() any           { return nil }

type memError string

func (e memError) Error() string { return string(e) }

const (
	errIsDir  memError = "is a directory"
	errNotDir memError = "not a directory"
)

// Compile-time interface check.
var _ FS = (*Mem)(nil)
