// Package ramfs implements the in-memory filesystem backend the original
// kernel mounts at /tmp: vfs_mount("/tmp", &ramfs_fs_type) in vfs_init.
// Everything lives in a tree of nodes rooted at "/"; nothing survives a
// restart, and that is the entire point of mounting it there.
package ramfs

import (
	"bytes"
	"errors"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/goranb131/chthon/internal/vfs"
)

type node struct {
	name     string
	isDir    bool
	data     []byte
	modTime  time.Time
	children map[string]*node // only meaningful when isDir
}

func newDir(name string) *node {
	return &node{name: name, isDir: true, children: make(map[string]*node), modTime: stamp()}
}

// FS is an in-memory filesystem backend implementing vfs.Backend.
type FS struct {
	mu   sync.Mutex
	root *node
}

// New returns an empty ramfs rooted at "/".
func New() *FS {
	return &FS{root: newDir("/")}
}

func (f *FS) Name() string { return "ramfs" }

// stamp exists so every node construction site uses the same clock source;
// swap this out in tests that need determinism.
var stamp = time.Now

func split(p string) []string {
	p = strings.Trim(path.Clean(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// lookup walks segments from root, returning the node and, if missing, the
// deepest existing ancestor's error.
func (f *FS) lookup(p string) (*node, error) {
	segs := split(p)
	cur := f.root
	for _, s := range segs {
		if !cur.isDir {
			return nil, vfs.ErrNotDir
		}
		next, ok := cur.children[s]
		if !ok {
			return nil, vfs.ErrNotFound
		}
		cur = next
	}
	return cur, nil
}

func (f *FS) lookupParent(p string) (*node, string, error) {
	segs := split(p)
	if len(segs) == 0 {
		return nil, "", errors.New("ramfs: path has no parent")
	}
	cur := f.root
	for _, s := range segs[:len(segs)-1] {
		if !cur.isDir {
			return nil, "", vfs.ErrNotDir
		}
		next, ok := cur.children[s]
		if !ok {
			return nil, "", vfs.ErrNotFound
		}
		cur = next
	}
	return cur, segs[len(segs)-1], nil
}

func (f *FS) Open(p string) (vfs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.lookup(p)
	if err != nil {
		return nil, err
	}
	if n.isDir {
		return nil, vfs.ErrIsDir
	}
	return &handle{fs: f, n: n, buf: bytes.NewBuffer(append([]byte(nil), n.data...))}, nil
}

func (f *FS) Create(p string) (vfs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parent, name, err := f.lookupParent(p)
	if err != nil {
		return nil, err
	}
	if !parent.isDir {
		return nil, vfs.ErrNotDir
	}
	n, exists := parent.children[name]
	if !exists {
		n = &node{name: name, modTime: stamp()}
		parent.children[name] = n
	} else if n.isDir {
		return nil, vfs.ErrIsDir
	} else {
		n.data = nil
	}
	return &handle{fs: f, n: n}, nil
}

func (f *FS) Mkdir(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	parent, name, err := f.lookupParent(p)
	if err != nil {
		return err
	}
	if !parent.isDir {
		return vfs.ErrNotDir
	}
	if _, exists := parent.children[name]; exists {
		return vfs.ErrExists
	}
	parent.children[name] = newDir(name)
	return nil
}

func (f *FS) Stat(p string) (vfs.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.lookup(p)
	if err != nil {
		return vfs.Info{}, err
	}
	return vfs.Info{Name: n.name, IsDir: n.isDir, Size: int64(len(n.data))}, nil
}

func (f *FS) ReadDir(p string) ([]vfs.DirEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.lookup(p)
	if err != nil {
		return nil, err
	}
	if !n.isDir {
		return nil, vfs.ErrNotDir
	}
	out := make([]vfs.DirEntry, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, vfs.DirEntry{Name: c.name, IsDir: c.isDir, Size: int64(len(c.data))})
	}
	return out, nil
}

func (f *FS) Remove(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	parent, name, err := f.lookupParent(p)
	if err != nil {
		return err
	}
	n, ok := parent.children[name]
	if !ok {
		return vfs.ErrNotFound
	}
	if n.isDir && len(n.children) > 0 {
		return vfs.ErrNotEmpty
	}
	delete(parent.children, name)
	return nil
}

func (f *FS) RemoveRecursive(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	parent, name, err := f.lookupParent(p)
	if err != nil {
		return err
	}
	if _, ok := parent.children[name]; !ok {
		return vfs.ErrNotFound
	}
	delete(parent.children, name)
	return nil
}

// handle is an open file's read/write/close view onto a node. Write
// appends to the node's data immediately; the first Read snapshots the
// node's data into buf and later Reads drain that snapshot. Close does
// nothing.
type handle struct {
	fs  *FS
	n   *node
	buf *bytes.Buffer
	off int
}

func (h *handle) Read(p []byte) (int, error) {
	if h.buf == nil {
		h.fs.mu.Lock()
		h.buf = bytes.NewBuffer(append([]byte(nil), h.n.data...))
		h.fs.mu.Unlock()
	}
	return h.buf.Read(p)
}

func (h *handle) Write(p []byte) (int, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	h.n.data = append(h.n.data, p...)
	h.n.modTime = stamp()
	return len(p), nil
}

func (h *handle) Close() error {
	return nil
}

func (h *handle) Hash() (string, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	return vfs.HashBytes(h.n.data)
}
