// Package vfs implements the mount table, filesystem registry and file
// descriptor table described in the original kernel's vfs.c: a small,
// fixed-capacity registry of filesystem_type vtables, an ordered list of
// mount points resolved by longest-prefix match, and a flat array of open
// files addressed by small integer descriptors that are reused after Close.
package vfs

import (
	"sync"

	"github.com/goranb131/chthon/pkg/klog"
)

// MaxFS bounds the filesystem registry, matching the original's MAX_FS.
const MaxFS = 4

// MaxMounts bounds the mount table.
const MaxMounts = 8

// MaxFD bounds the open file table, matching the original's MAX_FD.
const MaxFD = 32

type mount struct {
	path    string
	backend Backend
}

// VFS owns the filesystem registry, mount table and file descriptor table.
// A single VFS is shared by every process in the kernel; descriptors are
// global, not per-process, exactly as in the original (fd_table is a file
// kernel-wide static, not a per-process member).
type VFS struct {
	mu sync.Mutex

	registry map[string]Backend
	mounts   []mount

	fds  [MaxFD]File
	free []int // descriptor indices freed by Close, reused before growing
	next int   // next never-yet-used descriptor
}

// New returns an empty VFS with no registered filesystems or mounts.
func New() *VFS {
	return &VFS{registry: make(map[string]Backend, MaxFS)}
}

// RegisterFilesystem adds a backend to the registry under its own Name().
// Mount looks backends up by name, but MountBackend can also be called
// directly with an already-constructed Backend that was never registered.
func (v *VFS) RegisterFilesystem(b Backend) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.registry[b.Name()]; ok {
		return ErrFSRegistered
	}
	if len(v.registry) >= MaxFS {
		return ErrTooManyFS
	}
	v.registry[b.Name()] = b
	return nil
}

// Mount attaches the backend previously registered under fsName at path.
func (v *VFS) Mount(path, fsName string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	b, ok := v.registry[fsName]
	if !ok {
		return ErrNotFound
	}
	return v.mountLocked(path, b)
}

// MountBackend attaches b at path without requiring prior registration,
// used for the root mount during boot (see cmd/chthon).
func (v *VFS) MountBackend(path string, b Backend) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mountLocked(path, b)
}

func (v *VFS) mountLocked(path string, b Backend) error {
	if len(v.mounts) >= MaxMounts {
		return ErrTooManyMount
	}
	v.mounts = append(v.mounts, mount{path: path, backend: b})
	klog.Info("vfs: mounted %s at %s", b.Name(), path)
	return nil
}

// findMount returns the backend whose mount path is the longest prefix of
// path, matching find_mount's behavior: "/" matches everything that nothing
// more specific claims.
func (v *VFS) findMount(path string) (Backend, string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var best *mount
	bestLen := -1
	for i := range v.mounts {
		m := &v.mounts[i]
		if !hasPathPrefix(path, m.path) {
			continue
		}
		if len(m.path) > bestLen {
			bestLen = len(m.path)
			best = m
		}
	}
	if best == nil {
		return nil, "", ErrNoMount
	}
	return best.backend, best.path, nil
}

func hasPathPrefix(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if len(path) < len(prefix) {
		return false
	}
	if path[:len(prefix)] != prefix {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// allocFD assigns a descriptor to f, reusing the most recently freed slot
// (freed slots are reused last-in, first-out) before growing the table (the original leaves this
// as an explicit open question; SPEC_FULL.md decides in favor of reuse so a
// long-running process cannot exhaust MaxFD through open/close churn).
func (v *VFS) allocFD(f File) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if n := len(v.free); n > 0 {
		fd := v.free[n-1]
		v.free = v.free[:n-1]
		v.fds[fd] = f
		return fd, nil
	}
	if v.next >= MaxFD {
		return -1, ErrNoFreeFD
	}
	fd := v.next
	v.next++
	v.fds[fd] = f
	return fd, nil
}

func (v *VFS) get(fd int) (File, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if fd < 0 || fd >= MaxFD || v.fds[fd] == nil {
		return nil, ErrBadFD
	}
	return v.fds[fd], nil
}

func (v *VFS) release(fd int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.fds[fd] = nil
	v.free = append(v.free, fd)
}
