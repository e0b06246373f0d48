// Package abyssfs implements the disk-backed filesystem backend the
// original kernel mounts at "/": vfs_mount("/", &abyssfs_fs_type) in
// vfs_init. Backend internals are deliberately unspecified by the contract
// the VFS depends on, so this implementation is free to choose its own
// on-disk layout: a superblock, a flat path-keyed inode table persisted in
// a reserved run of sectors, and a bump allocator handing out the data
// region one sector at a time. Nothing here is ever reclaimed by Remove;
// a freelist is future work (see DESIGN.md).
package abyssfs

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/goranb131/chthon/internal/blockdev"
	"github.com/goranb131/chthon/internal/vfs"
)

const magic = 0x41627973 // "Abys"

// ErrInodeTableFull is returned by Format/flush when the inode table no
// longer fits in its reserved sectors.
var ErrInodeTableFull = errors.New("abyssfs: inode table exceeds reserved sectors")

type superblock struct {
	Magic             uint32
	InodeTableSectors uint32
	DataStartSector   uint64
	NextDataSector    uint64
}

type inode struct {
	Path        string
	IsDir       bool
	Size        int64
	StartSector uint64
	SectorCount uint64
}

// FS is a disk-backed filesystem backend implementing vfs.Backend.
type FS struct {
	mu  sync.Mutex
	dev *blockdev.Device
	sb  superblock
	ino map[string]*inode
}

// Format lays down an empty filesystem on dev, reserving inodeTableSectors
// sectors right after the superblock for the (gob-encoded) inode table.
func Format(dev *blockdev.Device, inodeTableSectors uint32) error {
	sb := superblock{
		Magic:             magic,
		InodeTableSectors: inodeTableSectors,
		DataStartSector:   1 + uint64(inodeTableSectors),
		NextDataSector:    1 + uint64(inodeTableSectors),
	}
	fs := &FS{dev: dev, sb: sb, ino: map[string]*inode{
		"/": {Path: "/", IsDir: true},
	}}
	return fs.flush()
}

// Mount reads a previously Format-ed filesystem back off dev.
func Mount(dev *blockdev.Device) (*FS, error) {
	fs := &FS{dev: dev}
	if err := fs.readSuperblock(); err != nil {
		return nil, err
	}
	if err := fs.readInodeTable(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (f *FS) Name() string { return "abyssfs" }

func (f *FS) readSuperblock() error {
	buf := make([]byte, blockdev.SectorSize)
	if err := f.dev.ReadSector(0, buf); err != nil {
		return err
	}
	dec := gob.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&f.sb); err != nil {
		return err
	}
	if f.sb.Magic != magic {
		return errors.New("abyssfs: bad superblock magic")
	}
	return nil
}

func (f *FS) readInodeTable() error {
	var buf bytes.Buffer
	sector := make([]byte, blockdev.SectorSize)
	for i := uint32(0); i < f.sb.InodeTableSectors; i++ {
		if err := f.dev.ReadSector(uint64(1+i), sector); err != nil {
			return err
		}
		buf.Write(sector)
	}
	f.ino = make(map[string]*inode)
	dec := gob.NewDecoder(&buf)
	return dec.Decode(&f.ino)
}

// flush persists the superblock and inode table back to their reserved
// sectors. Callers hold f.mu.
func (f *FS) flush() error {
	var sbBuf bytes.Buffer
	if err := gob.NewEncoder(&sbBuf).Encode(f.sb); err != nil {
		return err
	}
	if sbBuf.Len() > blockdev.SectorSize {
		return errors.New("abyssfs: superblock overflowed a sector")
	}
	sbSector := make([]byte, blockdev.SectorSize)
	copy(sbSector, sbBuf.Bytes())
	if err := f.dev.WriteSector(0, sbSector); err != nil {
		return err
	}

	var inoBuf bytes.Buffer
	if err := gob.NewEncoder(&inoBuf).Encode(f.ino); err != nil {
		return err
	}
	capacity := int(f.sb.InodeTableSectors) * blockdev.SectorSize
	if inoBuf.Len() > capacity {
		return ErrInodeTableFull
	}
	padded := make([]byte, capacity)
	copy(padded, inoBuf.Bytes())
	for i := 0; i < int(f.sb.InodeTableSectors); i++ {
		off := i * blockdev.SectorSize
		if err := f.dev.WriteSector(uint64(1+i), padded[off:off+blockdev.SectorSize]); err != nil {
			return err
		}
	}
	return f.dev.Sync()
}

func clean(p string) string {
	c := path.Clean("/" + p)
	return c
}

func parentOf(p string) string {
	dir := path.Dir(p)
	return dir
}

func (f *FS) Open(p string) (vfs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	n, ok := f.ino[p]
	if !ok {
		return nil, vfs.ErrNotFound
	}
	if n.IsDir {
		return nil, vfs.ErrIsDir
	}
	data := make([]byte, n.Size)
	sector := make([]byte, blockdev.SectorSize)
	for i := uint64(0); i < n.SectorCount; i++ {
		if err := f.dev.ReadSector(n.StartSector+i, sector); err != nil {
			return nil, err
		}
		start := int(i) * blockdev.SectorSize
		end := start + blockdev.SectorSize
		if end > len(data) {
			end = len(data)
		}
		if start < len(data) {
			copy(data[start:end], sector)
		}
	}
	return &handle{fs: f, path: p, r: bytes.NewReader(data)}, nil
}

func (f *FS) Create(p string) (vfs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	if parent := parentOf(p); parent != "/" {
		pn, ok := f.ino[parent]
		if !ok {
			return nil, vfs.ErrNotFound
		}
		if !pn.IsDir {
			return nil, vfs.ErrNotDir
		}
	}
	if n, ok := f.ino[p]; ok {
		if n.IsDir {
			return nil, vfs.ErrIsDir
		}
	} else {
		f.ino[p] = &inode{Path: p}
	}
	return &writeHandle{fs: f, path: p}, nil
}

func (f *FS) Mkdir(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	if _, ok := f.ino[p]; ok {
		return vfs.ErrExists
	}
	parent := parentOf(p)
	if parent != "/" {
		pn, ok := f.ino[parent]
		if !ok {
			return vfs.ErrNotFound
		}
		if !pn.IsDir {
			return vfs.ErrNotDir
		}
	}
	f.ino[p] = &inode{Path: p, IsDir: true}
	return f.flush()
}

func (f *FS) Stat(p string) (vfs.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	n, ok := f.ino[p]
	if !ok {
		return vfs.Info{}, vfs.ErrNotFound
	}
	return vfs.Info{Name: path.Base(n.Path), IsDir: n.IsDir, Size: n.Size}, nil
}

func (f *FS) ReadDir(p string) ([]vfs.DirEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	n, ok := f.ino[p]
	if !ok {
		return nil, vfs.ErrNotFound
	}
	if !n.IsDir {
		return nil, vfs.ErrNotDir
	}

	prefix := p
	if prefix != "/" {
		prefix += "/"
	}
	var out []vfs.DirEntry
	for ip, node := range f.ino {
		if ip == p || !strings.HasPrefix(ip, prefix) {
			continue
		}
		rest := strings.TrimPrefix(ip, prefix)
		if strings.Contains(rest, "/") {
			continue // not a direct child
		}
		out = append(out, vfs.DirEntry{Name: rest, IsDir: node.IsDir, Size: node.Size})
	}
	return out, nil
}

func (f *FS) Remove(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	n, ok := f.ino[p]
	if !ok {
		return vfs.ErrNotFound
	}
	if n.IsDir {
		prefix := p
		if prefix != "/" {
			prefix += "/"
		}
		for ip := range f.ino {
			if ip != p && strings.HasPrefix(ip, prefix) {
				return vfs.ErrNotEmpty
			}
		}
	}
	delete(f.ino, p)
	return f.flush()
}

// RemoveRecursive is not supported: the on-disk layout has no helper for
// bulk reclamation of a subtree's data sectors, so callers must walk and
// remove children individually (see DESIGN.md).
func (f *FS) RemoveRecursive(p string) error {
	return f.Remove(p)
}

// allocSectors bumps the data-region cursor by n sectors and returns the
// first one. Callers hold f.mu.
func (f *FS) allocSectors(n uint64) (uint64, error) {
	start := f.sb.NextDataSector
	if start+n > f.dev.Capacity() {
		return 0, errors.New("abyssfs: device full")
	}
	f.sb.NextDataSector += n
	return start, nil
}

type handle struct {
	fs   *FS
	path string
	r    *bytes.Reader
}

func (h *handle) Read(p []byte) (int, error)  { return h.r.Read(p) }
func (h *handle) Write(p []byte) (int, error) { return 0, errors.New("abyssfs: file opened read-only") }
func (h *handle) Close() error                { return nil }

func (h *handle) Hash() (string, error) {
	at, err := h.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", err
	}
	defer h.r.Seek(at, io.SeekStart)

	if _, err := h.r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	data, err := io.ReadAll(h.r)
	if err != nil {
		return "", err
	}
	return vfs.HashBytes(data)
}

// writeHandle buffers a Create-d file's contents in memory; Close allocates
// data sectors, writes them and persists the updated inode table.
type writeHandle struct {
	fs   *FS
	path string
	buf  bytes.Buffer
}

func (w *writeHandle) Read(p []byte) (int, error) {
	return 0, errors.New("abyssfs: file opened write-only")
}

func (w *writeHandle) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *writeHandle) Hash() (string, error) {
	return vfs.HashBytes(w.buf.Bytes())
}

func (w *writeHandle) Close() error {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()

	n, ok := w.fs.ino[w.path]
	if !ok {
		return vfs.ErrNotFound
	}

	data := w.buf.Bytes()
	sectorCount := (uint64(len(data)) + blockdev.SectorSize - 1) / blockdev.SectorSize
	if sectorCount == 0 {
		n.Size = 0
		n.StartSector = 0
		n.SectorCount = 0
		return w.fs.flush()
	}

	start, err := w.fs.allocSectors(sectorCount)
	if err != nil {
		return err
	}
	sector := make([]byte, blockdev.SectorSize)
	for i := uint64(0); i < sectorCount; i++ {
		off := i * blockdev.SectorSize
		end := off + blockdev.SectorSize
		if end > uint64(len(data)) {
			end = uint64(len(data))
		}
		for j := range sector {
			sector[j] = 0
		}
		copy(sector, data[off:end])
		if err := w.fs.dev.WriteSector(start+i, sector); err != nil {
			return err
		}
	}

	n.Size = int64(len(data))
	n.StartSector = start
	n.SectorCount = sectorCount
	return w.fs.flush()
}
