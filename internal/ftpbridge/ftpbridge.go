// Package ftpbridge exposes the kernel's VFS over FTP, grounded on
// protonuke's FileDriver/FileDriverFactory (src/protonuke/ftpdriver.go):
// the same server.Driver/server.DriverFactory shape, but backed by
// internal/vfs instead of the host filesystem, so an operator can pull a
// disk image or console transcript off a running instance without a
// serial link.
package ftpbridge

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/goftp/server"

	"github.com/goranb131/chthon/internal/vfs"
)

// Driver adapts a *vfs.VFS to server.Driver. Every path it receives is
// already absolute from the FTP client's point of view; namespace
// resolution (which only applies to a kernel process's own CWD/bindings)
// does not apply here, so paths are normalized and passed straight to the
// VFS.
type Driver struct {
	VFS *vfs.VFS
	server.Perm
}

// Factory constructs a Driver per accepted connection, as server.Server
// expects.
type Factory struct {
	VFS *vfs.VFS
	server.Perm
}

func (f *Factory) NewDriver() (server.Driver, error) {
	return &Driver{VFS: f.VFS, Perm: f.Perm}, nil
}

func (d *Driver) Init(conn *server.Conn) {}

func (d *Driver) ChangeDir(path string) error {
	info, err := d.VFS.Stat(vfs.Normalize(path))
	if err != nil {
		return err
	}
	if !info.IsDir {
		return os.ErrInvalid
	}
	return nil
}

func (d *Driver) Stat(path string) (server.FileInfo, error) {
	info, err := d.VFS.Stat(vfs.Normalize(path))
	if err != nil {
		return nil, err
	}
	return newFileInfo(info), nil
}

func (d *Driver) ListDir(path string, callback func(server.FileInfo) error) error {
	entries, err := d.VFS.ReadDir(vfs.Normalize(path))
	if err != nil {
		return err
	}
	for _, e := range entries {
		info := vfs.Info{Name: e.Name, IsDir: e.IsDir, Size: e.Size}
		if err := callback(newFileInfo(info)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) DeleteDir(path string) error {
	return d.VFS.RemoveRecursive(vfs.Normalize(path))
}

func (d *Driver) DeleteFile(path string) error {
	return d.VFS.Remove(vfs.Normalize(path))
}

func (d *Driver) Rename(fromPath, toPath string) error {
	_, err := d.VFS.Move(vfs.Normalize(fromPath), vfs.Normalize(toPath))
	return err
}

func (d *Driver) MakeDir(path string) error {
	return d.VFS.Mkdir(vfs.Normalize(path))
}

func (d *Driver) GetFile(path string, offset int64) (int64, io.ReadCloser, error) {
	resolved := vfs.Normalize(path)
	info, err := d.VFS.Stat(resolved)
	if err != nil {
		return 0, nil, err
	}

	fd, err := d.VFS.Open(resolved)
	if err != nil {
		return 0, nil, err
	}

	buf := make([]byte, info.Size)
	if _, err := d.VFS.Read(fd, buf); err != nil {
		d.VFS.Close(fd)
		return 0, nil, err
	}
	d.VFS.Close(fd)

	if offset > int64(len(buf)) {
		offset = int64(len(buf))
	}
	return info.Size - offset, io.NopCloser(bytes.NewReader(buf[offset:])), nil
}

// PutFile matches FileDriver.PutFile's reduced original, but unlike that
// teacher method (a documented no-op) this one actually writes: appendData
// is honored by opening the existing file and writing past its end,
// otherwise a fresh file is created or truncated.
func (d *Driver) PutFile(destPath string, data io.Reader, appendData bool) (int64, error) {
	resolved := vfs.Normalize(destPath)

	var fd int
	var err error
	if appendData {
		fd, err = d.VFS.Open(resolved)
	}
	if !appendData || err != nil {
		fd, err = d.VFS.OpenCreate(resolved)
		if err != nil {
			return 0, err
		}
	}
	defer d.VFS.Close(fd)

	buf, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	n, err := d.VFS.Write(fd, buf)
	if err != nil {
		return int64(n), err
	}
	return int64(n), nil
}

type fileInfo struct {
	name    string
	isDir   bool
	size    int64
	modTime time.Time
}

func newFileInfo(info vfs.Info) *fileInfo {
	return &fileInfo{name: info.Name, isDir: info.IsDir, size: info.Size, modTime: time.Time{}}
}

func (f *fileInfo) Name() string { return f.name }
func (f *fileInfo) Size() int64  { return f.size }
func (f *fileInfo) Mode() os.FileMode {
	if f.isDir {
		return os.ModeDir | 0755
	}
	return 0644
}
func (f *fileInfo) ModTime() time.Time { return f.modTime }
func (f *fileInfo) IsDir() bool        { return f.isDir }
func (f *fileInfo) Sys() interface{}   { return nil }
func (f *fileInfo) Owner() string      { return "chthon" }
func (f *fileInfo) Group() string      { return "chthon" }
