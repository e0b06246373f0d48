package dispatch

import (
	"errors"

	"github.com/goranb131/chthon/internal/process"
	"github.com/goranb131/chthon/internal/vfs"
	"github.com/goranb131/chthon/pkg/message"
)

func statusOf(err error) int64 {
	if err == nil {
		return 0
	}
	return -1
}

func (d *Dispatcher) open(p *process.Process, msg *message.Message) int64 {
	resolved := d.resolvePath(p, msg.Path)
	fd, err := d.VFS.Open(resolved)
	msg.FD = fd
	if err != nil {
		return -1
	}
	return int64(fd)
}

// read matches MSG_READ's contract: the original copies into a fixed
// 256-byte stack buffer regardless of the caller's requested size, which
// silently truncates any read past 256 bytes — an acknowledged bug, not a
// real cap (see the Open Question this resolves). Here Size is honored as
// the caller's real buffer capacity.
func (d *Dispatcher) read(p *process.Process, msg *message.Message) int64 {
	size := msg.Size
	if size <= 0 {
		size = 4096
	}
	buf := make([]byte, size)
	n, err := d.VFS.Read(msg.FD, buf)
	if err != nil {
		return -1
	}
	msg.Data = buf[:n]
	msg.Size = n
	return int64(n)
}

func (d *Dispatcher) write(p *process.Process, msg *message.Message) int64 {
	n, err := d.VFS.Write(msg.FD, msg.Data)
	if err != nil {
		return -1
	}
	msg.Size = n
	return int64(n)
}

func (d *Dispatcher) close(p *process.Process, msg *message.Message) int64 {
	if err := d.VFS.Close(msg.FD); err != nil {
		return -1
	}
	return 0
}

func (d *Dispatcher) stat(p *process.Process, msg *message.Message) int64 {
	resolved := d.resolvePath(p, msg.Path)
	info, err := d.VFS.Stat(resolved)
	if err != nil {
		return -1
	}
	msg.Size = int(info.Size)
	if info.IsDir {
		msg.Status = 1
	}
	return 0
}

// create matches MSG_CREATE: touch the file then immediately close it, and
// the message's FD field carries whatever descriptor was momentarily
// allocated rather than a usable open handle.
func (d *Dispatcher) create(p *process.Process, msg *message.Message) int64 {
	resolved := d.resolvePath(p, msg.Path)
	fd, err := d.VFS.OpenCreate(resolved)
	if err != nil {
		return -1
	}
	msg.FD = fd
	if err := d.VFS.Close(fd); err != nil {
		return -1
	}
	return 0
}

func (d *Dispatcher) mkdir(p *process.Process, msg *message.Message) int64 {
	resolved := d.resolvePath(p, msg.Path)
	return statusOf(d.VFS.Mkdir(resolved))
}

func (d *Dispatcher) readDir(p *process.Process, msg *message.Message) int64 {
	resolved := d.resolvePath(p, msg.Path)
	entries, err := d.VFS.ReadDir(resolved)
	if err != nil {
		return -1
	}
	dirents := make([]message.Dirent, 0, len(entries))
	for _, e := range entries {
		kind := message.KindFile
		if e.IsDir {
			kind = message.KindDir
		}
		dirents = append(dirents, message.Dirent{Name: e.Name, Kind: kind, Size: e.Size})
	}
	msg.Dirents = dirents
	msg.DirentCount = len(dirents)
	return int64(len(dirents))
}

func (d *Dispatcher) remove(p *process.Process, msg *message.Message) int64 {
	resolved := d.resolvePath(p, msg.Path)
	return statusOf(d.VFS.Remove(resolved))
}

// copy matches MSG_COPY: msg.Path is the source, msg.Data (interpreted as
// a path string) is the destination, following the original's reuse of the
// data field to smuggle a second path through a single-path Message.
func (d *Dispatcher) copy(p *process.Process, msg *message.Message) int64 {
	src := d.resolvePath(p, msg.Path)
	dst := d.resolvePath(p, string(msg.Data))
	n, err := d.VFS.Copy(src, dst)
	if err != nil {
		return -1
	}
	msg.Result = n
	return 0
}

func (d *Dispatcher) move(p *process.Process, msg *message.Message) int64 {
	src := d.resolvePath(p, msg.Path)
	dst := d.resolvePath(p, string(msg.Data))
	n, err := d.VFS.Move(src, dst)
	if err != nil {
		return -1
	}
	msg.Result = n
	return 0
}

// mount is not part of the original's message ABI (filesystems are
// attached at boot in vfs_init, never from a syscall), but SPEC_FULL.md
// exposes it anyway so a test or a future privileged tool can attach a
// backend without restarting the kernel. msg.Path is the mount point;
// msg.Str names a previously registered filesystem.
func (d *Dispatcher) mount(p *process.Process, msg *message.Message) int64 {
	if msg.Str == "" {
		return -1
	}
	if err := d.VFS.Mount(msg.Path, msg.Str); err != nil {
		if errors.Is(err, vfs.ErrNotFound) {
			return -1
		}
		return -1
	}
	return 0
}
