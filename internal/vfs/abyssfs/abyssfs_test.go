package abyssfs

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/goranb131/chthon/internal/blockdev"
	"github.com/goranb131/chthon/internal/vfs"
)

func newTestDevice(t *testing.T) *blockdev.Device {
	t.Helper()
	dev, err := blockdev.Create(filepath.Join(t.TempDir(), "disk.img"), 4096)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestFormatMountRoundTrip(t *testing.T) {
	dev := newTestDevice(t)
	if err := Format(dev, 4); err != nil {
		t.Fatal(err)
	}

	fs, err := Mount(dev)
	if err != nil {
		t.Fatal(err)
	}
	info, err := fs.Stat("/")
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir {
		t.Fatal("root is not a directory")
	}
}

func TestCreateWriteCloseThenReopen(t *testing.T) {
	dev := newTestDevice(t)
	if err := Format(dev, 4); err != nil {
		t.Fatal(err)
	}
	fs, err := Mount(dev)
	if err != nil {
		t.Fatal(err)
	}

	w, err := fs.Create("/greeting")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hello, abyss")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// remount from scratch to prove persistence through the superblock
	// and inode table, not just in-memory state.
	fs2, err := Mount(dev)
	if err != nil {
		t.Fatal(err)
	}
	r, err := fs2.Open("/greeting")
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello, abyss" {
		t.Fatalf("got %q", got)
	}
}

func TestMkdirAndReadDir(t *testing.T) {
	dev := newTestDevice(t)
	Format(dev, 4)
	fs, _ := Mount(dev)

	if err := fs.Mkdir("/sub"); err != nil {
		t.Fatal(err)
	}
	w, _ := fs.Create("/sub/file")
	w.Write([]byte("x"))
	w.Close()

	entries, err := fs.ReadDir("/sub")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "file" {
		t.Fatalf("got %+v", entries)
	}
}

func TestRemoveNonEmptyDirectoryFails(t *testing.T) {
	dev := newTestDevice(t)
	Format(dev, 4)
	fs, _ := Mount(dev)

	fs.Mkdir("/sub")
	w, _ := fs.Create("/sub/file")
	w.Close()

	if err := fs.Remove("/sub"); err != vfs.ErrNotEmpty {
		t.Fatalf("got %v, want ErrNotEmpty", err)
	}
}

func TestCreateUnderMissingParentFails(t *testing.T) {
	dev := newTestDevice(t)
	Format(dev, 4)
	fs, _ := Mount(dev)

	if _, err := fs.Create("/nope/file"); err != vfs.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
