package vfs_test

import (
	"testing"

	"github.com/goranb131/chthon/internal/vfs"
	"github.com/goranb131/chthon/internal/vfs/ramfs"
)

func newTestVFS(t *testing.T) *vfs.VFS {
	t.Helper()
	v := vfs.New()
	if err := v.MountBackend("/", ramfs.New()); err != nil {
		t.Fatal(err)
	}
	if err := v.MountBackend("/tmp", ramfs.New()); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestFindMountLongestPrefix(t *testing.T) {
	v := newTestVFS(t)

	if err := v.Create("/tmp/a"); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Stat("/tmp/a"); err != nil {
		t.Fatalf("expected /tmp mount to serve /tmp/a: %v", err)
	}
}

func TestOpenWriteCloseRead(t *testing.T) {
	v := newTestVFS(t)

	fd, err := v.OpenCreate("/tmp/f")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Write(fd, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	if err := v.Close(fd); err != nil {
		t.Fatal(err)
	}

	fd2, err := v.Open("/tmp/f")
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 64)
	n, err := v.Read(fd2, buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "payload" {
		t.Fatalf("got %q", buf[:n])
	}
}

func TestFDReuseAfterClose(t *testing.T) {
	v := newTestVFS(t)

	fd1, err := v.OpenCreate("/tmp/one")
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Close(fd1); err != nil {
		t.Fatal(err)
	}

	fd2, err := v.OpenCreate("/tmp/two")
	if err != nil {
		t.Fatal(err)
	}
	if fd2 != fd1 {
		t.Fatalf("expected closed descriptor %d to be reused, got %d", fd1, fd2)
	}
}

func TestCloseInvalidFD(t *testing.T) {
	v := newTestVFS(t)
	if err := v.Close(99); err != vfs.ErrBadFD {
		t.Fatalf("got %v, want ErrBadFD", err)
	}
}

func TestCopyAndMove(t *testing.T) {
	v := newTestVFS(t)

	fd, _ := v.OpenCreate("/tmp/src")
	v.Write(fd, []byte("abcdef"))
	v.Close(fd)

	n, err := v.Copy("/tmp/src", "/tmp/dst")
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Fatalf("copied %d bytes, want 6", n)
	}
	if _, err := v.Stat("/tmp/src"); err != nil {
		t.Fatalf("source should still exist after Copy: %v", err)
	}

	if _, err := v.Move("/tmp/src", "/tmp/moved"); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Stat("/tmp/src"); err != vfs.ErrNotFound {
		t.Fatalf("source should be gone after Move, got %v", err)
	}
	if _, err := v.Stat("/tmp/moved"); err != nil {
		t.Fatalf("destination missing after Move: %v", err)
	}
}

func TestExhaustFileDescriptors(t *testing.T) {
	v := newTestVFS(t)
	for i := 0; i < vfs.MaxFD; i++ {
		if _, err := v.OpenCreate("/tmp/f" + string(rune('a'+i%26)) + string(rune('0'+i/26))); err != nil {
			t.Fatalf("unexpected error before exhaustion at %d: %v", i, err)
		}
	}
	if _, err := v.OpenCreate("/tmp/overflow"); err != vfs.ErrNoFreeFD {
		t.Fatalf("got %v, want ErrNoFreeFD", err)
	}
}
