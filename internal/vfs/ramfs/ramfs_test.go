package ramfs

import (
	"io"
	"testing"

	"github.com/goranb131/chthon/internal/vfs"
)

func TestCreateWriteReadBack(t *testing.T) {
	fs := New()

	w, err := fs.Create("/hello")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hi")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := fs.Open("/hello")
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hi" {
		t.Fatalf("got %q, want %q", got, "hi")
	}
}

func TestMkdirAndReadDir(t *testing.T) {
	fs := New()
	if err := fs.Mkdir("/a"); err != nil {
		t.Fatal(err)
	}
	w, err := fs.Create("/a/b")
	if err != nil {
		t.Fatal(err)
	}
	w.Close()

	entries, err := fs.ReadDir("/a")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "b" {
		t.Fatalf("got %+v", entries)
	}
}

func TestRemoveNonEmptyDirFails(t *testing.T) {
	fs := New()
	fs.Mkdir("/a")
	w, _ := fs.Create("/a/b")
	w.Close()

	if err := fs.Remove("/a"); err != vfs.ErrNotEmpty {
		t.Fatalf("got %v, want ErrNotEmpty", err)
	}
}

func TestRemoveRecursive(t *testing.T) {
	fs := New()
	fs.Mkdir("/a")
	w, _ := fs.Create("/a/b")
	w.Close()

	if err := fs.RemoveRecursive("/a"); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Stat("/a"); err != vfs.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	fs := New()
	if _, err := fs.Open("/nope"); err != vfs.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
