package blockdev

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestCreateAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")

	dev, err := Create(path, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	if dev.Capacity() != 16 {
		t.Fatalf("capacity = %d, want 16", dev.Capacity())
	}

	want := bytes.Repeat([]byte{0x5A}, SectorSize)
	if err := dev.WriteSector(3, want); err != nil {
		t.Fatal(err)
	}

	got := make([]byte, SectorSize)
	if err := dev.ReadSector(3, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("read back mismatch")
	}

	// an untouched sector reads back as zero
	zero := make([]byte, SectorSize)
	if err := dev.ReadSector(0, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, zero) {
		t.Fatalf("untouched sector not zero-filled")
	}
}

func TestOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	dev, err := Create(path, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	buf := make([]byte, SectorSize)
	if err := dev.ReadSector(4, buf); err != ErrOutOfRange {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
	if err := dev.WriteSector(100, buf); err != ErrOutOfRange {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
}

func TestShortBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	dev, err := Create(path, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	if err := dev.ReadSector(0, make([]byte, 10)); err != ErrShortIO {
		t.Fatalf("got %v, want ErrShortIO", err)
	}
}

func TestNotInitialized(t *testing.T) {
	var dev *Device
	buf := make([]byte, SectorSize)
	if err := dev.ReadSector(0, buf); err != ErrNotInitialized {
		t.Fatalf("got %v, want ErrNotInitialized", err)
	}
}
