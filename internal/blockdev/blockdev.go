// Package blockdev provides the 512-byte-sector block device that abyssfs
// mounts on top of, adapted from the host-side network-block-device lifecycle
// in the teacher's nbd package: instead of attaching to a real NBD/qemu-nbd
// export, Init opens (or creates) a plain backing file on the host and
// addresses it by sector, which is the closest hosted equivalent of the
// kernel's own virtio-blk MMIO window.
package blockdev

import (
	"errors"
	"os"

	"github.com/goranb131/chthon/pkg/klog"
)

// SectorSize is the fixed sector size every backend and superblock format in
// this kernel assumes.
const SectorSize = 512

var (
	ErrNotInitialized = errors.New("blockdev: device not initialized")
	ErrOutOfRange     = errors.New("blockdev: sector out of range")
	ErrShortIO        = errors.New("blockdev: short sector read or write")
)

// Device is a sector-addressed backing store. The zero value is not
// initialized; use Init or Create.
type Device struct {
	f        *os.File
	capacity uint64 // in sectors
}

// Init opens an existing backing file at path and computes its capacity from
// its size, truncated down to a whole number of sectors.
func Init(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return fromFile(f)
}

// Create makes a new zero-filled backing file holding sectors sectors, then
// opens it the same way Init would.
func Create(path string, sectors uint64) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(sectors * SectorSize)); err != nil {
		f.Close()
		return nil, err
	}
	return fromFile(f)
}

func fromFile(f *os.File) (*Device, error) {
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	dev := &Device{f: f, capacity: uint64(info.Size()) / SectorSize}
	klog.Debug("blockdev: opened %s, capacity %d sectors", f.Name(), dev.capacity)
	return dev, nil
}

// Capacity reports the device size in sectors.
func (d *Device) Capacity() uint64 {
	if d == nil {
		return 0
	}
	return d.capacity
}

// ReadSector fills buf (which must be exactly SectorSize bytes) with the
// contents of the given sector.
func (d *Device) ReadSector(sector uint64, buf []byte) error {
	if d == nil || d.f == nil {
		return ErrNotInitialized
	}
	if len(buf) != SectorSize {
		return ErrShortIO
	}
	if sector >= d.capacity {
		return ErrOutOfRange
	}
	n, err := d.f.ReadAt(buf, int64(sector*SectorSize))
	if err != nil {
		return err
	}
	if n != SectorSize {
		return ErrShortIO
	}
	return nil
}

// WriteSector writes buf (exactly SectorSize bytes) to the given sector.
func (d *Device) WriteSector(sector uint64, buf []byte) error {
	if d == nil || d.f == nil {
		return ErrNotInitialized
	}
	if len(buf) != SectorSize {
		return ErrShortIO
	}
	if sector >= d.capacity {
		return ErrOutOfRange
	}
	n, err := d.f.WriteAt(buf, int64(sector*SectorSize))
	if err != nil {
		return err
	}
	if n != SectorSize {
		return ErrShortIO
	}
	return nil
}

// Sync flushes pending writes to the backing file.
func (d *Device) Sync() error {
	if d == nil || d.f == nil {
		return ErrNotInitialized
	}
	return d.f.Sync()
}

// Close releases the backing file. The device must not be used afterward.
func (d *Device) Close() error {
	if d == nil || d.f == nil {
		return nil
	}
	klog.Debug("blockdev: closing %s", d.f.Name())
	return d.f.Close()
}
