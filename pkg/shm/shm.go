// Package shm maps a named, fixed-size memory region shared by every
// process that opens the same path.
package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultDir is backed by tmpfs on Linux, so the region never touches disk.
const DefaultDir = "/dev/shm"

// ErrBadLayout is returned when an existing region does not have the size
// the caller expects.
type ErrBadLayout struct {
	Path string
	Want int
	Got  int64
}

func (e *ErrBadLayout) Error() string {
	return fmt.Sprintf("region %s has size %d, want %d", e.Path, e.Got, e.Want)
}

// Region is a MAP_SHARED mapping of a file. Writes through Bytes are visible
// to every other mapping of the same file.
type Region struct {
	path string
	data []byte
}

// Create creates (or replaces) the region at path, sized and zeroed.
func Create(path string, size int) (*Region, error) {
	os.Remove(path)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to create region %s: %v", path, err)
	}
	defer f.Close()

	if err := f.Truncate(int64(size)); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to size region %s: %v", path, err)
	}

	r, err := mapFile(f, path, size)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	for i := range r.data {
		r.data[i] = 0
	}
	return r, nil
}

// Open maps an existing region created by Create.
func Open(path string, size int) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open region %s: %v", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat region %s: %v", path, err)
	}
	if info.Size() != int64(size) {
		return nil, &ErrBadLayout{Path: path, Want: size, Got: info.Size()}
	}

	return mapFile(f, path, size)
}

func mapFile(f *os.File, path string, size int) (*Region, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to map region %s: %v", path, err)
	}
	return &Region{
		path: path,
		data: data,
	}, nil
}

func (r *Region) Path() string {
	return r.path
}

// Bytes returns the mapped memory. It is invalid after Close.
func (r *Region) Bytes() []byte {
	return r.data
}

// Close unmaps the region. The backing file is left in place.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("failed to unmap region %s: %v", r.path, err)
	}
	r.data = nil
	return nil
}

// Remove unlinks the backing file. Existing mappings stay valid until closed.
func (r *Region) Remove() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove region %s: %v", r.path, err)
	}
	return nil
}
