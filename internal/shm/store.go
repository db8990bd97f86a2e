package shm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unsafe"
)

// Store is a mapped shared result segment.
type Store struct {
	name  string
	path  string
	file  *os.File
	mem   []byte
	hdr   *segmentHeader
	slots []Slot
}

// Create allocates a new named segment with one slot per capacity. Every slot
// starts empty and can grow up to its capacity without reallocation.
//
// Create fails with ErrExists, leaving the existing segment untouched, if the
// name is taken. On any later failure the new segment is removed.
func Create(name string, capacities []uint64) (*Store, error) {
	if len(capacities) == 0 {
		return nil, ErrNoSlots
	}
	path, err := segmentPath(name)
	if err != nil {
		return nil, err
	}
	size := SegmentSize(capacities)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrExists, path, err)
		}
		return nil, fmt.Errorf("failed to create segment file %s: %w", path, err)
	}

	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	if err := file.Truncate(int64(size)); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to resize segment file: %w", err)
	}

	mem, err := mapFile(file, int(size))
	if err != nil {
		cleanup()
		return nil, err
	}

	s := &Store{name: name, path: path, file: file, mem: mem}
	s.hdr = (*segmentHeader)(unsafe.Pointer(&mem[0]))
	s.hdr.magic = segmentMagic
	s.hdr.version = Version
	s.hdr.numSlots = uint32(len(capacities))
	s.hdr.totalSize = size
	s.hdr.dataOffset = MetadataSize(len(capacities))
	s.hdr.dataSize = size - s.hdr.dataOffset
	s.hdr.creatorPID = uint32(os.Getpid())

	offset := s.hdr.dataOffset
	for i, c := range capacities {
		d := s.descriptor(i)
		d.offset = offset
		d.capacity = c
		d.length = 0
		offset += c
	}
	s.hdr.setReady()
	s.buildSlots()

	return s, nil
}

// Open attaches to an existing segment without creating it.
func Open(name string) (*Store, error) {
	path, err := segmentPath(name)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotExist, path, err)
		}
		return nil, fmt.Errorf("failed to open segment file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat segment file: %w", err)
	}
	size := info.Size()
	if size < Alignment {
		file.Close()
		return nil, fmt.Errorf("%w: segment file too small: %d bytes", ErrCorrupt, size)
	}

	mem, err := mapFile(file, int(size))
	if err != nil {
		file.Close()
		return nil, err
	}

	s := &Store{name: name, path: path, file: file, mem: mem}
	s.hdr = (*segmentHeader)(unsafe.Pointer(&mem[0]))
	if err := s.hdr.validate(uint64(size)); err != nil {
		s.Close()
		return nil, err
	}
	for i := 0; i < int(s.hdr.numSlots); i++ {
		d := s.descriptor(i)
		if d.offset < s.hdr.dataOffset || d.offset+d.capacity > s.hdr.totalSize || d.length > d.capacity {
			s.Close()
			return nil, fmt.Errorf("%w: slot %d descriptor out of bounds", ErrCorrupt, i)
		}
	}
	s.buildSlots()

	return s, nil
}

// Destroy removes the named segment. Handles that are still mapped stay
// valid until closed, but the name can be reused immediately.
func Destroy(name string) error {
	path, err := segmentPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return fmt.Errorf("failed to remove segment %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a segment with the given name exists.
func Exists(name string) bool {
	path, err := segmentPath(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Name returns the segment name.
func (s *Store) Name() string { return s.name }

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Size returns the total mapped size in bytes.
func (s *Store) Size() uint64 { return uint64(len(s.mem)) }

// NumSlots returns the number of slots.
func (s *Store) NumSlots() int { return len(s.slots) }

// CreatorPID returns the pid of the process that created the segment.
func (s *Store) CreatorPID() int { return int(s.hdr.creatorPID) }

// Slot returns the view of slot id.
func (s *Store) Slot(id int) (*Slot, error) {
	if id < 0 || id >= len(s.slots) {
		return nil, fmt.Errorf("%w: %d (have %d slots)", ErrBadSlot, id, len(s.slots))
	}
	return &s.slots[id], nil
}

// Close unmaps the segment and closes its file. It does not remove the name.
func (s *Store) Close() error {
	var firstErr error
	if s.mem != nil {
		if err := unmap(s.mem); err != nil {
			firstErr = err
		}
		s.mem = nil
		s.hdr = nil
		s.slots = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.file = nil
	}
	return firstErr
}

func (s *Store) descriptor(i int) *slotDescriptor {
	off := HeaderSize + uintptr(i)*DescriptorSize
	return (*slotDescriptor)(unsafe.Pointer(&s.mem[off]))
}

func (s *Store) buildSlots() {
	s.slots = make([]Slot, s.hdr.numSlots)
	for i := range s.slots {
		d := s.descriptor(i)
		s.slots[i] = Slot{id: i, desc: d, data: s.mem[d.offset : d.offset+d.capacity : d.offset+d.capacity]}
	}
}

// segmentPath maps a segment name to its backing file, preferring /dev/shm.
func segmentPath(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, '/') || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return filepath.Join(BaseDir(), name), nil
}

// BaseDir returns the directory holding named segments: /dev/shm when it is
// available, the temporary directory otherwise.
func BaseDir() string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}
