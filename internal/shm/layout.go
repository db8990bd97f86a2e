// Package shm implements the shared result store: a named, memory-mapped
// segment holding one fixed-capacity boolean table (slot) per worker.
//
// The coordinator creates and destroys the segment; workers only attach to
// it and write their own slot. Segment layout:
//
//	0x000  header (64 bytes)
//	0x040  slot descriptors, 32 bytes each
//	       ... padding up to Align(HeaderSize + n*DescriptorSize)
//	data   slot tables packed back to back, one byte per boolean,
//	       padded up to Align(sum of capacities)
package shm

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Layout constants.
const (
	// Alignment is the boundary both the metadata and data regions are
	// rounded to. Some platforms reject shared segments whose size is not a
	// multiple of 512 bytes.
	Alignment = 512

	// HeaderSize is the size of the segment header.
	HeaderSize = 64

	// DescriptorSize is the size of one slot descriptor.
	DescriptorSize = 32

	// Version is the current layout version.
	Version = uint32(1)
)

var segmentMagic = [8]byte{'D', 'P', 'R', 'I', 'M', 'E', 'S', 0}

var (
	// ErrExists is returned by Create when a segment with the same name exists.
	ErrExists = errors.New("shm: segment already exists")
	// ErrNotExist is returned by Open and Destroy when no segment has the name.
	ErrNotExist = errors.New("shm: segment does not exist")
	// ErrCorrupt is returned by Open when the segment fails validation.
	ErrCorrupt = errors.New("shm: invalid segment")
	// ErrBadSlot is returned for slot ids outside [0, NumSlots()).
	ErrBadSlot = errors.New("shm: slot id out of range")
	// ErrSlotFull is returned when a slot would grow past its capacity.
	ErrSlotFull = errors.New("shm: slot capacity exceeded")
	// ErrIndex is returned for element indexes outside [0, Len()).
	ErrIndex = errors.New("shm: index out of range")
	// ErrNoSlots is returned by Create when no capacities are given.
	ErrNoSlots = errors.New("shm: at least one slot is required")
	// ErrBadName is returned for names that cannot be used as a file name.
	ErrBadName = errors.New("shm: invalid segment name")
)

// Align rounds n up to the next multiple of Alignment.
// The result is never less than n.
func Align(n uint64) uint64 {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// MetadataSize returns the aligned size of the header plus n slot descriptors.
func MetadataSize(n int) uint64 {
	return Align(HeaderSize + uint64(n)*DescriptorSize)
}

// SegmentSize returns the total segment size needed for the given slot
// capacities: aligned metadata plus aligned boolean storage.
func SegmentSize(capacities []uint64) uint64 {
	var total uint64
	for _, c := range capacities {
		total += c
	}
	return MetadataSize(len(capacities)) + Align(total)
}

// segmentHeader is the fixed header at offset 0 of every segment.
type segmentHeader struct {
	magic      [8]byte  // 0x00: "DPRIMES\0"
	version    uint32   // 0x08: layout version
	numSlots   uint32   // 0x0C: number of slot descriptors
	totalSize  uint64   // 0x10: total segment size
	dataOffset uint64   // 0x18: start of the data region
	dataSize   uint64   // 0x20: aligned size of the data region
	creatorPID uint32   // 0x28: pid of the coordinator that created it
	ready      uint32   // 0x2C: set to 1 once the layout is written
	reserved   [16]byte // 0x30-0x3F
}

// slotDescriptor locates one slot inside the data region.
type slotDescriptor struct {
	offset   uint64 // 0x00: absolute offset of the slot table
	capacity uint64 // 0x08: maximum number of booleans
	length   uint64 // 0x10: current number of booleans
	reserved uint64 // 0x18
}

var (
	_ [HeaderSize - unsafe.Sizeof(segmentHeader{})]byte
	_ [DescriptorSize - unsafe.Sizeof(slotDescriptor{})]byte
)

func (h *segmentHeader) isReady() bool { return atomic.LoadUint32(&h.ready) != 0 }

func (h *segmentHeader) setReady() { atomic.StoreUint32(&h.ready, 1) }

// validate checks the header against the mapped size.
func (h *segmentHeader) validate(size uint64) error {
	if h.magic != segmentMagic {
		return fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if h.version != Version {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrCorrupt, h.version, Version)
	}
	if !h.isReady() {
		return fmt.Errorf("%w: segment not initialized", ErrCorrupt)
	}
	if h.totalSize != size {
		return fmt.Errorf("%w: size mismatch: header says %d, mapped %d", ErrCorrupt, h.totalSize, size)
	}
	if h.numSlots == 0 || h.dataOffset != MetadataSize(int(h.numSlots)) {
		return fmt.Errorf("%w: data offset %d does not match %d slots", ErrCorrupt, h.dataOffset, h.numSlots)
	}
	if h.dataOffset+h.dataSize != h.totalSize {
		return fmt.Errorf("%w: data region overruns segment", ErrCorrupt)
	}
	return nil
}
