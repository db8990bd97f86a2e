package shm

import (
	"fmt"
	"sync/atomic"
)

// Slot is one worker's boolean table inside a segment. Element j holds the
// primality of offset+j for the worker's range. A slot has a single writer;
// readers must synchronize with it externally (the completion semaphore).
type Slot struct {
	id   int
	desc *slotDescriptor
	data []byte
}

// ID returns the slot id.
func (s *Slot) ID() int { return s.id }

// Len returns the current number of elements.
func (s *Slot) Len() int { return int(atomic.LoadUint64(&s.desc.length)) }

// Cap returns the maximum number of elements.
func (s *Slot) Cap() int { return len(s.data) }

// Get returns element j.
func (s *Slot) Get(j int) (bool, error) {
	if j < 0 || j >= s.Len() {
		return false, fmt.Errorf("%w: %d (len %d)", ErrIndex, j, s.Len())
	}
	return s.data[j] != 0, nil
}

// Set stores v at element j.
func (s *Slot) Set(j int, v bool) error {
	if j < 0 || j >= s.Len() {
		return fmt.Errorf("%w: %d (len %d)", ErrIndex, j, s.Len())
	}
	s.data[j] = boolByte(v)
	return nil
}

// Assign resizes the slot to n elements, all set to v.
func (s *Slot) Assign(n int, v bool) error {
	if n < 0 || n > len(s.data) {
		return fmt.Errorf("%w: assign %d (cap %d)", ErrSlotFull, n, len(s.data))
	}
	b := boolByte(v)
	for j := range s.data[:n] {
		s.data[j] = b
	}
	atomic.StoreUint64(&s.desc.length, uint64(n))
	return nil
}

// Append adds v at the end of the slot.
func (s *Slot) Append(v bool) error {
	n := s.Len()
	if n >= len(s.data) {
		return fmt.Errorf("%w: cap %d", ErrSlotFull, len(s.data))
	}
	s.data[n] = boolByte(v)
	atomic.StoreUint64(&s.desc.length, uint64(n+1))
	return nil
}

// Range calls fn for every element in order until fn returns false.
func (s *Slot) Range(fn func(j int, v bool) bool) {
	n := s.Len()
	for j := 0; j < n; j++ {
		if !fn(j, s.data[j] != 0) {
			return
		}
	}
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
