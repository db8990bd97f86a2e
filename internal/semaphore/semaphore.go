// Package semaphore implements a named counting semaphore shared between
// processes. The count lives in a small memory-mapped file next to the
// shared segments; waiters sleep on it with a process-shared futex on Linux
// and poll elsewhere.
package semaphore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/agbru/distprimes/internal/shm"
)

// FilePrefix is prepended to the semaphore name to form its file name, the
// same convention glibc uses for POSIX named semaphores.
const FilePrefix = "sem."

const fileSize = shm.Alignment

var semMagic = [8]byte{'D', 'P', 'S', 'E', 'M', 0, 0, 0}

// waitSlice bounds each futex sleep when the caller's context can be
// canceled, so cancellation is noticed promptly.
const waitSlice = 100 * time.Millisecond

var (
	// ErrExists is returned by Create when a semaphore with the same name exists.
	ErrExists = errors.New("semaphore: already exists")
	// ErrNotExist is returned by Open and Destroy when no semaphore has the name.
	ErrNotExist = errors.New("semaphore: does not exist")
	// ErrCorrupt is returned by Open when the backing file fails validation.
	ErrCorrupt = errors.New("semaphore: invalid semaphore file")
	// ErrTimeout is returned by WaitTimeout when the count stays zero.
	ErrTimeout = errors.New("semaphore: wait timed out")
	// ErrBadName is returned for names that cannot be used as a file name.
	ErrBadName = errors.New("semaphore: invalid name")
)

// semHeader is the shared state at offset 0 of the semaphore file.
type semHeader struct {
	magic      [8]byte // 0x00
	count      uint32  // 0x08: futex word
	waiters    uint32  // 0x0C: number of processes inside futexWait
	creatorPID uint32  // 0x10
	ready      uint32  // 0x14
}

// Semaphore is a handle on a named counting semaphore.
type Semaphore struct {
	name string
	path string
	file *os.File
	mem  []byte
	hdr  *semHeader
}

// Create makes a new named semaphore with the given initial count. It fails
// with ErrExists if the name is taken.
func Create(name string, initial uint32) (*Semaphore, error) {
	path, err := semPath(name)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrExists, path, err)
		}
		return nil, fmt.Errorf("failed to create semaphore file %s: %w", path, err)
	}
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}
	if err := file.Truncate(fileSize); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to resize semaphore file: %w", err)
	}
	mem, err := mapFile(file, fileSize)
	if err != nil {
		cleanup()
		return nil, err
	}

	s := &Semaphore{name: name, path: path, file: file, mem: mem}
	s.hdr = (*semHeader)(unsafe.Pointer(&mem[0]))
	s.hdr.magic = semMagic
	s.hdr.creatorPID = uint32(os.Getpid())
	atomic.StoreUint32(&s.hdr.count, initial)
	atomic.StoreUint32(&s.hdr.ready, 1)
	return s, nil
}

// Open attaches to an existing named semaphore without creating it.
func Open(name string) (*Semaphore, error) {
	path, err := semPath(name)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotExist, path, err)
		}
		return nil, fmt.Errorf("failed to open semaphore file %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat semaphore file: %w", err)
	}
	if info.Size() != fileSize {
		file.Close()
		return nil, fmt.Errorf("%w: size %d", ErrCorrupt, info.Size())
	}
	mem, err := mapFile(file, fileSize)
	if err != nil {
		file.Close()
		return nil, err
	}
	s := &Semaphore{name: name, path: path, file: file, mem: mem}
	s.hdr = (*semHeader)(unsafe.Pointer(&mem[0]))
	if s.hdr.magic != semMagic || atomic.LoadUint32(&s.hdr.ready) != 1 {
		s.Close()
		return nil, fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	return s, nil
}

// Destroy removes the named semaphore.
func Destroy(name string) error {
	path, err := semPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return fmt.Errorf("failed to remove semaphore %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a semaphore with the given name exists.
func Exists(name string) bool {
	path, err := semPath(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Name returns the semaphore name.
func (s *Semaphore) Name() string { return s.name }

// Value returns the current count.
func (s *Semaphore) Value() uint32 { return atomic.LoadUint32(&s.hdr.count) }

// Post increments the count and wakes one waiter. It never blocks.
func (s *Semaphore) Post() error {
	atomic.AddUint32(&s.hdr.count, 1)
	if atomic.LoadUint32(&s.hdr.waiters) > 0 {
		if _, err := futexWake(&s.hdr.count, 1); err != nil {
			return err
		}
	}
	return nil
}

// TryWait decrements the count if it is positive and reports whether it did.
func (s *Semaphore) TryWait() bool {
	for {
		v := atomic.LoadUint32(&s.hdr.count)
		if v == 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(&s.hdr.count, v, v-1) {
			return true
		}
	}
}

// Wait blocks until the count is positive, then decrements it.
func (s *Semaphore) Wait() error {
	return s.wait(context.Background(), time.Time{})
}

// WaitTimeout is Wait bounded by d. It returns ErrTimeout if the count stayed
// zero for the whole duration.
func (s *Semaphore) WaitTimeout(d time.Duration) error {
	return s.wait(context.Background(), time.Now().Add(d))
}

// WaitContext is Wait that gives up when ctx is done, returning ctx.Err().
func (s *Semaphore) WaitContext(ctx context.Context) error {
	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	return s.wait(ctx, deadline)
}

func (s *Semaphore) wait(ctx context.Context, deadline time.Time) error {
	cancelable := ctx.Done() != nil
	for {
		if s.TryWait() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var sleep time.Duration // zero means no limit
		if !deadline.IsZero() {
			sleep = time.Until(deadline)
			if sleep <= 0 {
				if cancelable {
					return context.DeadlineExceeded
				}
				return ErrTimeout
			}
		}
		if cancelable && (sleep == 0 || sleep > waitSlice) {
			sleep = waitSlice
		}

		atomic.AddUint32(&s.hdr.waiters, 1)
		err := futexWait(&s.hdr.count, 0, sleep)
		atomic.AddUint32(&s.hdr.waiters, ^uint32(0))
		if err != nil && !errors.Is(err, errFutexTimeout) {
			return err
		}
	}
}

// Close unmaps the semaphore. It does not remove the name.
func (s *Semaphore) Close() error {
	var firstErr error
	if s.mem != nil {
		if err := unmap(s.mem); err != nil {
			firstErr = err
		}
		s.mem = nil
		s.hdr = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.file = nil
	}
	return firstErr
}

func semPath(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, '/') || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return filepath.Join(shm.BaseDir(), FilePrefix+name), nil
}
