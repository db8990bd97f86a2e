//go:build !unix

package shm

import (
	"errors"
	"os"
)

// ErrUnsupported is returned on platforms without shared file mappings.
var ErrUnsupported = errors.New("shm: shared memory not supported on this platform")

func mapFile(*os.File, int) ([]byte, error) { return nil, ErrUnsupported }

func unmap([]byte) error { return nil }
