//go:build !unix

package semaphore

import (
	"errors"
	"os"
)

// ErrUnsupported is returned on platforms without shared file mappings.
var ErrUnsupported = errors.New("semaphore: named semaphores not supported on this platform")

func mapFile(*os.File, int) ([]byte, error) { return nil, ErrUnsupported }

func unmap([]byte) error { return nil }
