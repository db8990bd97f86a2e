package cli

import (
	"errors"
	"fmt"
	"io"

	apperrors "github.com/agbru/distprimes/internal/errors"
)

// FormatError returns the diagnostic line for err, prefixed by the program
// name. Argument errors are printed as-is; every other failure is marked as
// an error.
func FormatError(program string, err error) string {
	var ce apperrors.ConfigError
	var ve apperrors.ValidationError
	switch {
	case errors.As(err, &ce), errors.As(err, &ve):
		return fmt.Sprintf("%s: %v", program, err)
	case apperrors.IsContextError(err):
		return fmt.Sprintf("%s: interrupted", program)
	default:
		return fmt.Sprintf("%s: error: %v", program, err)
	}
}

// DisplayError writes the diagnostic line for err to w.
func DisplayError(w io.Writer, program string, err error) {
	fmt.Fprintln(w, FormatError(program, err))
}
