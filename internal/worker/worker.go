// Package worker implements the helper side of the pipeline: it tests one
// contiguous range of integers for primality, records the verdicts in its
// slot of the shared result store, and posts the completion semaphore once.
package worker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/agbru/distprimes/internal/config"
	apperrors "github.com/agbru/distprimes/internal/errors"
	"github.com/agbru/distprimes/internal/logging"
	"github.com/agbru/distprimes/internal/partition"
	"github.com/agbru/distprimes/internal/primality"
	"github.com/agbru/distprimes/internal/semaphore"
	"github.com/agbru/distprimes/internal/shm"
)

// Assignment is the work given to one helper: the slot it owns and the
// integers it must test.
type Assignment struct {
	Slot  int
	Range partition.Range
}

// Args returns the helper argument vector for the assignment.
func (a Assignment) Args() []string {
	return []string{
		strconv.Itoa(a.Slot),
		strconv.FormatUint(a.Range.Offset, 10),
		strconv.FormatUint(a.Range.Size, 10),
	}
}

// ParseAssignment parses "<slot> <offset> <size>".
func ParseAssignment(args []string) (Assignment, error) {
	if len(args) != 3 {
		return Assignment{}, apperrors.NewConfigError("expected 3 arguments, got %d", len(args))
	}
	var vals [3]uint64
	for i, s := range args {
		v, err := config.ParseNonNegative(s, i+1)
		if err != nil {
			return Assignment{}, err
		}
		vals[i] = v
	}
	if vals[0] > uint64(^uint32(0)) {
		return Assignment{}, apperrors.NewConfigError("Argument 1 is invalid.")
	}
	if vals[2] > ^uint64(0)-vals[1] {
		return Assignment{}, apperrors.NewConfigError("Argument 3 is invalid.")
	}
	return Assignment{
		Slot:  int(vals[0]),
		Range: partition.Range{Offset: vals[1], Size: vals[2]},
	}, nil
}

// Run attaches to the named store and semaphore, fills the assigned slot and
// posts the semaphore exactly once. It never creates either resource; an
// attach failure returns before anything is posted.
func Run(ctx context.Context, names config.Names, a Assignment, oracle *primality.Oracle, logger logging.Logger) (err error) {
	if oracle == nil {
		oracle = primality.NewOracle()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := shm.Open(names.Segment)
	if err != nil {
		return attachError(apperrors.KindSegment, names.Segment, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing segment: %w", cerr)
		}
	}()

	sem, err := semaphore.Open(names.Semaphore)
	if err != nil {
		return attachError(apperrors.KindSemaphore, names.Semaphore, err)
	}
	defer func() {
		if cerr := sem.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing semaphore: %w", cerr)
		}
	}()

	slot, err := store.Slot(a.Slot)
	if err != nil {
		return fmt.Errorf("slot %d: %w", a.Slot, err)
	}
	if uint64(slot.Len()) < a.Range.Size {
		return fmt.Errorf("slot %d holds %d entries, assignment %s needs %d: %w",
			a.Slot, slot.Len(), a.Range, a.Range.Size, shm.ErrIndex)
	}

	logger.Debug("testing range",
		logging.Int("slot", a.Slot),
		logging.String("range", a.Range.String()),
	)

	found := 0
	for j := uint64(0); j < a.Range.Size; j++ {
		if j&0xffff == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		prime := oracle.IsPrime(a.Range.Offset + j)
		if prime {
			found++
		}
		if err := slot.Set(int(j), prime); err != nil {
			return fmt.Errorf("slot %d index %d: %w", a.Slot, j, err)
		}
	}

	if err := sem.Post(); err != nil {
		return apperrors.WrapError(err, "posting %s", names.Semaphore)
	}
	logger.Debug("range done", logging.Int("slot", a.Slot), logging.Int("primes", found))
	return nil
}

func attachError(kind apperrors.ResourceKind, name string, cause error) error {
	return &apperrors.ResourceError{
		Kind:  kind,
		Name:  name,
		Op:    "open",
		Cause: cause,
	}
}
