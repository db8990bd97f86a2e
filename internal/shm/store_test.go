package shm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// testSegmentName returns a segment name unique to this test and process and
// removes any segment left under it when the test ends.
func testSegmentName(t *testing.T) string {
	t.Helper()
	name := fmt.Sprintf("distprimes-test-%d-%s", os.Getpid(), strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	t.Cleanup(func() { _ = Destroy(name) })
	return name
}

func TestAlign(t *testing.T) {
	t.Parallel()

	cases := []struct{ n, want uint64 }{
		{0, 0},
		{1, 512},
		{511, 512},
		{512, 512},
		{513, 1024},
		{1024, 1024},
	}
	for _, tc := range cases {
		if got := Align(tc.n); got != tc.want {
			t.Errorf("Align(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestAlign_Properties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("Align(n) is the smallest multiple of Alignment >= n", prop.ForAll(
		func(n uint64) bool {
			a := Align(n)
			return a >= n && a%Alignment == 0 && a-n < Alignment
		},
		gen.UInt64Range(0, 1<<62),
	))

	properties.TestingRun(t)
}

func TestSegmentSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		capacities []uint64
		want       uint64
	}{
		{"two small slots", []uint64{15, 14}, 512 + 512},
		{"one empty slot", []uint64{0}, 512},
		{"metadata spills", make([]uint64, 15), 1024}, // 64 + 15*32 = 544
		{"large data", []uint64{1000, 1000}, 512 + 2048},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SegmentSize(tc.capacities); got != tc.want {
				t.Errorf("SegmentSize(%v) = %d, want %d", tc.capacities, got, tc.want)
			}
		})
	}
}

func TestCreateOpen_SharesSlots(t *testing.T) {
	name := testSegmentName(t)

	owner, err := Create(name, []uint64{15, 14})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer owner.Close()

	if owner.NumSlots() != 2 {
		t.Fatalf("NumSlots = %d, want 2", owner.NumSlots())
	}
	if owner.Size() != 1024 {
		t.Errorf("Size = %d, want 1024", owner.Size())
	}
	if owner.CreatorPID() != os.Getpid() {
		t.Errorf("CreatorPID = %d, want %d", owner.CreatorPID(), os.Getpid())
	}
	for id, size := range []int{15, 14} {
		slot, err := owner.Slot(id)
		if err != nil {
			t.Fatal(err)
		}
		if err := slot.Assign(size, false); err != nil {
			t.Fatalf("Assign: %v", err)
		}
	}

	attached, err := Open(name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer attached.Close()

	w, err := attached.Slot(1)
	if err != nil {
		t.Fatal(err)
	}
	if w.Len() != 14 || w.Cap() != 14 {
		t.Fatalf("attached slot len/cap = %d/%d, want 14/14", w.Len(), w.Cap())
	}
	for _, j := range []int{2, 4, 8, 14 - 1} {
		if err := w.Set(j, true); err != nil {
			t.Fatalf("Set(%d): %v", j, err)
		}
	}

	r, _ := owner.Slot(1)
	var got []int
	r.Range(func(j int, v bool) bool {
		if v {
			got = append(got, j)
		}
		return true
	})
	if fmt.Sprint(got) != "[2 4 8 13]" {
		t.Errorf("owner sees %v, want [2 4 8 13]", got)
	}

	other, _ := owner.Slot(0)
	for j := 0; j < other.Len(); j++ {
		if v, _ := other.Get(j); v {
			t.Errorf("slot 0 element %d was modified through slot 1", j)
		}
	}
}

func TestCreate_ExistingNameFails(t *testing.T) {
	name := testSegmentName(t)

	first, err := Create(name, []uint64{8})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer first.Close()
	slot, _ := first.Slot(0)
	_ = slot.Assign(8, true)

	_, err = Create(name, []uint64{8})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("second Create error = %v, want ErrExists", err)
	}
	if !errors.Is(err, fs.ErrExist) {
		t.Errorf("second Create error should also match fs.ErrExist")
	}

	// The existing segment is untouched.
	again, err := Open(name)
	if err != nil {
		t.Fatalf("Open after failed Create: %v", err)
	}
	defer again.Close()
	s, _ := again.Slot(0)
	if v, _ := s.Get(7); s.Len() != 8 || !v {
		t.Error("existing segment was modified by a failed Create")
	}
}

func TestCreate_NoSlots(t *testing.T) {
	t.Parallel()
	if _, err := Create("unused", nil); !errors.Is(err, ErrNoSlots) {
		t.Errorf("Create with no slots error = %v, want ErrNoSlots", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	name := testSegmentName(t)
	if _, err := Open(name); !errors.Is(err, ErrNotExist) {
		t.Errorf("Open error = %v, want ErrNotExist", err)
	}
	if Exists(name) {
		t.Error("Exists reported a missing segment")
	}
}

func TestOpen_Corrupt(t *testing.T) {
	name := testSegmentName(t)
	path := filepath.Join(BaseDir(), name)
	if err := os.WriteFile(path, make([]byte, Alignment), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(name); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Open error = %v, want ErrCorrupt", err)
	}
}

func TestDestroy(t *testing.T) {
	name := testSegmentName(t)

	s, err := Create(name, []uint64{4})
	if err != nil {
		t.Fatal(err)
	}
	if !Exists(name) {
		t.Fatal("Exists = false after Create")
	}
	if err := Destroy(name); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if Exists(name) {
		t.Error("Exists = true after Destroy")
	}
	if err := Destroy(name); !errors.Is(err, ErrNotExist) {
		t.Errorf("second Destroy error = %v, want ErrNotExist", err)
	}

	// The mapping outlives the name until closed.
	slot, _ := s.Slot(0)
	if err := slot.Append(true); err != nil {
		t.Errorf("Append after Destroy: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestSlot_Bounds(t *testing.T) {
	name := testSegmentName(t)

	s, err := Create(name, []uint64{2, 0})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.Slot(2); !errors.Is(err, ErrBadSlot) {
		t.Errorf("Slot(2) error = %v, want ErrBadSlot", err)
	}
	if _, err := s.Slot(-1); !errors.Is(err, ErrBadSlot) {
		t.Errorf("Slot(-1) error = %v, want ErrBadSlot", err)
	}

	slot, _ := s.Slot(0)
	if err := slot.Set(0, true); !errors.Is(err, ErrIndex) {
		t.Errorf("Set on empty slot error = %v, want ErrIndex", err)
	}
	if err := slot.Append(true); err != nil {
		t.Fatal(err)
	}
	if err := slot.Append(false); err != nil {
		t.Fatal(err)
	}
	if err := slot.Append(true); !errors.Is(err, ErrSlotFull) {
		t.Errorf("Append past capacity error = %v, want ErrSlotFull", err)
	}
	if err := slot.Assign(3, false); !errors.Is(err, ErrSlotFull) {
		t.Errorf("Assign past capacity error = %v, want ErrSlotFull", err)
	}
	if v, err := slot.Get(0); err != nil || !v {
		t.Errorf("Get(0) = %v, %v; want true, nil", v, err)
	}
	if _, err := slot.Get(2); !errors.Is(err, ErrIndex) {
		t.Errorf("Get(2) error = %v, want ErrIndex", err)
	}

	empty, _ := s.Slot(1)
	if empty.Cap() != 0 || empty.Len() != 0 {
		t.Errorf("zero-capacity slot len/cap = %d/%d", empty.Len(), empty.Cap())
	}
}

func TestBadName(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"", ".", "..", "a/b"} {
		if _, err := Create(name, []uint64{1}); !errors.Is(err, ErrBadName) {
			t.Errorf("Create(%q) error = %v, want ErrBadName", name, err)
		}
		if Exists(name) {
			t.Errorf("Exists(%q) = true", name)
		}
	}
}
