package semaphore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"
)

const helperEnv = "DISTPRIMES_SEMAPHORE_TEST_POST"

// TestMain doubles as a child process that opens the named semaphore given
// in helperEnv and posts once.
func TestMain(m *testing.M) {
	if name := os.Getenv(helperEnv); name != "" {
		s, err := Open(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := s.Post(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(3)
		}
		s.Close()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func testSemName(t *testing.T) string {
	t.Helper()
	name := fmt.Sprintf("distprimes-test-%d-%s", os.Getpid(), strings.ReplaceAll(t.Name(), "/", "_"))
	t.Cleanup(func() { _ = Destroy(name) })
	return name
}

func TestCreate_InitialCount(t *testing.T) {
	name := testSemName(t)

	s, err := Create(name, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()

	if s.Value() != 2 {
		t.Errorf("Value = %d, want 2", s.Value())
	}
	if !s.TryWait() || !s.TryWait() {
		t.Fatal("TryWait should succeed twice")
	}
	if s.TryWait() {
		t.Error("TryWait should fail at zero")
	}
}

func TestCreate_ExistingNameFails(t *testing.T) {
	name := testSemName(t)

	s, err := Create(name, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := Create(name, 0); !errors.Is(err, ErrExists) {
		t.Errorf("second Create error = %v, want ErrExists", err)
	}
	if !Exists(name) {
		t.Error("Exists = false for a created semaphore")
	}
}

func TestOpen_Missing(t *testing.T) {
	name := testSemName(t)
	if _, err := Open(name); !errors.Is(err, ErrNotExist) {
		t.Errorf("Open error = %v, want ErrNotExist", err)
	}
	if err := Destroy(name); !errors.Is(err, ErrNotExist) {
		t.Errorf("Destroy error = %v, want ErrNotExist", err)
	}
}

func TestPostWait_AcrossHandles(t *testing.T) {
	name := testSemName(t)

	owner, err := Create(name, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer owner.Close()

	const posters = 8
	var wg sync.WaitGroup
	for i := 0; i < posters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
			h, err := Open(name)
			if err != nil {
				t.Errorf("Open: %v", err)
				return
			}
			defer h.Close()
			if err := h.Post(); err != nil {
				t.Errorf("Post: %v", err)
			}
		}()
	}

	done := make(chan error, 1)
	go func() {
		for i := 0; i < posters; i++ {
			if err := owner.Wait(); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after all posts")
	}
	wg.Wait()
	if owner.Value() != 0 {
		t.Errorf("Value = %d after matched posts and waits, want 0", owner.Value())
	}
}

func TestWaitTimeout(t *testing.T) {
	name := testSemName(t)

	s, err := Create(name, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	start := time.Now()
	err = s.WaitTimeout(100 * time.Millisecond)
	elapsed := time.Since(start)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WaitTimeout error = %v, want ErrTimeout", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("WaitTimeout returned after %v, expected ~100ms", elapsed)
	}

	if err := s.Post(); err != nil {
		t.Fatal(err)
	}
	if err := s.WaitTimeout(time.Second); err != nil {
		t.Errorf("WaitTimeout with a pending post: %v", err)
	}
}

func TestWaitContext_Canceled(t *testing.T) {
	name := testSemName(t)

	s, err := Create(name, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- s.WaitContext(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WaitContext error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitContext ignored cancellation")
	}
}

// TestPost_FromChildProcess checks that a post from another process wakes a
// waiter blocked in this one.
func TestPost_FromChildProcess(t *testing.T) {
	name := testSemName(t)

	s, err := Create(name, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	cmd := exec.Command(os.Args[0], "-test.run=^$")
	cmd.Env = append(os.Environ(), helperEnv+"="+name)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start child: %v", err)
	}

	if err := s.WaitTimeout(10 * time.Second); err != nil {
		t.Fatalf("Wait for child post: %v", err)
	}
	if err := cmd.Wait(); err != nil {
		t.Errorf("child exited with %v", err)
	}
}
