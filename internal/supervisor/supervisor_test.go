// ABOUTME: Tests for the bot process supervisor state machine.
// ABOUTME: Re-executes the test binary as a stand-in bot process.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test. It is the child process started by
// the supervisor tests.
func TestHelperProcess(t *testing.T) {
	switch os.Getenv("POSTBOARD_HELPER") {
	case "sleep":
		time.Sleep(time.Minute)
		os.Exit(0)
	case "stubborn":
		signal.Ignore(syscall.SIGTERM)
		time.Sleep(time.Minute)
		os.Exit(0)
	case "exit":
		os.Exit(3)
	}
}

func helperSupervisor(t *testing.T, mode string) *Supervisor {
	t.Helper()
	s, err := New(Config{
		Command: []string{os.Args[0], "-test.run=^TestHelperProcess$"},
		Env:     []string{"POSTBOARD_HELPER=" + mode},
	})
	require.NoError(t, err)
	return s
}

func TestNewRequiresCommand(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Command: []string{""}})
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s := helperSupervisor(t, "sleep")
	assert.Equal(t, Stopped, s.State())

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, Running, s.State())
	assert.Same(t, h, s.Current())
	assert.NotZero(t, h.PID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx, h))

	assert.Equal(t, Stopped, s.State())
	assert.Nil(t, s.Current())
}

func TestStartWhileRunning(t *testing.T) {
	s := helperSupervisor(t, "sleep")

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	defer func() { _ = s.Stop(context.Background(), h) }()

	again, err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Same(t, h, again)
}

func TestStopWhenStopped(t *testing.T) {
	s := helperSupervisor(t, "sleep")

	assert.ErrorIs(t, s.Stop(context.Background(), nil), ErrNotRunning)

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Stop(context.Background(), h))

	// The handle is stale once stopped.
	assert.ErrorIs(t, s.Stop(context.Background(), h), ErrNotRunning)
}

func TestStopKillsStubbornProcess(t *testing.T) {
	s := helperSupervisor(t, "stubborn")

	h, err := s.Start(context.Background())
	require.NoError(t, err)

	// Give the child time to install its signal handler.
	time.Sleep(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Stop(ctx, h))
	assert.Equal(t, Stopped, s.State())
}

func TestProcessExitReturnsToStopped(t *testing.T) {
	s := helperSupervisor(t, "exit")

	h, err := s.Start(context.Background())
	require.NoError(t, err)

	select {
	case <-h.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("process did not exit")
	}
	assert.Error(t, h.Err())
	assert.Equal(t, Stopped, s.State())

	// A fresh start is allowed after the process exits on its own.
	h2, err := s.Start(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, h.ID, h2.ID)
	<-h2.Done()
}

func TestStartFailure(t *testing.T) {
	s, err := New(Config{Command: []string{"/nonexistent/postboard-bot"}})
	require.NoError(t, err)

	h, err := s.Start(context.Background())
	assert.Error(t, err)
	assert.Nil(t, h)
	assert.Equal(t, Stopped, s.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "State(7)", State(7).String())
}
