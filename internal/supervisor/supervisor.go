// ABOUTME: Process supervisor for the bot host with an explicit Stopped/Running state machine.
// ABOUTME: Start returns a Handle that Stop consumes; no process state lives in globals.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyRunning is returned by Start when a process is running.
	ErrAlreadyRunning = errors.New("bot is already running")
	// ErrNotRunning is returned by Stop when there is nothing to stop.
	ErrNotRunning = errors.New("bot is not running")
)

// State is the lifecycle state of the supervised process.
type State int

const (
	Stopped State = iota
	Running
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Handle identifies one started process.
type Handle struct {
	ID        uuid.UUID
	PID       int
	StartedAt time.Time

	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// Done is closed when the process exits.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the process exit error once Done is closed.
func (h *Handle) Err() error {
	<-h.done
	return h.err
}

// Config configures a Supervisor.
type Config struct {
	// Command is the program and arguments to run. Required.
	Command []string

	// Env is appended to the current environment of the child.
	Env []string

	// Logger for lifecycle events. Falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// Supervisor starts and stops one child process at a time.
type Supervisor struct {
	command []string
	env     []string
	log     *slog.Logger

	mu      sync.Mutex
	current *Handle
}

// New creates a supervisor for cfg.Command.
func New(cfg Config) (*Supervisor, error) {
	if len(cfg.Command) == 0 || cfg.Command[0] == "" {
		return nil, errors.New("supervisor command is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Supervisor{
		command: cfg.Command,
		env:     cfg.Env,
		log:     cfg.Logger,
	}, nil
}

// State returns Running while a started process has not exited.
func (s *Supervisor) State() State {
	if s.Current() != nil {
		return Running
	}
	return Stopped
}

// Current returns the handle of the running process, or nil.
func (s *Supervisor) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Start launches the process. When one is already running it returns that
// handle together with ErrAlreadyRunning.
func (s *Supervisor) Start(ctx context.Context) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return s.current, ErrAlreadyRunning
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(s.command[0], s.command[1:]...)
	cmd.Env = append(os.Environ(), s.env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", s.command[0], err)
	}

	h := &Handle{
		ID:        uuid.New(),
		PID:       cmd.Process.Pid,
		StartedAt: time.Now(),
		cmd:       cmd,
		done:      make(chan struct{}),
	}
	s.current = h
	s.log.Info("bot process started", "handle", h.ID, "pid", h.PID)

	go s.wait(h)
	return h, nil
}

// Stop terminates the process behind h. It sends SIGTERM and kills the
// process if it has not exited by the time ctx is done.
func (s *Supervisor) Stop(ctx context.Context, h *Handle) error {
	s.mu.Lock()
	if h == nil || s.current != h {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.mu.Unlock()

	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to signal bot process: %w", err)
	}

	select {
	case <-h.done:
	case <-ctx.Done():
		s.log.Warn("bot process ignored SIGTERM, killing", "handle", h.ID, "pid", h.PID)
		if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("failed to kill bot process: %w", err)
		}
		<-h.done
	}

	s.log.Info("bot process stopped", "handle", h.ID, "pid", h.PID)
	return nil
}

// wait reaps the process and returns the supervisor to Stopped.
func (s *Supervisor) wait(h *Handle) {
	h.err = h.cmd.Wait()

	s.mu.Lock()
	if s.current == h {
		s.current = nil
	}
	s.mu.Unlock()

	if h.err != nil {
		s.log.Debug("bot process exited", "handle", h.ID, "error", h.err)
	}
	close(h.done)
}
