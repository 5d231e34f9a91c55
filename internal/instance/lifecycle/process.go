// Package lifecycle starts and stops application worker processes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"sbos/internal/instance"
)

// Environment variables handed to every started application.
const (
	EnvAppKey = "SBOS_APP_KEY"
	EnvBase   = "SBOS_BASE"
	EnvAppID  = "SBOS_INSTANCE_ID"
)

// Process launches one OS process per instance.
type Process struct {
	command []string
	logger  *slog.Logger

	mu    sync.Mutex
	procs map[int]*exec.Cmd
}

// NewProcess runs command (argv form) for every started instance.
func NewProcess(command []string, logger *slog.Logger) (*Process, error) {
	if len(command) == 0 {
		return nil, errors.New("application command is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Process{command: command, logger: logger, procs: map[int]*exec.Cmd{}}, nil
}

func (p *Process) Start(_ context.Context, instanceID, key, baseURL string) (instance.Handle, error) {
	// The process must outlive the registering request.
	cmd := exec.Command(p.command[0], p.command[1:]...) // #nosec G204 -- command comes from operator config
	cmd.Env = append(os.Environ(),
		EnvAppKey+"="+key,
		EnvBase+"="+baseURL,
		EnvAppID+"="+instanceID,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return instance.Handle{}, fmt.Errorf("start application: %w", err)
	}
	pid := cmd.Process.Pid

	p.mu.Lock()
	p.procs[pid] = cmd
	p.mu.Unlock()

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		delete(p.procs, pid)
		p.mu.Unlock()
		p.logger.Info("application exited", "instance_id", instanceID, "pid", pid, "error", err)
	}()
	return instance.Handle{PID: pid}, nil
}

// Stop sends SIGTERM. Processes that already exited are ignored.
func (p *Process) Stop(_ context.Context, h instance.Handle) error {
	p.mu.Lock()
	cmd, ok := p.procs[h.PID]
	p.mu.Unlock()
	if !ok {
		return nil
	}
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("signal pid %d: %w", h.PID, err)
	}
	return nil
}

// Running reports whether a started process has not exited yet.
func (p *Process) Running(h instance.Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.procs[h.PID]
	return ok
}
