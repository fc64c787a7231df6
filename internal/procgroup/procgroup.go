//go:build !windows

// Package procgroup configures subprocesses with their own process group so
// the whole tree can be signalled on teardown, preventing orphaned agent
// processes when a turn is cancelled.
package procgroup

import (
	"os"
	"os/exec"
	"syscall"
)

// Setup places the command in a new process group.
func Setup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// Terminate sends SIGTERM to the process group of p. Nil is a no-op.
func Terminate(p *os.Process) error {
	if p == nil {
		return nil
	}
	return syscall.Kill(-p.Pid, syscall.SIGTERM)
}

// Kill sends SIGKILL to the process group of p. Nil is a no-op.
func Kill(p *os.Process) error {
	if p == nil {
		return nil
	}
	return syscall.Kill(-p.Pid, syscall.SIGKILL)
}
