//go:build windows

package procgroup

import (
	"os"
	"os/exec"
)

// Setup is a no-op on Windows; process groups are not configured.
func Setup(cmd *exec.Cmd) {}

// Terminate kills the process directly. Nil is a no-op.
func Terminate(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}

// Kill kills the process directly. Nil is a no-op.
func Kill(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}
