package agent

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/MaratGumarov/claude-code-telegram/internal/ndjson"
	"github.com/MaratGumarov/claude-code-telegram/internal/procgroup"
)

// RunRequest describes one agent turn to start.
type RunRequest struct {
	// Prompt is the user's message.
	Prompt string

	// WorkDir is the working directory for the agent's file operations.
	WorkDir string

	// Resume is the prior session id to continue, or empty for a fresh
	// session.
	Resume string
}

// Runner starts one agent turn and exposes its message stream. The agent
// process is a black box behind this interface; tests substitute fakes.
type Runner interface {
	Start(ctx context.Context, req RunRequest) (RunHandle, error)
}

// RunHandle is a live agent turn. ReadMessage blocks until the next wire
// message arrives and returns io.EOF when the stream ends.
type RunHandle interface {
	ReadMessage() (Message, error)
	Stop() error
}

// CLIConfig configures the CLI-backed runner.
type CLIConfig struct {
	// Path is the agent CLI binary (default "claude").
	Path string

	// Model selects the model, if non-empty.
	Model string

	// AllowedTools restricts the agent's tool set, if non-empty.
	AllowedTools []string

	// ExtraArgs are appended verbatim to the CLI invocation.
	ExtraArgs []string
}

// CLIRunner spawns the agent CLI in one-shot stream-json mode, one process
// per turn.
type CLIRunner struct {
	config CLIConfig
}

// NewCLIRunner creates a runner with the given config.
func NewCLIRunner(config CLIConfig) *CLIRunner {
	return &CLIRunner{config: config}
}

// BuildArgs builds the CLI argument list for a request.
func (r *CLIRunner) BuildArgs(req RunRequest) []string {
	args := []string{
		"-p", req.Prompt,
		"--output-format", "stream-json",
		"--verbose",
	}

	if r.config.Model != "" {
		args = append(args, "--model", r.config.Model)
	}

	if req.Resume != "" {
		args = append(args, "--resume", req.Resume)
	}

	if len(r.config.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(r.config.AllowedTools, ","))
	}

	args = append(args, r.config.ExtraArgs...)

	return args
}

// Start spawns the CLI process for one turn.
func (r *CLIRunner) Start(ctx context.Context, req RunRequest) (RunHandle, error) {
	path := r.config.Path
	if path == "" {
		path = "claude"
	}

	cmd := exec.CommandContext(ctx, path, r.BuildArgs(req)...)
	cmd.Env = os.Environ()
	if req.WorkDir != "" {
		cmd.Dir = req.WorkDir
	}
	procgroup.Setup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ProcessError{Message: "create stdout pipe", Cause: err}
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &CLINotFoundError{Path: path, Cause: err}
		}
		return nil, &ProcessError{Message: "start agent CLI", Cause: err}
	}

	return &cliHandle{
		cmd:    cmd,
		stdout: stdout,
		reader: ndjson.NewReader(stdout),
	}, nil
}

// cliHandle is a live CLI process.
type cliHandle struct {
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	reader  *ndjson.Reader
	mu      sync.Mutex
	stopped bool
}

// ReadMessage reads the next known wire message, skipping unknown types.
func (h *cliHandle) ReadMessage() (Message, error) {
	for {
		line, err := h.reader.ReadLine()
		if err != nil {
			return nil, err
		}

		msg, err := ParseMessage(line)
		if err != nil {
			return nil, &ProtocolError{Message: "parse stream line", Line: string(line), Cause: err}
		}
		if msg == nil {
			continue
		}
		return msg, nil
	}
}

// Stop tears the process down: SIGTERM, a short grace period, then SIGKILL.
func (h *cliHandle) Stop() error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	h.stopped = true
	h.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- h.cmd.Wait()
	}()

	_ = procgroup.Terminate(h.cmd.Process)

	select {
	case <-done:
		return nil
	case <-time.After(500 * time.Millisecond):
		_ = procgroup.Kill(h.cmd.Process)
		<-done
		return nil
	}
}
