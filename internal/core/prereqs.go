package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultScriptTimeout bounds the prerequisite installation script
const DefaultScriptTimeout = 10 * time.Minute

// ScriptResult contains the output from running the prerequisite script
type ScriptResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ScriptRunner executes the prerequisite installation script with a timeout
type ScriptRunner struct {
	timeout time.Duration
	shell   string
}

// NewScriptRunner creates a new runner with the given timeout
func NewScriptRunner(timeout time.Duration) *ScriptRunner {
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	return &ScriptRunner{timeout: timeout, shell: "bash"}
}

// Run executes scriptPath with bash and returns its output. The game directory
// is passed in ATA_GAME_PATH.
func (r *ScriptRunner) Run(ctx context.Context, scriptPath, gamePath string) (*ScriptResult, error) {
	result := &ScriptResult{}

	info, err := os.Stat(scriptPath)
	if errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("prerequisite script not found: %s", scriptPath)
	}
	if err != nil {
		return result, fmt.Errorf("checking prerequisite script: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("prerequisite script is a directory: %s", scriptPath)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.shell, scriptPath)
	cmd.WaitDelay = 100 * time.Millisecond // Allow graceful shutdown after context cancel
	cmd.Env = append(os.Environ(),
		"ATA_GAME_PATH="+gamePath,
		"ATA_SCRIPT="+scriptPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("prerequisite script timed out after %v: %s", r.timeout, scriptPath)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, fmt.Errorf("prerequisite script failed with exit code %d: %s", result.ExitCode, scriptPath)
		}
		return result, fmt.Errorf("running prerequisite script: %w", err)
	}

	return result, nil
}
