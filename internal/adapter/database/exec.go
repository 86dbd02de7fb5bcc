package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/semmidev/exbackup/internal/domain"
)

// waitDelay bounds how long we wait for the dump's output pipes after it was killed.
const waitDelay = 5 * time.Second

// runTool runs a dump binary to completion. A zero timeout means no limit.
func runTool(ctx context.Context, timeout time.Duration, tool string, env []string, args ...string) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.WaitDelay = waitDelay
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
	}

	out := strings.TrimSpace(string(output))
	if out == "" {
		return domain.ExternalToolError(tool, fmt.Errorf("failed: %w", err))
	}
	return domain.ExternalToolError(tool, fmt.Errorf("failed: %w, output: %s", err, out))
}
