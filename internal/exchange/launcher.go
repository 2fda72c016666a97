package exchange

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
)

// LaunchOptions describes one interactive feedback request.
type LaunchOptions struct {
	Prompt            string
	PredefinedOptions []string
	ContextInfo       string
	DisableImages     bool

	// Command overrides the child argv for tests. It receives the result
	// file path and returns the executable and its arguments. When nil the
	// launcher re-executes the current binary's `ui` subcommand.
	Command func(resultFile string) (string, []string)
}

// Launch runs the interactive surface as a child process and returns its
// FeedbackResult. Exactly one result is produced per successful run; the
// result file is cleaned up on every path.
func Launch(ctx context.Context, opts LaunchOptions) (feedback.FeedbackResult, error) {
	resultFile := filepath.Join(os.TempDir(), fmt.Sprintf("feedback-%s.json", uuid.NewString()))
	defer os.Remove(resultFile)

	name, args, err := buildCommand(opts, resultFile)
	if err != nil {
		return feedback.FeedbackResult{}, err
	}

	cmd := exec.CommandContext(ctx, name, args...)
	attachTerminal(cmd)

	if err := cmd.Run(); err != nil {
		return feedback.FeedbackResult{}, fmt.Errorf("%w: %v", ErrLaunchFailure, err)
	}

	if _, err := os.Stat(resultFile); err != nil {
		return feedback.FeedbackResult{}, fmt.Errorf("%w: %s", ErrMissingResultFile, resultFile)
	}
	return ReadResultFile(resultFile)
}

func buildCommand(opts LaunchOptions, resultFile string) (string, []string, error) {
	if opts.Command != nil {
		name, args := opts.Command(resultFile)
		return name, args, nil
	}

	self, err := os.Executable()
	if err != nil {
		return "", nil, fmt.Errorf("%w: cannot locate own executable: %v", ErrLaunchFailure, err)
	}

	args := []string{
		"ui",
		"--prompt", opts.Prompt,
		"--output-file", resultFile,
	}
	if len(opts.PredefinedOptions) > 0 {
		args = append(args, "--predefined-options", strings.Join(opts.PredefinedOptions, OptionsDelimiter))
	}
	if opts.ContextInfo != "" {
		args = append(args, "--context-info", opts.ContextInfo)
	}
	if opts.DisableImages {
		args = append(args, "--disable-image-upload")
	}
	return self, args, nil
}

// attachTerminal wires the child to the controlling terminal. The parent's
// stdin/stdout carry the MCP protocol, so the TUI must not inherit them.
func attachTerminal(cmd *exec.Cmd) {
	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		cmd.Stdin = tty
		cmd.Stdout = tty
		cmd.Stderr = os.Stderr
		return
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
}

// SplitOptions parses a pipe-triple-delimited option list from the argv.
// Empty input means no options section.
func SplitOptions(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, OptionsDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
