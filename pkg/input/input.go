// Package input provides terminal input collection for interactive role
// selection and confirmation prompts.
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

//go:generate moq -out mocks/collector.go -pkg mocks -skip-ensure -fmt goimports . Collector

// Collector provides interactive input collection.
type Collector interface {
	// Select presents options and returns the chosen one.
	Select(ctx context.Context, prompt string, options []string) (string, error)
	// Confirm asks a yes/no question, returning defaultYes on empty input.
	Confirm(prompt string, defaultYes bool) (bool, error)
	// Ask reads a free-text answer, returning fallback on empty input.
	Ask(prompt, fallback string) (string, error)
}

// TerminalCollector implements Collector using fzf (if available) or numbered
// selection fallback.
type TerminalCollector struct {
	stdin  io.Reader // for testing, nil uses os.Stdin
	stdout io.Writer // for testing, nil uses os.Stdout
}

// NewTerminalCollector creates a new TerminalCollector with default stdin/stdout.
func NewTerminalCollector() *TerminalCollector {
	return &TerminalCollector{}
}

// Select presents options using fzf if available, otherwise falls back to
// numbered selection.
func (c *TerminalCollector) Select(ctx context.Context, prompt string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no options provided")
	}

	if hasFzf() {
		return c.selectWithFzf(ctx, prompt, options)
	}
	return c.selectWithNumbers(prompt, options)
}

// Confirm asks a yes/no question on stdout and reads the answer from stdin.
func (c *TerminalCollector) Confirm(prompt string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	_, _ = fmt.Fprintf(c.out(), "%s [%s]: ", prompt, hint)

	line, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Ask reads a free-text answer, returning fallback on empty input.
func (c *TerminalCollector) Ask(prompt, fallback string) (string, error) {
	if fallback != "" {
		_, _ = fmt.Fprintf(c.out(), "%s [%s]: ", prompt, fallback)
	} else {
		_, _ = fmt.Fprintf(c.out(), "%s: ", prompt)
	}

	line, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

func (c *TerminalCollector) in() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

func (c *TerminalCollector) out() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}

// hasFzf checks if fzf is available in PATH.
func hasFzf() bool {
	_, err := exec.LookPath("fzf")
	return err == nil
}

// selectWithFzf uses fzf for interactive selection.
func (c *TerminalCollector) selectWithFzf(ctx context.Context, prompt string, options []string) (string, error) {
	input := strings.Join(options, "\n")

	cmd := exec.CommandContext(ctx, "fzf", "--prompt", prompt+": ", "--height", "10", "--layout=reverse") //nolint:gosec // fzf is a trusted external tool, prompt is display text
	cmd.Stdin = strings.NewReader(input)
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()
	if err != nil {
		// fzf returns exit code 130 when user presses Escape
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
			return "", errors.New("selection canceled")
		}
		return "", fmt.Errorf("fzf selection failed: %w", err)
	}

	selected := strings.TrimSpace(string(output))
	if selected == "" {
		return "", errors.New("no selection made")
	}
	return selected, nil
}

// selectWithNumbers presents numbered options for selection via stdin.
func (c *TerminalCollector) selectWithNumbers(prompt string, options []string) (string, error) {
	stdout := c.out()

	_, _ = fmt.Fprintln(stdout)
	_, _ = fmt.Fprintln(stdout, prompt)
	for i, opt := range options {
		_, _ = fmt.Fprintf(stdout, "  %d) %s\n", i+1, opt)
	}
	_, _ = fmt.Fprintf(stdout, "Enter number (1-%d): ", len(options))

	line, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}

	line = strings.TrimSpace(line)
	num, err := strconv.Atoi(line)
	if err != nil {
		return "", fmt.Errorf("invalid number: %s", line)
	}
	if num < 1 || num > len(options) {
		return "", fmt.Errorf("selection out of range: %d (must be 1-%d)", num, len(options))
	}
	return options[num-1], nil
}
