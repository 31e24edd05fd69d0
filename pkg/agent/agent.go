// Package agent runs the Claude Code CLI with streaming JSON output parsing.
package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

//go:generate moq -out mocks/command_runner.go -pkg mocks -skip-ensure -fmt goimports . CommandRunner

// Result holds the outcome of one agent run. the terminal "result" event
// carries cost, duration and turn count; Text accumulates the streamed
// assistant output seen before it.
type Result struct {
	Text       string  // accumulated assistant text output
	Summary    string  // final result message from the terminal event
	Subtype    string  // terminal event subtype (success, error_max_turns, ...)
	IsError    bool    // agent-reported failure flag
	NumTurns   int
	DurationMs int64
	CostUSD    float64
	Err        error // transport/execution error if any
}

// Failed reports whether the run should be treated as unsuccessful, either by
// the agent's own result flag or a transport error.
func (r Result) Failed() bool {
	return r.Err != nil || r.IsError
}

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout io.Reader, wait func() error, err error)
}

// execCommandRunner is the default runner using os/exec with process-group
// teardown on cancellation.
type execCommandRunner struct{}

func (r *execCommandRunner) Run(ctx context.Context, dir, name string, args ...string) (io.Reader, func() error, error) {
	cmd := exec.Command(name, args...) //nolint:gosec // command comes from settings, args built internally
	cmd.Dir = dir
	setupProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	// merge stderr into stdout so CLI diagnostics show up in the stream
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start command: %w", err)
	}

	pg := newProcessGroupCleanup(cmd, ctx.Done())
	return stdout, pg.Wait, nil
}

// Options configures an agent Client.
type Options struct {
	Command       string          // CLI command, default "claude"
	ExtraArgs     []string        // user-configured extra arguments
	WorkDir       string          // working directory for the agent process
	MaxTurns      int             // turn budget, 0 means CLI default
	AllowedTools  []string        // tool allow-list, empty means CLI default
	MCPConfig     string          // path to an MCP servers config file, empty skips it
	Debug         bool            // print non-JSON stream lines
	OutputHandler func(text string) // called for each streamed text chunk, can be nil
}

// Client executes Claude CLI runs with streaming JSON parsing.
type Client struct {
	opts      Options
	cmdRunner CommandRunner // for testing, nil uses default
}

// New creates a Client with the given options.
func New(opts Options) *Client {
	return &Client{opts: opts}
}

// Run executes the agent with the given instruction and parses the streamed
// JSON events until the terminal result event or stream end.
func (c *Client) Run(ctx context.Context, instruction string) Result {
	command := c.opts.Command
	if command == "" {
		command = "claude"
	}

	args := []string{"--output-format", "stream-json", "--verbose"}
	if c.opts.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(c.opts.MaxTurns))
	}
	if len(c.opts.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(c.opts.AllowedTools, ","))
	}
	if c.opts.MCPConfig != "" {
		args = append(args, "--mcp-config", c.opts.MCPConfig)
	}
	args = append(args, c.opts.ExtraArgs...)
	args = append(args, "-p", instruction)

	runner := c.cmdRunner
	if runner == nil {
		runner = &execCommandRunner{}
	}

	stdout, wait, err := runner.Run(ctx, c.opts.WorkDir, command, args...)
	if err != nil {
		return Result{Err: err}
	}

	result := c.parseStream(stdout)

	if waitErr := wait(); waitErr != nil {
		if ctx.Err() != nil {
			result.Err = ctx.Err()
			return result
		}
		// non-zero exit with a parsed result event is already reported via
		// IsError; only flag a transport error when nothing came through
		if result.Subtype == "" && result.Text == "" {
			return Result{Err: fmt.Errorf("agent exited with error: %w", waitErr)}
		}
	}

	return result
}

// streamEvent represents one JSON line of claude CLI stream output.
type streamEvent struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
			Name string `json:"name"` // tool name for tool_use blocks
		} `json:"content"`
	} `json:"message"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	IsError      bool    `json:"is_error"`
	DurationMs   int64   `json:"duration_ms"`
	NumTurns     int     `json:"num_turns"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	ResultText   string  `json:"result"`
}

// parseStream reads JSON events line by line, accumulating assistant text and
// capturing the terminal result event.
func (c *Client) parseStream(r io.Reader) Result {
	var output strings.Builder
	var result Result

	scanner := bufio.NewScanner(r)
	// large buffer for big JSON lines (tool results can be sizable)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			if c.opts.Debug {
				fmt.Printf("[debug] non-JSON line: %s\n", line)
			}
			continue
		}

		if event.Type == "result" {
			result.Subtype = event.Subtype
			result.IsError = event.IsError
			result.NumTurns = event.NumTurns
			result.DurationMs = event.DurationMs
			result.CostUSD = event.TotalCostUSD
			result.Summary = event.ResultText
			continue
		}

		text := c.extractText(&event)
		if text == "" {
			continue
		}
		output.WriteString(text)
		if c.opts.OutputHandler != nil {
			c.opts.OutputHandler(text)
		}
	}

	result.Text = output.String()

	if err := scanner.Err(); err != nil {
		result.Err = fmt.Errorf("stream read: %w", err)
	}
	return result
}

// extractText pulls displayable text out of assistant and delta events.
// tool invocations are reported as bracketed one-liners.
func (c *Client) extractText(event *streamEvent) string {
	switch event.Type {
	case "assistant":
		var texts []string
		for _, b := range event.Message.Content {
			switch b.Type {
			case "text":
				if b.Text != "" {
					texts = append(texts, b.Text)
				}
			case "tool_use":
				if b.Name != "" {
					texts = append(texts, fmt.Sprintf("[tool: %s]\n", b.Name))
				}
			}
		}
		return strings.Join(texts, "")
	case "content_block_delta":
		if event.Delta.Type == "text_delta" {
			return event.Delta.Text
		}
	}
	return ""
}

// CheckAvailable verifies the agent CLI command can be found in PATH.
func CheckAvailable(command string) error {
	if command == "" {
		command = "claude"
	}
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("%s not found in PATH", command)
	}
	return nil
}

// HasCredentials reports whether agent credentials are likely present: either
// an API key in the environment or a prior CLI login session on disk.
func HasCredentials() bool {
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(home, ".claude.json"))
	return err == nil
}
