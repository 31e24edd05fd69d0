package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/testwright/testwright/pkg/agent"
	"github.com/testwright/testwright/pkg/config"
	"github.com/testwright/testwright/pkg/input"
	"github.com/testwright/testwright/pkg/notify"
	"github.com/testwright/testwright/pkg/progress"
	"github.com/testwright/testwright/pkg/render"
	"github.com/testwright/testwright/pkg/web"
)

// generateCommand asks the coding agent to write playwright tests against the
// project, optionally scoped to an authenticated role.
type generateCommand struct {
	Role  string `long:"role" description:"generate tests running as this role"`
	Debug bool   `short:"d" long:"debug" description:"print the agent instruction and raw stream noise"`
	Serve bool   `short:"s" long:"serve" description:"start web dashboard for real-time streaming"`
	Port  int    `short:"p" long:"port" default:"8080" description:"web dashboard port"`

	Args struct {
		Prompt string `positional-arg-name:"prompt" description:"what to test (prompted when omitted)"`
	} `positional-args:"yes"`

	ctx  context.Context
	root *opts
}

// generateLogger is the output surface shared by plain and dashboard modes.
type generateLogger interface {
	SetPhase(phase progress.Phase)
	Print(format string, args ...any)
	PrintRaw(format string, args ...any)
	PrintAligned(text string)
	Error(format string, args ...any)
	Warn(format string, args ...any)
	Elapsed() string
	Path() string
}

// Execute runs the generate command.
func (c *generateCommand) Execute(_ []string) error {
	applyColorMode(c.root.NoColor)
	dir := c.root.Dir

	proj, err := config.LoadProject(dir)
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(dir)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err := agent.CheckAvailable(settings.ClaudeCommand); err != nil {
		return err
	}
	if err := ensureAgentCredentials(); err != nil {
		return err
	}

	role, err := c.resolveRole(proj, input.NewTerminalCollector())
	if err != nil {
		return err
	}

	prompt := strings.TrimSpace(c.Args.Prompt)
	if prompt == "" {
		collector := input.NewTerminalCollector()
		prompt, err = collector.Ask("what should the tests cover", "")
		if err != nil {
			return fmt.Errorf("read prompt: %w", err)
		}
		if prompt == "" {
			return errors.New("a test description is required")
		}
	}

	baseLog, err := progress.NewLogger(progress.Config{Command: "generate", Role: role, NoColor: c.root.NoColor})
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer baseLog.Close()

	var log generateLogger = baseLog
	var broadcaster *web.BroadcastLogger
	if c.Serve {
		hub := web.NewHub()
		defer hub.Close()
		buffer := web.NewBuffer(0)

		broadcaster = web.NewBroadcastLogger(baseLog, hub, buffer)
		log = broadcaster

		srv := web.NewServer(web.ServerConfig{Port: c.Port, Role: role, BaseURL: proj.BaseURL}, hub, buffer)
		go func() {
			if srvErr := srv.Start(c.ctx); srvErr != nil {
				fmt.Fprintf(os.Stderr, "web server error: %v\n", srvErr)
			}
		}()
		info().Printf("web dashboard: http://localhost:%d\n", c.Port)
	}

	instruction := buildInstruction(proj, role, prompt)
	if c.Debug {
		log.PrintRaw("instruction:\n%s\n", instruction)
	}

	log.SetPhase(progress.PhaseAgent)
	log.Print("generating tests%s", roleSuffix(role))

	// the agent drives a live browser through the playwright MCP server,
	// authenticated with the role's storage state
	mcpPath, cleanup, err := writeMCPConfig(proj, role)
	if err != nil {
		return fmt.Errorf("write mcp config: %w", err)
	}
	defer cleanup()

	client := agent.New(agent.Options{
		Command:      settings.ClaudeCommand,
		ExtraArgs:    settings.ClaudeArgs,
		WorkDir:      dir,
		MaxTurns:     settings.GenerateMaxTurns,
		AllowedTools: []string{"Edit", "Read", "Write", "Bash", "Glob", "Grep", "mcp__playwright"},
		MCPConfig:    mcpPath,
		Debug:        c.Debug,
		OutputHandler: func(text string) {
			log.PrintAligned(text)
		},
	})

	res := client.Run(c.ctx, instruction)

	notifier := notify.New(notify.Params{
		WebhookURLs:  settings.NotifyWebhooks,
		CustomScript: settings.NotifyScript,
		TimeoutMs:    settings.NotifyTimeoutMs,
	}, baseLog)

	if res.Failed() {
		if broadcaster != nil {
			broadcaster.Signal("FAILED")
		}
		notifier.Send(context.WithoutCancel(c.ctx), notify.Result{
			Status: "failure", Command: "generate", Role: role,
			Duration: log.Elapsed(), Error: failureReason(res),
		})
		return fmt.Errorf("generation failed: %s", failureReason(res))
	}

	rendered, renderErr := render.AgentSummary(res.Summary,
		render.RunStats{Turns: res.NumTurns, DurationMs: res.DurationMs, CostUSD: res.CostUSD}, c.root.NoColor)
	if renderErr != nil {
		rendered = res.Summary
	}
	log.PrintRaw("%s", rendered)

	if broadcaster != nil {
		broadcaster.Signal("COMPLETED")
	}
	notifier.Send(context.WithoutCancel(c.ctx), notify.Result{
		Status: "success", Command: "generate", Role: role, Duration: log.Elapsed(),
	})

	success().Printf("\ncompleted in %s\n", log.Elapsed())
	return nil
}

// resolveRole picks the role to generate for: the flag value when given,
// a single registered role automatically, or an interactive selection.
// no registered roles means unauthenticated tests.
func (c *generateCommand) resolveRole(proj *config.Project, collector input.Collector) (string, error) {
	if c.Role != "" {
		if _, ok := proj.Role(c.Role); !ok {
			return "", fmt.Errorf("role %q not registered, run \"testwright login %s\" first", c.Role, c.Role)
		}
		return c.Role, nil
	}

	switch len(proj.Roles) {
	case 0:
		return "", nil
	case 1:
		info().Printf("using role %q\n", proj.Roles[0].Name)
		return proj.Roles[0].Name, nil
	default:
		names := make([]string, 0, len(proj.Roles))
		for _, r := range proj.Roles {
			names = append(names, r.Name)
		}
		selected, err := collector.Select(c.ctx, "generate tests as which role", names)
		if err != nil {
			return "", fmt.Errorf("select role: %w", err)
		}
		return selected, nil
	}
}

// buildInstruction assembles the agent prompt with project context.
func buildInstruction(proj *config.Project, role, prompt string) string {
	var b strings.Builder
	b.WriteString("Write Playwright tests for the application at ")
	b.WriteString(proj.BaseURL)
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, "Task: %s\n\n", prompt)
	fmt.Fprintf(&b, "Put new spec files under %s. Follow the conventions in %s.\n",
		proj.TestDir, proj.PlaywrightConfigPath)
	b.WriteString("Use the playwright browser tools to explore the live application first: " +
		"navigate the flows the task describes, inspect selectors and page state, " +
		"then write tests grounded in what you observed.\n")

	if role != "" {
		if r, ok := proj.Role(role); ok {
			fmt.Fprintf(&b, "Tests must run as the %q role: place them in %s so the %q "+
				"Playwright project picks them up with storage state %s already authenticated.\n",
				role, r.Folder, role, r.StoragePath)
			if len(r.EnvVars) > 0 {
				fmt.Fprintf(&b, "Credentials are available as %s. Never hardcode credential values.\n",
					strings.Join(r.EnvVars, ", "))
			}
		}
	}

	b.WriteString("Do not modify the auth setup spec or the recorded storage states.")
	return b.String()
}

// mcpConfig mirrors the claude CLI --mcp-config file format.
type mcpConfig struct {
	MCPServers map[string]mcpServer `json:"mcpServers"`
}

type mcpServer struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// buildMCPServer assembles the playwright MCP server entry. when a role is
// given its storage state is loaded so the browser starts authenticated.
func buildMCPServer(proj *config.Project, role string) mcpServer {
	args := []string{"@playwright/mcp@latest"}
	if role != "" {
		if r, ok := proj.Role(role); ok {
			args = append(args, "--storage-state", r.StoragePath)
		}
	}
	return mcpServer{Command: "npx", Args: args}
}

// writeMCPConfig writes a temp MCP config exposing the playwright browser
// server to the agent. the returned cleanup removes the file.
func writeMCPConfig(proj *config.Project, role string) (string, func(), error) {
	cfg := mcpConfig{MCPServers: map[string]mcpServer{"playwright": buildMCPServer(proj, role)}}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", nil, fmt.Errorf("marshal mcp config: %w", err)
	}

	f, err := os.CreateTemp("", "testwright-mcp-*.json")
	if err != nil {
		return "", nil, fmt.Errorf("create mcp config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup on write failure
		return "", nil, fmt.Errorf("write mcp config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup on close failure
		return "", nil, fmt.Errorf("close mcp config: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil //nolint:errcheck // temp file
}

// ensureAgentCredentials checks for agent credentials and offers to take an
// API key interactively. an empty answer aborts the run.
func ensureAgentCredentials() error {
	if agent.HasCredentials() {
		return nil
	}

	collector := input.NewTerminalCollector()
	key, err := collector.Ask("no agent credentials found, enter an Anthropic API key (empty to abort)", "")
	if err != nil {
		return fmt.Errorf("read API key: %w", err)
	}
	if key == "" {
		return errors.New("agent credentials are required, set ANTHROPIC_API_KEY or log in with the claude CLI")
	}

	if err := os.Setenv("ANTHROPIC_API_KEY", key); err != nil {
		return fmt.Errorf("set API key: %w", err)
	}
	return nil
}

// failureReason extracts a printable reason from a failed run.
func failureReason(res agent.Result) string {
	if res.Err != nil {
		return res.Err.Error()
	}
	if res.Summary != "" {
		return res.Summary
	}
	return res.Subtype
}

func roleSuffix(role string) string {
	if role == "" {
		return ""
	}
	return fmt.Sprintf(" as role %q", role)
}
