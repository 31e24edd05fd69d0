package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/testwright/testwright/pkg/config"
	"github.com/testwright/testwright/pkg/gitops"
	"github.com/testwright/testwright/pkg/input"
	"github.com/testwright/testwright/pkg/scaffold"
)

// initCommand scaffolds a new playwright test project and writes the project
// document. re-running without --force leaves existing files alone.
type initCommand struct {
	BaseURL    string `long:"base-url" description:"application base URL (prompted when omitted)"`
	TestDir    string `long:"test-dir" default:"tests" description:"directory for test files"`
	AuthDir    string `long:"auth-dir" default:".auth" description:"directory for saved storage states"`
	EnvFile    string `long:"env-file" default:".env" description:"path for the credential env file"`
	ConfigPath string `long:"config" default:"playwright.config.ts" description:"path for the generated playwright config"`
	NoCI       bool   `long:"no-ci" description:"skip the github actions workflow"`
	Force      bool   `long:"force" description:"overwrite existing scaffolded files"`

	ctx  context.Context
	root *opts
}

// Execute runs the init command.
func (c *initCommand) Execute(_ []string) error {
	applyColorMode(c.root.NoColor)
	dir := c.root.Dir

	if err := validateEnvFile(c.EnvFile); err != nil {
		return err
	}

	if _, err := config.LoadProject(dir); err == nil && !c.Force {
		return errors.New("project already initialized, use --force to re-scaffold")
	} else if err != nil && !errors.Is(err, config.ErrNotInitialized) {
		return err
	}

	baseURL := c.BaseURL
	if baseURL == "" {
		collector := input.NewTerminalCollector()
		answered, err := collector.Ask("application base URL", "http://localhost:3000")
		if err != nil {
			return fmt.Errorf("read base URL: %w", err)
		}
		baseURL = answered
	}

	params := scaffold.Params{
		BaseURL:              baseURL,
		TestDir:              c.TestDir,
		AuthDir:              c.AuthDir,
		EnvFile:              filepath.Clean(c.EnvFile),
		PlaywrightConfigPath: c.ConfigPath,
		SetupPath:            filepath.Join(c.TestDir, "auth.setup.ts"),
		WorkflowPath:         filepath.Join(".github", "workflows", "e2e.yml"),
		WithCI:               !c.NoCI,
	}

	res, err := scaffold.Create(dir, params, c.Force)
	if err != nil {
		return fmt.Errorf("scaffold project: %w", err)
	}

	for _, f := range res.Created {
		success().Printf("created %s\n", f)
	}
	for _, f := range res.Skipped {
		info().Printf("kept existing %s\n", f)
	}

	proj := c.buildProject(baseURL, params)
	// re-init keeps previously registered roles
	if existing, loadErr := config.LoadProject(dir); loadErr == nil {
		proj.Roles = existing.Roles
	}
	if err := proj.Save(dir); err != nil {
		return err
	}
	success().Printf("created %s\n", config.ProjectFileName)

	if err := config.EnsureDefaultSettings(); err != nil {
		info().Printf("settings defaults not installed: %v\n", err)
	}

	c.maintainGitignore(dir)

	fmt.Println()
	info().Println("next steps:")
	info().Println("  testwright login <role>   record an authenticated session")
	info().Println("  testwright generate       generate tests with the coding agent")
	return nil
}

// validateEnvFile enforces a ".env" basename. the project document stores
// only the env directory, so any other name would be silently lost.
func validateEnvFile(path string) error {
	if filepath.Base(filepath.Clean(path)) != ".env" {
		return fmt.Errorf("env file must be named .env, got %q (pick a directory, e.g. --env-file config/.env)", path)
	}
	return nil
}

// buildProject assembles the project document from init parameters.
func (c *initCommand) buildProject(baseURL string, p scaffold.Params) *config.Project {
	return &config.Project{
		BaseURL:              baseURL,
		TestDir:              p.TestDir,
		AuthDir:              p.AuthDir,
		EnvDir:               filepath.Dir(c.EnvFile),
		PlaywrightConfigPath: p.PlaywrightConfigPath,
		GithubActions:        config.GithubActions{Enabled: p.WithCI, Path: p.WorkflowPath},
		Setup:                config.Setup{Enabled: true, Path: p.SetupPath, ProjectName: "setup"},
	}
}

// maintainGitignore keeps secrets and session logs out of version control.
// best-effort, a missing repository only gets a note.
func (c *initCommand) maintainGitignore(dir string) {
	root, err := gitops.Root(dir)
	if err != nil {
		if errors.Is(err, gitops.ErrNoRepository) {
			info().Println("not a git repository, skipping .gitignore maintenance")
			return
		}
		info().Printf(".gitignore not updated: %v\n", err)
		return
	}

	patterns := []string{c.AuthDir + "/", c.EnvFile, "testwright-*.log"}
	added, err := gitops.EnsureIgnored(root, patterns)
	if err != nil {
		info().Printf(".gitignore not updated: %v\n", err)
		return
	}
	for _, p := range added {
		success().Printf("gitignored %s\n", p)
	}
}
