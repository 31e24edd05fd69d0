package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/testwright/testwright/pkg/agent"
	"github.com/testwright/testwright/pkg/config"
	"github.com/testwright/testwright/pkg/input"
	"github.com/testwright/testwright/pkg/mutator"
	"github.com/testwright/testwright/pkg/progress"
	"github.com/testwright/testwright/pkg/scaffold"
)

// ejectCommand removes tool-owned artifacts. with --role it removes only that
// role's storage state, registry entry, workflow secrets and generated blocks;
// without it the whole suite of owned files goes, project document included.
// removal is best-effort per artifact, failures are reported and the rest
// still runs.
type ejectCommand struct {
	Role   string `long:"role" description:"remove only this role's artifacts"`
	DryRun bool   `long:"dry-run" description:"show what would be removed without touching anything"`
	Force  bool   `long:"force" description:"skip the confirmation prompt"`

	ctx  context.Context
	root *opts
}

// Execute runs the eject command.
func (c *ejectCommand) Execute(_ []string) error {
	applyColorMode(c.root.NoColor)
	dir := c.root.Dir

	proj, err := config.LoadProject(dir)
	if err != nil {
		return err
	}

	if c.Role == "" {
		return c.ejectAll(proj, dir)
	}
	return c.ejectRole(proj, dir, c.Role)
}

// ejectRole removes a single role's artifacts and registry entry.
func (c *ejectCommand) ejectRole(proj *config.Project, dir, roleName string) error {
	role, ok := proj.Role(roleName)
	if !ok {
		return fmt.Errorf("role %q not registered", roleName)
	}

	if c.DryRun {
		c.printRolePlan(proj, role)
		return nil
	}

	if err := c.confirm(fmt.Sprintf("remove role %q and its artifacts?", roleName)); err != nil {
		return err
	}

	log, err := progress.NewLogger(progress.Config{Command: "eject", Role: roleName, NoColor: c.root.NoColor})
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer log.Close()
	log.SetPhase(progress.PhaseMutate)

	failures := 0

	if removeErr := c.removeFile(dir, role.StoragePath, log); removeErr != nil {
		failures++
	}
	if workflowErr := c.removeWorkflowSecrets(proj, dir, role, log); workflowErr != nil {
		failures++
	}
	failures += c.applyRemovals(dir, mutator.RemoveRoleMutations(proj, role), log)

	// registry entry goes last so a partial eject can be re-run
	proj.DeleteRole(roleName)
	if saveErr := proj.Save(dir); saveErr != nil {
		return saveErr
	}
	log.Print("role %q removed from %s", roleName, config.ProjectFileName)

	if len(role.EnvVars) > 0 {
		log.Print("env entries left in place, remove them from %s manually if unused", proj.EnvPath())
	}

	if failures > 0 {
		return fmt.Errorf("eject finished with %d failed step(s), see output above", failures)
	}
	success().Printf("role %q ejected\n", roleName)
	return nil
}

// ejectAll removes every tool-owned file. the externally-owned playwright
// config is cleaned through the agent rather than deleted.
func (c *ejectCommand) ejectAll(proj *config.Project, dir string) error {
	paths := c.ownedPaths(proj)

	if c.DryRun {
		info().Println("would remove:")
		for _, p := range paths {
			info().Printf("  - %s\n", p)
		}
		info().Printf("  - managed project entries in %s\n", proj.PlaywrightConfigPath)
		info().Printf("  - %s\n", config.ProjectFileName)
		return nil
	}

	if err := c.confirm("remove all testwright-owned files?"); err != nil {
		return err
	}

	log, err := progress.NewLogger(progress.Config{Command: "eject", NoColor: c.root.NoColor})
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer log.Close()
	log.SetPhase(progress.PhaseMutate)

	failures := 0
	for _, p := range paths {
		if removeErr := c.removeFile(dir, p, log); removeErr != nil {
			failures++
		}
	}

	// auth dir only goes when nothing else lives in it
	if err := os.Remove(filepath.Join(dir, proj.AuthDir)); err == nil {
		log.Print("removed %s/", proj.AuthDir)
	}

	failures += c.applyRemovals(dir, mutator.RemoveAllMutations(proj), log)

	// project document goes last so a partial eject can be re-run
	if err := os.Remove(filepath.Join(dir, config.ProjectFileName)); err != nil && !os.IsNotExist(err) {
		log.Error("remove %s: %v", config.ProjectFileName, err)
		failures++
	} else {
		log.Print("removed %s", config.ProjectFileName)
	}

	log.Print("env entries left in place, remove %s manually if unused", proj.EnvPath())

	if failures > 0 {
		return fmt.Errorf("eject finished with %d failed step(s), see output above", failures)
	}
	success().Println("project ejected")
	return nil
}

// ownedPaths lists the files a full eject deletes, project-relative.
func (c *ejectCommand) ownedPaths(proj *config.Project) []string {
	var paths []string
	for _, r := range proj.Roles {
		paths = append(paths, r.StoragePath)
	}
	if proj.Setup.Enabled {
		paths = append(paths, proj.Setup.Path)
	}
	if proj.GithubActions.Enabled {
		paths = append(paths, proj.GithubActions.Path)
	}
	paths = append(paths, proj.EnvPath()+".example")
	return paths
}

// confirm asks before destructive work unless --force was given.
func (c *ejectCommand) confirm(prompt string) error {
	if c.Force {
		return nil
	}
	collector := input.NewTerminalCollector()
	confirmed, err := collector.Confirm(prompt, false)
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if !confirmed {
		return errors.New("aborted")
	}
	return nil
}

// printRolePlan lists the artifacts a real role eject would touch.
func (c *ejectCommand) printRolePlan(proj *config.Project, role config.Role) {
	info().Printf("would remove role %q:\n", role.Name)
	info().Printf("  - storage state %s\n", role.StoragePath)
	info().Printf("  - role entry in %s\n", config.ProjectFileName)
	if proj.GithubActions.Enabled && len(role.EnvVars) > 0 {
		info().Printf("  - workflow secrets in %s\n", proj.GithubActions.Path)
	}
	info().Printf("  - %q project entry in %s\n", role.Name, proj.PlaywrightConfigPath)
	info().Printf("  - setup block in %s\n", proj.Setup.Path)
}

// removeFile deletes one project-relative file. a missing file is fine.
func (c *ejectCommand) removeFile(dir, rel string, log *progress.Logger) error {
	if err := os.Remove(filepath.Join(dir, rel)); err != nil {
		if os.IsNotExist(err) {
			log.Print("%s already gone", rel)
			return nil
		}
		log.Error("remove %s: %v", rel, err)
		return err
	}
	log.Print("removed %s", rel)
	return nil
}

// removeWorkflowSecrets drops the role's secret references from the CI workflow.
func (c *ejectCommand) removeWorkflowSecrets(proj *config.Project, dir string, role config.Role, log *progress.Logger) error {
	if !proj.GithubActions.Enabled || len(role.EnvVars) == 0 {
		return nil
	}

	path := filepath.Join(dir, proj.GithubActions.Path)
	if err := scaffold.RemoveWorkflowSecrets(path, role.EnvVars); err != nil {
		log.Error("workflow not updated: %v", err)
		return err
	}
	log.Print("workflow secrets removed from %s", proj.GithubActions.Path)
	return nil
}

// applyRemovals delegates playwright config and setup spec edits to the agent,
// degrading to manual instructions. returns failure count.
func (c *ejectCommand) applyRemovals(dir string, muts []mutator.Mutation, log *progress.Logger) int {
	settings, err := config.LoadSettings(dir)
	if err != nil {
		log.Error("load settings: %v", err)
		return 1
	}

	if err := agent.CheckAvailable(settings.ClaudeCommand); err != nil {
		log.Warn("agent unavailable (%v), apply these steps by hand:", err)
		for _, m := range muts {
			log.PrintRaw("%s:\n%s\n", m.Target, m.Manual)
		}
		return len(muts)
	}

	client := agent.New(agent.Options{
		Command:      settings.ClaudeCommand,
		ExtraArgs:    settings.ClaudeArgs,
		WorkDir:      dir,
		MaxTurns:     settings.MutationMaxTurns,
		AllowedTools: []string{"Edit", "Read", "Write"},
	})
	return mutator.New(client, log).Apply(c.ctx, muts)
}
