// Package mutator applies role-related edits to user-owned project files by
// delegating them to the coding agent. edits are best-effort: a failed run
// prints manual instructions and the remaining mutations still execute.
package mutator

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/testwright/testwright/pkg/agent"
	"github.com/testwright/testwright/pkg/config"
	"github.com/testwright/testwright/pkg/progress"
)

//go:generate moq -out mocks/agent_runner.go -pkg mocks -skip-ensure -fmt goimports . AgentRunner

// AgentRunner abstracts the agent client for testing.
type AgentRunner interface {
	Run(ctx context.Context, instruction string) agent.Result
}

// Mutation describes one delegated file edit with a manual fallback.
type Mutation struct {
	Name        string // short label shown in progress output
	Target      string // file the edit touches, relative to project root
	Instruction string // agent prompt
	Manual      string // printed when the agent run fails
}

// Orchestrator runs mutations through the agent sequentially.
type Orchestrator struct {
	runner AgentRunner
	log    *progress.Logger
}

// New creates an Orchestrator with the given agent runner and logger.
func New(runner AgentRunner, log *progress.Logger) *Orchestrator {
	return &Orchestrator{runner: runner, log: log}
}

// Apply executes each mutation in order and returns the number of failures.
// a failed mutation reports its manual fallback and does not stop the rest;
// only context cancellation aborts the sequence.
func (o *Orchestrator) Apply(ctx context.Context, mutations []Mutation) int {
	failed := 0
	for i, m := range mutations {
		if ctx.Err() != nil {
			return failed + len(mutations) - i // remaining mutations count as failed on cancel
		}

		o.log.Print("updating %s", m.Target)
		res := o.runner.Run(ctx, m.Instruction)
		if res.Failed() {
			failed++
			o.reportFailure(m, res)
			continue
		}
		o.log.Print("%s updated (%d turns)", m.Target, res.NumTurns)
	}
	return failed
}

// reportFailure logs the error and prints the manual fallback instructions.
func (o *Orchestrator) reportFailure(m Mutation, res agent.Result) {
	if res.Err != nil {
		o.log.Error("%s edit failed: %v", m.Name, res.Err)
	} else {
		o.log.Error("%s edit failed: %s", m.Name, res.Summary)
	}

	header := color.New(color.FgYellow, color.Bold).Sprintf("manual step required for %s:", m.Target)
	o.log.PrintRaw("%s\n%s\n", header, m.Manual)
}

// AddRoleMutations builds the edits that wire a new role into the project's
// playwright config and authentication setup spec.
func AddRoleMutations(proj *config.Project, role config.Role, script string) []Mutation {
	storage := role.StoragePath
	envList := strings.Join(role.EnvVars, ", ")
	testMatch := strings.Join(role.TestMatch, ", ")

	return []Mutation{
		{
			Name:   "playwright config",
			Target: proj.PlaywrightConfigPath,
			Instruction: fmt.Sprintf(
				"In %s, add a Playwright project named %q to the projects array. "+
					"It must use storageState: %q, set testMatch to match %s, and depend on the %q project. "+
					"If a project with that name already exists, update it in place. "+
					"Do not change any other project entries or settings.",
				proj.PlaywrightConfigPath, role.Name, storage, testMatch, proj.Setup.ProjectName),
			Manual: fmt.Sprintf(
				"  add to the projects array in %s:\n"+
					"    { name: '%s', use: { ...devices['Desktop Chrome'], storageState: '%s' },\n"+
					"      testMatch: '%s', dependencies: ['%s'] }",
				proj.PlaywrightConfigPath, role.Name, storage, testMatch, proj.Setup.ProjectName),
		},
		{
			Name:   "auth setup spec",
			Target: proj.Setup.Path,
			Instruction: fmt.Sprintf(
				"In %s, add a setup() block that signs in as the %q role and saves storage state to %q. "+
					"Base it on this recorded flow, keeping the process.env references exactly as written:\n\n%s\n\n"+
					"After the login steps, call page.context().storageState({ path: %q }). "+
					"If a setup block for %q already exists, replace it. Do not touch other roles' blocks.",
				proj.Setup.Path, role.Name, storage, script, storage, role.Name),
			Manual: fmt.Sprintf(
				"  add a setup('authenticate as %s') block to %s that performs the recorded\n"+
					"  login using %s and ends with\n"+
					"    await page.context().storageState({ path: '%s' });",
				role.Name, proj.Setup.Path, envList, storage),
		},
	}
}

// RemoveAllMutations builds the single edit that strips every managed entry
// from the playwright config: the setup project and all role projects. used by
// a full eject, where the setup spec itself is deleted outright.
func RemoveAllMutations(proj *config.Project) []Mutation {
	names := make([]string, 0, len(proj.Roles)+1)
	names = append(names, proj.Setup.ProjectName)
	for _, r := range proj.Roles {
		names = append(names, r.Name)
	}
	list := strings.Join(names, ", ")

	return []Mutation{
		{
			Name:   "playwright config",
			Target: proj.PlaywrightConfigPath,
			Instruction: fmt.Sprintf(
				"In %s, remove the Playwright projects named %s from the projects array. "+
					"Skip any that do not exist. Do not touch other entries or settings.",
				proj.PlaywrightConfigPath, list),
			Manual: fmt.Sprintf("  remove the %s entries from the projects array in %s",
				list, proj.PlaywrightConfigPath),
		},
	}
}

// RemoveRoleMutations builds the edits that detach a role from the playwright
// config and authentication setup spec.
func RemoveRoleMutations(proj *config.Project, role config.Role) []Mutation {
	return []Mutation{
		{
			Name:   "playwright config",
			Target: proj.PlaywrightConfigPath,
			Instruction: fmt.Sprintf(
				"In %s, remove the Playwright project named %q from the projects array. "+
					"If no such project exists, make no changes. Do not touch other entries.",
				proj.PlaywrightConfigPath, role.Name),
			Manual: fmt.Sprintf("  remove the '%s' entry from the projects array in %s",
				role.Name, proj.PlaywrightConfigPath),
		},
		{
			Name:   "auth setup spec",
			Target: proj.Setup.Path,
			Instruction: fmt.Sprintf(
				"In %s, remove the setup() block that authenticates the %q role. "+
					"If no such block exists, make no changes. Leave other roles' blocks intact.",
				proj.Setup.Path, role.Name),
			Manual: fmt.Sprintf("  remove the setup block for '%s' from %s",
				role.Name, proj.Setup.Path),
		},
	}
}
