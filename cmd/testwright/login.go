package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/testwright/testwright/pkg/agent"
	"github.com/testwright/testwright/pkg/config"
	"github.com/testwright/testwright/pkg/envfile"
	"github.com/testwright/testwright/pkg/mutator"
	"github.com/testwright/testwright/pkg/notify"
	"github.com/testwright/testwright/pkg/progress"
	"github.com/testwright/testwright/pkg/recorder"
	"github.com/testwright/testwright/pkg/scaffold"
	"github.com/testwright/testwright/pkg/secrets"
)

// loginCommand records an authenticated login flow for a role, captures the
// storage state, redacts credentials into env vars and registers the role.
type loginCommand struct {
	Role    string `long:"role" description:"role name, alternative to the positional argument"`
	Refresh bool   `long:"refresh" description:"re-record the storage state only, keep existing artifacts"`
	Browser string `long:"browser" description:"browser for the recorder (chromium, firefox, webkit)"`

	Args struct {
		Role string `positional-arg-name:"role" description:"role name (e.g. admin, editor)"`
	} `positional-args:"yes"`

	ctx  context.Context
	root *opts
}

// Execute runs the login command.
func (c *loginCommand) Execute(_ []string) error {
	applyColorMode(c.root.NoColor)
	dir := c.root.Dir
	role := strings.TrimSpace(c.Args.Role)
	if role == "" {
		role = strings.TrimSpace(c.Role)
	}
	if role == "" {
		return errors.New("role name is required, pass it as an argument or with --role")
	}

	proj, err := config.LoadProject(dir)
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(dir)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err := recorder.CheckAvailable(); err != nil {
		return err
	}

	log, err := progress.NewLogger(progress.Config{Command: "login", Role: role, NoColor: c.root.NoColor})
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer log.Close()

	if c.Refresh {
		return c.refreshStorage(proj, dir, role, log)
	}

	script, storagePath, err := c.record(proj, dir, role, log)
	if err != nil {
		return err
	}

	vars := c.deriveEnvVars(script, role, settings, log)
	redacted := secrets.Redact(script, vars)

	added, err := c.appendEnvFiles(proj, dir, vars)
	if err != nil {
		return err
	}
	for _, name := range added {
		log.Print("captured %s", name)
	}

	roleEntry := config.Role{
		Name:        role,
		StoragePath: storagePath,
		TestMatch:   []string{fmt.Sprintf("**/%s/**/*.spec.ts", role)},
		EnvVars:     varNames(vars),
		Folder:      filepath.Join(proj.TestDir, role),
	}
	proj.SetRole(roleEntry)
	if err := proj.Save(dir); err != nil {
		return err
	}
	log.Print("registered role %q", role)

	failures := c.applyMutations(proj, dir, roleEntry, redacted, settings, log)
	c.updateWorkflow(proj, dir, roleEntry.EnvVars, log)

	c.notifyResult(settings, log, notify.Result{
		Status:   "success",
		Command:  "login",
		Role:     role,
		Duration: log.Elapsed(),
		EnvVars:  roleEntry.EnvVars,
	})

	if failures > 0 {
		log.Warn("%d artifact update(s) need the manual steps above", failures)
	}
	log.Print("login flow captured in %s", log.Elapsed())
	return nil
}

// record runs the interactive recorder and returns the recorded script text
// and the project-relative storage path.
func (c *loginCommand) record(proj *config.Project, dir, role string, log *progress.Logger) (script, storagePath string, err error) {
	log.SetPhase(progress.PhaseRecord)

	if mkErr := os.MkdirAll(filepath.Join(dir, proj.AuthDir), 0o750); mkErr != nil {
		return "", "", fmt.Errorf("create auth dir: %w", mkErr)
	}

	storagePath = filepath.Join(proj.AuthDir, role+".json")
	scriptPath := filepath.Join(os.TempDir(), fmt.Sprintf("testwright-record-%s.ts", role))
	defer os.Remove(scriptPath) //nolint:errcheck // temp file, best-effort cleanup

	rec := recorder.New(recorder.Options{
		BaseURL:     proj.BaseURL,
		StoragePath: filepath.Join(dir, storagePath),
		ScriptPath:  scriptPath,
		Browser:     c.Browser,
	}, log)

	log.Print("recording login for role %q, close the browser when signed in", role)
	script, err = rec.Record(c.ctx)
	if err != nil {
		return "", "", fmt.Errorf("record login: %w", err)
	}
	return script, storagePath, nil
}

// refreshStorage re-records only the storage state for an existing role.
func (c *loginCommand) refreshStorage(proj *config.Project, dir, role string, log *progress.Logger) error {
	if _, ok := proj.Role(role); !ok {
		return fmt.Errorf("role %q not registered, run login without --refresh first", role)
	}

	_, storagePath, err := c.record(proj, dir, role, log)
	if err != nil {
		return err
	}
	log.Print("storage state refreshed: %s", storagePath)
	return nil
}

// deriveEnvVars runs detection and naming over the recorded script.
func (c *loginCommand) deriveEnvVars(script, role string, settings *config.Settings, log *progress.Logger) []secrets.EnvVar {
	detectorCfg := secrets.DetectorConfig{
		EmailKeywords:     settings.EmailKeywords,
		PasswordKeywords:  settings.PasswordKeywords,
		PlaceholderTokens: settings.PlaceholderTokens,
	}

	creds := secrets.Detect(script, detectorCfg)
	if len(creds) == 0 {
		log.Warn("no credentials detected in the recorded flow")
		return nil
	}

	vars, errs := secrets.Derive(creds, role)
	for _, derivErr := range errs {
		log.Warn("credential naming: %v", derivErr)
	}
	return secrets.Dedupe(vars)
}

// appendEnvFiles writes captured values to .env and mirrors the keys with
// blank values into .env.example. returns names added to .env.
func (c *loginCommand) appendEnvFiles(proj *config.Project, dir string, vars []secrets.EnvVar) ([]string, error) {
	if len(vars) == 0 {
		return nil, nil
	}

	entries := make([]envfile.Entry, 0, len(vars))
	for _, v := range vars {
		entries = append(entries, envfile.Entry{Key: v.Name, Value: v.Value})
	}

	envPath := filepath.Join(dir, proj.EnvPath())
	added, err := envfile.Append(envPath, entries)
	if err != nil {
		return nil, fmt.Errorf("append env file: %w", err)
	}
	if _, err := envfile.AppendExample(envPath+".example", entries); err != nil {
		return added, fmt.Errorf("append env example: %w", err)
	}
	return added, nil
}

// applyMutations delegates playwright config and setup spec edits to the
// agent. failures degrade to printed manual steps, they never fail login.
func (c *loginCommand) applyMutations(proj *config.Project, dir string, role config.Role, script string, settings *config.Settings, log *progress.Logger) int {
	log.SetPhase(progress.PhaseMutate)

	muts := mutator.AddRoleMutations(proj, role, script)

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

// updateWorkflow adds repository secret references for the role's env vars to
// the CI workflow. best-effort.
func (c *loginCommand) updateWorkflow(proj *config.Project, dir string, names []string, log *progress.Logger) {
	if !proj.GithubActions.Enabled || len(names) == 0 {
		return
	}

	added, err := scaffold.AppendWorkflowSecrets(filepath.Join(dir, proj.GithubActions.Path), names)
	if err != nil {
		log.Warn("workflow not updated: %v", err)
		return
	}
	if len(added) > 0 {
		log.Print("workflow secrets added: %s", strings.Join(added, ", "))
		log.Print("remember to define them in the repository secrets settings")
	}
}

// notifyResult sends the result through configured notification channels.
func (c *loginCommand) notifyResult(settings *config.Settings, log *progress.Logger, r notify.Result) {
	svc := notify.New(notify.Params{
		WebhookURLs:  settings.NotifyWebhooks,
		CustomScript: settings.NotifyScript,
		TimeoutMs:    settings.NotifyTimeoutMs,
	}, log)
	svc.Send(c.ctx, r)
}

// varNames extracts the env var names in order.
func varNames(vars []secrets.EnvVar) []string {
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}
	return names
}
