// Package scaffold creates the initial project artifacts owned by testwright:
// the Playwright config, the auth setup spec, env files, and the CI workflow.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates
var templatesFS embed.FS

// Params holds the values rendered into the scaffolded artifacts.
// all paths are project-relative.
type Params struct {
	BaseURL              string
	TestDir              string
	AuthDir              string
	EnvFile              string
	PlaywrightConfigPath string
	SetupPath            string
	WorkflowPath         string
	WithCI               bool
}

// Result reports what Create did.
type Result struct {
	Created []string // files written
	Skipped []string // files that already existed and were left alone
}

// artifact pairs a template with its destination resolver.
type artifact struct {
	tmpl string
	dest func(Params) string
	skip func(Params) bool
}

var artifacts = []artifact{
	{tmpl: "playwright.config.ts.tmpl", dest: func(p Params) string { return p.PlaywrightConfigPath }},
	{tmpl: "auth.setup.ts.tmpl", dest: func(p Params) string { return p.SetupPath }},
	{tmpl: "example.spec.ts.tmpl", dest: func(p Params) string { return filepath.Join(p.TestDir, "example.spec.ts") }},
	{tmpl: "env.tmpl", dest: func(p Params) string { return p.EnvFile }},
	{tmpl: "env.example.tmpl", dest: func(p Params) string { return p.EnvFile + ".example" }},
	{tmpl: "e2e.yml.tmpl", dest: func(p Params) string { return p.WorkflowPath }, skip: func(p Params) bool { return !p.WithCI }},
}

// Create renders the project artifacts under dir. existing files are skipped
// unless force is set - scaffolding never silently clobbers user edits without
// an explicit override.
func Create(dir string, p Params, force bool) (Result, error) {
	var res Result

	for _, a := range artifacts {
		if a.skip != nil && a.skip(p) {
			continue
		}
		dest := a.dest(p)
		path := filepath.Join(dir, dest)

		if _, err := os.Stat(path); err == nil && !force {
			res.Skipped = append(res.Skipped, dest)
			continue
		}

		data, err := render(a.tmpl, p)
		if err != nil {
			return res, err
		}

		if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o750); mkdirErr != nil {
			return res, fmt.Errorf("create dir for %s: %w", dest, mkdirErr)
		}
		if writeErr := os.WriteFile(path, data, 0o600); writeErr != nil {
			return res, fmt.Errorf("write %s: %w", dest, writeErr)
		}
		res.Created = append(res.Created, dest)
	}

	return res, nil
}

// render executes an embedded template with the given params.
func render(name string, p Params) ([]byte, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
