// Package config manages testwright configuration: the project document owned
// by the tool (roles, paths, CI settings) and the user-level tool settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ProjectFileName is the project document file at the project root.
const ProjectFileName = "testwright.config.json"

// ErrNotInitialized is returned when a command requires a project document that
// does not exist yet. callers surface it, they never swallow it.
var ErrNotInitialized = errors.New("project not initialized, run \"testwright init\" first")

// Role is a named identity with its own saved credential state and optional
// dedicated test-file scope. owned exclusively by the Project document.
type Role struct {
	Name        string   `json:"name"`
	StoragePath string   `json:"storagePath"`
	TestMatch   []string `json:"testMatch,omitempty"`
	EnvVars     []string `json:"envVars,omitempty"`
	Folder      string   `json:"folder,omitempty"`
}

// GithubActions holds CI workflow settings.
type GithubActions struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Setup holds auth setup spec settings.
type Setup struct {
	Enabled     bool   `json:"enabled"`
	Path        string `json:"path"`
	ProjectName string `json:"projectName,omitempty"`
}

// Project is the aggregate configuration document. all path fields are
// project-relative. it is loaded fully before each mutating operation and
// saved fully after - last writer wins, no locking (single foreground process).
type Project struct {
	BaseURL              string        `json:"baseURL"`
	TestDir              string        `json:"testDir"`
	Roles                []Role        `json:"roles"`
	AuthDir              string        `json:"authDir"`
	GithubActions        GithubActions `json:"githubActions"`
	Setup                Setup         `json:"setup"`
	EnvDir               string        `json:"envDir"`
	PlaywrightConfigPath string        `json:"playwrightConfigPath"`
}

// LoadProject reads the project document from dir.
// returns ErrNotInitialized when the document does not exist.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path) //nolint:gosec // path is constructed from project dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("read project config: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", path, err)
	}
	return &p, nil
}

// Save writes the whole project document to dir.
func (p *Project) Save(dir string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project config: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, ProjectFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	return nil
}

// EnvPath returns the project-relative path of the credential env file.
func (p *Project) EnvPath() string {
	return filepath.Join(p.EnvDir, ".env")
}

// Role returns the role with the given name.
func (p *Project) Role(name string) (Role, bool) {
	for _, r := range p.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// SetRole upserts a role: any existing role with the same name is removed
// before the new one is appended, so calling it twice with the same name is
// idempotent with respect to final state.
func (p *Project) SetRole(r Role) {
	p.removeRole(r.Name)
	p.Roles = append(p.Roles, r)
}

// DeleteRole removes the role with the given name from the in-memory document.
// removing an absent role is a silent no-op; the return value lets callers
// report "not found" when they need to.
func (p *Project) DeleteRole(name string) bool {
	return p.removeRole(name)
}

func (p *Project) removeRole(name string) bool {
	for i, r := range p.Roles {
		if r.Name == name {
			p.Roles = append(p.Roles[:i], p.Roles[i+1:]...)
			return true
		}
	}
	return false
}

// AddRole loads the document from dir, upserts the role, and persists.
// fails with ErrNotInitialized when no document exists.
func AddRole(dir string, r Role) error {
	p, err := LoadProject(dir)
	if err != nil {
		return err
	}
	p.SetRole(r)
	return p.Save(dir)
}

// RemoveRole loads the document from dir, removes the named role if present,
// and persists. absence of the role is not an error.
func RemoveRole(dir, name string) error {
	p, err := LoadProject(dir)
	if err != nil {
		return err
	}
	p.DeleteRole(name)
	return p.Save(dir)
}
