package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject() *Project {
	return &Project{
		BaseURL: "https://app.example.com",
		TestDir: "tests",
		AuthDir: ".auth",
		EnvDir:  ".",
		GithubActions: GithubActions{
			Enabled: true,
			Path:    ".github/workflows/e2e.yml",
		},
		Setup: Setup{
			Enabled: true,
			Path:    "tests/auth.setup.ts",
		},
		PlaywrightConfigPath: "playwright.config.ts",
	}
}

func TestProject_SaveLoad(t *testing.T) {
	dir := t.TempDir()

	p := testProject()
	p.Roles = []Role{{Name: "admin", StoragePath: ".auth/admin.json", EnvVars: []string{"QA_ADMIN_EMAIL"}}}
	require.NoError(t, p.Save(dir))

	loaded, err := LoadProject(dir)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestProject_EnvPath(t *testing.T) {
	p := testProject()
	assert.Equal(t, ".env", p.EnvPath())

	p.EnvDir = "config"
	assert.Equal(t, filepath.Join("config", ".env"), p.EnvPath())
}

func TestLoadProject_NotInitialized(t *testing.T) {
	_, err := LoadProject(t.TempDir())
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestLoadProject_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte("{not json"), 0o600))

	_, err := LoadProject(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse project config")
}

func TestProject_SetRole_Upsert(t *testing.T) {
	p := testProject()

	p.SetRole(Role{Name: "user", StoragePath: ".auth/user.json"})
	p.SetRole(Role{Name: "user", StoragePath: ".auth/user-v2.json"})

	require.Len(t, p.Roles, 1)
	assert.Equal(t, ".auth/user-v2.json", p.Roles[0].StoragePath, "second write wins")
}

func TestProject_DeleteRole(t *testing.T) {
	p := testProject()
	p.SetRole(Role{Name: "admin", StoragePath: ".auth/admin.json"})
	p.SetRole(Role{Name: "user", StoragePath: ".auth/user.json"})

	assert.True(t, p.DeleteRole("user"))
	require.Len(t, p.Roles, 1)
	assert.Equal(t, "admin", p.Roles[0].Name)

	// removing an absent role is a no-op
	assert.False(t, p.DeleteRole("ghost"))
	assert.Len(t, p.Roles, 1)
}

func TestAddRole_Persisted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testProject().Save(dir))

	require.NoError(t, AddRole(dir, Role{Name: "user", StoragePath: ".auth/user.json"}))
	require.NoError(t, AddRole(dir, Role{Name: "user", StoragePath: ".auth/user-v2.json"}))

	p, err := LoadProject(dir)
	require.NoError(t, err)
	require.Len(t, p.Roles, 1)
	assert.Equal(t, ".auth/user-v2.json", p.Roles[0].StoragePath)
}

func TestAddRole_NotInitialized(t *testing.T) {
	err := AddRole(t.TempDir(), Role{Name: "user"})
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestRemoveRole_Persisted(t *testing.T) {
	dir := t.TempDir()
	p := testProject()
	p.SetRole(Role{Name: "admin", StoragePath: ".auth/admin.json"})
	p.SetRole(Role{Name: "user", StoragePath: ".auth/user.json"})
	require.NoError(t, p.Save(dir))

	require.NoError(t, RemoveRole(dir, "user"))

	loaded, err := LoadProject(dir)
	require.NoError(t, err)
	require.Len(t, loaded.Roles, 1)
	assert.Equal(t, "admin", loaded.Roles[0].Name)

	// absent role removal still persists cleanly
	require.NoError(t, RemoveRole(dir, "ghost"))
	loaded, err = LoadProject(dir)
	require.NoError(t, err)
	assert.Len(t, loaded.Roles, 1)
}

func TestRemoveRole_NotInitialized(t *testing.T) {
	err := RemoveRole(t.TempDir(), "user")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestProject_RoleLookup(t *testing.T) {
	p := testProject()
	p.SetRole(Role{Name: "admin", StoragePath: ".auth/admin.json"})

	r, ok := p.Role("admin")
	require.True(t, ok)
	assert.Equal(t, ".auth/admin.json", r.StoragePath)

	_, ok = p.Role("ghost")
	assert.False(t, ok)
}
