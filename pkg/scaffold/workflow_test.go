package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorkflow = `name: e2e
on:
  push:
    branches: [main]
jobs:
  test:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: Install dependencies
        run: npm ci
      - name: Run tests
        run: npx playwright test
        env:
          BASE_URL: ${{ vars.BASE_URL }}
`

func writeWorkflow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "e2e.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAppendWorkflowSecrets(t *testing.T) {
	path := writeWorkflow(t, testWorkflow)

	added, err := AppendWorkflowSecrets(path, []string{"QA_ADMIN_EMAIL", "QA_ADMIN_PASSWORD"})
	require.NoError(t, err)
	assert.Equal(t, []string{"QA_ADMIN_EMAIL", "QA_ADMIN_PASSWORD"}, added)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "QA_ADMIN_EMAIL: ${{ secrets.QA_ADMIN_EMAIL }}")
	assert.Contains(t, string(data), "QA_ADMIN_PASSWORD: ${{ secrets.QA_ADMIN_PASSWORD }}")
	assert.Contains(t, string(data), "BASE_URL: ${{ vars.BASE_URL }}", "existing env entries preserved")
	assert.Contains(t, string(data), "npm ci", "unrelated steps preserved")
}

func TestAppendWorkflowSecrets_SkipsExisting(t *testing.T) {
	path := writeWorkflow(t, testWorkflow)

	added, err := AppendWorkflowSecrets(path, []string{"QA_USER_EMAIL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"QA_USER_EMAIL"}, added)

	added, err = AppendWorkflowSecrets(path, []string{"QA_USER_EMAIL", "QA_USER_PASSWORD"})
	require.NoError(t, err)
	assert.Equal(t, []string{"QA_USER_PASSWORD"}, added, "only missing names added on second run")
}

func TestAppendWorkflowSecrets_NoEnvBlock(t *testing.T) {
	path := writeWorkflow(t, `name: e2e
jobs:
  test:
    runs-on: ubuntu-latest
    steps:
      - name: Run tests
        run: npx playwright test
`)

	added, err := AppendWorkflowSecrets(path, []string{"QA_USER_EMAIL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"QA_USER_EMAIL"}, added)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "env:")
	assert.Contains(t, string(data), "QA_USER_EMAIL: ${{ secrets.QA_USER_EMAIL }}")
}

func TestAppendWorkflowSecrets_NoTestStep(t *testing.T) {
	path := writeWorkflow(t, `name: e2e
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: npm ci
`)

	_, err := AppendWorkflowSecrets(path, []string{"QA_USER_EMAIL"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no playwright test step")
}

func TestRemoveWorkflowSecrets(t *testing.T) {
	path := writeWorkflow(t, testWorkflow)

	_, err := AppendWorkflowSecrets(path, []string{"QA_USER_EMAIL", "QA_USER_PASSWORD", "QA_ADMIN_EMAIL"})
	require.NoError(t, err)

	err = RemoveWorkflowSecrets(path, []string{"QA_USER_EMAIL", "QA_USER_PASSWORD"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "QA_USER_EMAIL")
	assert.NotContains(t, string(data), "QA_USER_PASSWORD")
	assert.Contains(t, string(data), "QA_ADMIN_EMAIL: ${{ secrets.QA_ADMIN_EMAIL }}")
	assert.Contains(t, string(data), "BASE_URL: ${{ vars.BASE_URL }}")
}

func TestRemoveWorkflowSecrets_MissingFileIsNoop(t *testing.T) {
	err := RemoveWorkflowSecrets(filepath.Join(t.TempDir(), "nope.yml"), []string{"QA_USER_EMAIL"})
	assert.NoError(t, err)
}

func TestRemoveWorkflowSecrets_MissingEntryIsNoop(t *testing.T) {
	path := writeWorkflow(t, testWorkflow)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = RemoveWorkflowSecrets(path, []string{"QA_GHOST_EMAIL"})
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "file untouched when nothing removed")
}
