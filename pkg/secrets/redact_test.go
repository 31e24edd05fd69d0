package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []EnvVar
		want []EnvVar
	}{
		{
			name: "no duplicates",
			in: []EnvVar{
				{Name: "QA_USER_EMAIL", Value: "alice@corp.io"},
				{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"},
			},
			want: []EnvVar{
				{Name: "QA_USER_EMAIL", Value: "alice@corp.io"},
				{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"},
			},
		},
		{
			name: "duplicate name dropped",
			in: []EnvVar{
				{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"},
				{Name: "QA_USER_PASSWORD", Value: "other-pw!"},
			},
			want: []EnvVar{{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"}},
		},
		{
			name: "duplicate value dropped even with different name",
			in: []EnvVar{
				{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"},
				{Name: "QA_ADMIN_PASSWORD", Value: "s3cr3t!"},
			},
			want: []EnvVar{{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"}},
		},
		{
			name: "empty input",
			in:   nil,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedupe(tt.in))
		})
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	in := []EnvVar{
		{Name: "QA_USER_EMAIL", Value: "alice@corp.io"},
		{Name: "QA_USER_EMAIL", Value: "bob@corp.io"},
		{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"},
	}

	once := Dedupe(in)
	twice := Dedupe(once)

	assert.Equal(t, once, twice)
}

func TestRedact(t *testing.T) {
	script := `await page.getByRole('textbox', { name: 'Email' }).fill('alice@corp.io');
await page.getByRole('textbox', { name: 'Password' }).fill('s3cr3t!');`

	vars := []EnvVar{
		{Name: "QA_USER_EMAIL", Value: "alice@corp.io"},
		{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"},
	}

	out := Redact(script, vars)

	assert.NotContains(t, out, "'alice@corp.io'")
	assert.NotContains(t, out, "'s3cr3t!'")
	assert.Equal(t, 1, strings.Count(out, "process.env.QA_USER_EMAIL!"))
	assert.Equal(t, 1, strings.Count(out, "process.env.QA_USER_PASSWORD!"))
}

func TestRedact_AllOccurrencesReplaced(t *testing.T) {
	script := `await page.fill('s3cr3t!');
await page.fill("s3cr3t!");`

	out := Redact(script, []EnvVar{{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"}})

	assert.NotContains(t, out, "s3cr3t!")
	assert.Equal(t, 2, strings.Count(out, "process.env.QA_USER_PASSWORD!"))
}

func TestRedact_QuoteDelimited(t *testing.T) {
	// unquoted occurrences stay untouched
	script := `// recorded value: s3cr3t!
await page.fill('s3cr3t!');`

	out := Redact(script, []EnvVar{{Name: "QA_USER_PASSWORD", Value: "s3cr3t!"}})

	assert.Contains(t, out, "// recorded value: s3cr3t!")
	assert.Contains(t, out, "process.env.QA_USER_PASSWORD!")
}

func TestRedact_EscapesRegexMetacharacters(t *testing.T) {
	script := `await page.fill('p@$$.w*rd');
await page.fill('pXYZwQrd');`

	out := Redact(script, []EnvVar{{Name: "QA_USER_PASSWORD", Value: "p@$$.w*rd"}})

	assert.NotContains(t, out, "'p@$$.w*rd'")
	assert.Contains(t, out, "'pXYZwQrd'", "metacharacters must not wildcard-match other values")
}

func TestRedact_EmptyVars(t *testing.T) {
	script := `await page.fill('s3cr3t!');`
	assert.Equal(t, script, Redact(script, nil))
}

func TestDetectNameRedact_EndToEnd(t *testing.T) {
	script := `await page.getByRole('textbox', { name: 'Email' }).fill('alice@corp.io');
await page.getByRole('textbox', { name: 'Password' }).fill('s3cr3t!');`

	creds := Detect(script, DetectorConfig{})
	require.Len(t, creds, 2)

	vars, errs := Derive(creds, "user")
	require.Empty(t, errs)
	vars = Dedupe(vars)
	require.Len(t, vars, 2)
	assert.Equal(t, "QA_USER_EMAIL", vars[0].Name)
	assert.Equal(t, "QA_USER_PASSWORD", vars[1].Name)

	out := Redact(script, vars)
	assert.NotContains(t, out, "alice@corp.io")
	assert.NotContains(t, out, "s3cr3t!")
	assert.Contains(t, out, "process.env.QA_USER_EMAIL!")
	assert.Contains(t, out, "process.env.QA_USER_PASSWORD!")
}

func TestDetectNameRedact_AdminField(t *testing.T) {
	script := `await page.getByRole('textbox', { name: 'Admin Email' }).fill('alice@corp.io');`

	creds := Detect(script, DetectorConfig{})
	require.Len(t, creds, 1)

	vars, errs := Derive(creds, "user")
	require.Empty(t, errs)
	assert.Equal(t, "QA_ADMIN_EMAIL", vars[0].Name, "admin field wins over supplied role")
}
