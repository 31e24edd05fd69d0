package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvName(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		field string
		value string
		role  string
		want  string
	}{
		{"email with role", KindEmail, "Email", "alice@corp.io", "checkout", "QA_CHECKOUT_EMAIL"},
		{"password with role", KindPassword, "Password", "s3cr3t!", "checkout", "QA_CHECKOUT_PASSWORD"},
		{"email without role", KindEmail, "Email", "alice@corp.io", "", "QA_USER_EMAIL"},
		{"password without role", KindPassword, "Password", "s3cr3t!", "", "QA_USER_PASSWORD"},
		{"admin field overrides role", KindEmail, "Admin Email", "alice@corp.io", "user", "QA_ADMIN_EMAIL"},
		{"admin value overrides role", KindPassword, "Password", "administrator-pw", "viewer", "QA_ADMIN_PASSWORD"},
		{"admin case-insensitive", KindEmail, "ADMIN login", "alice@corp.io", "checkout", "QA_ADMIN_EMAIL"},
		{"role normalized", KindEmail, "Email", "alice@corp.io", "power-user", "QA_POWER_USER_EMAIL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnvName(tt.kind, tt.field, tt.value, tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvName_Deterministic(t *testing.T) {
	first, err := EnvName(KindEmail, "Email", "alice@corp.io", "checkout")
	require.NoError(t, err)
	second, err := EnvName(KindEmail, "Email", "alice@corp.io", "checkout")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnvName_UnknownKind(t *testing.T) {
	got, err := EnvName(Kind("token"), "API Token", "tok_123", "checkout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown credential kind")
	assert.Equal(t, "QA_CHECKOUT_VALUE", got, "fallback name must still be usable")
}

func TestDerive(t *testing.T) {
	creds := []Credential{
		{Field: "Email", Value: "alice@corp.io", Kind: KindEmail},
		{Field: "Password", Value: "s3cr3t!", Kind: KindPassword},
	}

	vars, errs := Derive(creds, "user")

	require.Empty(t, errs)
	require.Len(t, vars, 2)
	assert.Equal(t, "QA_USER_EMAIL", vars[0].Name)
	assert.Equal(t, "QA_USER_PASSWORD", vars[1].Name)
	assert.Equal(t, "alice@corp.io", vars[0].Value)
	assert.Equal(t, "s3cr3t!", vars[1].Value)
}

func TestDerive_ReportsNamingErrors(t *testing.T) {
	creds := []Credential{
		{Field: "Token", Value: "tok_123", Kind: Kind("token")},
	}

	vars, errs := Derive(creds, "user")

	require.Len(t, errs, 1)
	require.Len(t, vars, 1, "fallback entry kept despite error")
	assert.Equal(t, "QA_USER_VALUE", vars[0].Name)
}
