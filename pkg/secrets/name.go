package secrets

import (
	"fmt"
	"regexp"
	"strings"
)

// EnvVar pairs a derived environment variable name with the literal it stands for.
type EnvVar struct {
	Name  string
	Value string
	Kind  Kind
}

var nonNameChars = regexp.MustCompile(`[^A-Z0-9]+`)

// EnvName derives the environment variable name for a detected credential.
// the role scopes the name (QA_<ROLE>_EMAIL / QA_<ROLE>_PASSWORD, defaulting
// to USER when no role is given). when the field name or the literal value
// contains "admin" (case-insensitive) the name is pinned to QA_ADMIN_EMAIL /
// QA_ADMIN_PASSWORD regardless of role, so admin-flavored fields never end up
// namespaced under a non-admin role.
//
// an unknown kind returns a QA_<ROLE>_VALUE fallback together with an error;
// callers should report it rather than silently mis-tag the secret.
func EnvName(kind Kind, field, value, role string) (string, error) {
	prefix := rolePrefix(role)

	if containsAdmin(field) || containsAdmin(value) {
		prefix = "ADMIN"
	}

	switch kind {
	case KindEmail:
		return fmt.Sprintf("QA_%s_EMAIL", prefix), nil
	case KindPassword:
		return fmt.Sprintf("QA_%s_PASSWORD", prefix), nil
	default:
		return fmt.Sprintf("QA_%s_VALUE", prefix), fmt.Errorf("unknown credential kind %q", kind)
	}
}

// Derive maps detected credentials to named environment variables for the given
// role. naming errors are reported per credential but do not stop the pass -
// the fallback name is still usable for redaction.
func Derive(creds []Credential, role string) ([]EnvVar, []error) {
	var vars []EnvVar
	var errs []error
	for _, c := range creds {
		name, err := EnvName(c.Kind, c.Field, c.Value, role)
		if err != nil {
			errs = append(errs, err)
		}
		vars = append(vars, EnvVar{Name: name, Value: c.Value, Kind: c.Kind})
	}
	return vars, errs
}

// rolePrefix normalizes a role name for use inside an env var name.
func rolePrefix(role string) string {
	if role == "" {
		return "USER"
	}
	p := strings.Trim(nonNameChars.ReplaceAllString(strings.ToUpper(role), "_"), "_")
	if p == "" {
		return "USER"
	}
	return p
}

func containsAdmin(s string) bool {
	return strings.Contains(strings.ToLower(s), "admin")
}
