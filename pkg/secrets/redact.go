package secrets

import (
	"regexp"
)

// Dedupe filters the variable list so the first occurrence of any name or any
// value wins; later entries whose name OR value was already seen are dropped
// even when the other field differs. this conservative rule avoids emitting two
// variables that collide on a name or redundantly describe the same secret.
// the operation is idempotent: re-running it on its own output is a no-op.
func Dedupe(vars []EnvVar) []EnvVar {
	seenNames := make(map[string]struct{}, len(vars))
	seenValues := make(map[string]struct{}, len(vars))

	var out []EnvVar
	for _, v := range vars {
		if _, ok := seenNames[v.Name]; ok {
			continue
		}
		if _, ok := seenValues[v.Value]; ok {
			continue
		}
		seenNames[v.Name] = struct{}{}
		seenValues[v.Value] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Redact replaces every quoted occurrence of each variable's literal value in
// the script with a process.env reference to its name. matching is
// quote-delimited (the quote that opens must close) and global; regex
// metacharacters in values are escaped so a literal like "p@$$" cannot turn
// into a wildcard. substitution follows the order of vars, which Dedupe has
// already made unambiguous.
func Redact(script string, vars []EnvVar) string {
	for _, v := range vars {
		if v.Value == "" {
			continue
		}
		quoted := regexp.QuoteMeta(v.Value)
		// one pattern per quote style since RE2 has no backreferences
		for _, q := range []string{`'`, `"`, "`"} {
			re := regexp.MustCompile(q + quoted + q)
			script = re.ReplaceAllLiteralString(script, "process.env."+v.Name+"!")
		}
	}
	return script
}
