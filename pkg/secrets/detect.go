// Package secrets detects credential literals in recorded Playwright scripts
// and rewrites them into environment variable references.
package secrets

import (
	"regexp"
	"sort"
	"strings"
)

// Kind classifies a detected credential field.
type Kind string

// credential kinds emitted by the detector.
const (
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
)

// Credential is a single literal value detected in a recorded script.
// transient - produced from one transcript, never persisted.
type Credential struct {
	Field string // field name from the locator (e.g., "Email", "Admin Password")
	Value string // the literal typed into the field
	Kind  Kind
}

// DetectorConfig holds the keyword and placeholder lists used by Detect.
// empty slices fall back to the built-in defaults, which lets config files
// override individual lists without re-declaring all of them.
type DetectorConfig struct {
	EmailKeywords     []string // case-sensitive substrings marking email/username fields
	PasswordKeywords  []string // case-sensitive substrings marking password fields
	PlaceholderTokens []string // lowercase tokens that mark a value as test data
}

// DefaultDetectorConfig returns the built-in keyword and placeholder lists.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		EmailKeywords:    []string{"Email", "email", "Username", "username", "User", "user"},
		PasswordKeywords: []string{"Password", "password"},
		PlaceholderTokens: []string{
			"test", "demo", "sample", "example", "placeholder",
			"lorem", "ipsum", "john", "jane", "doe",
			"admin", "user", "guest", "test123", "password123",
		},
	}
}

// withDefaults fills empty lists from the built-in defaults.
func (c DetectorConfig) withDefaults() DetectorConfig {
	def := DefaultDetectorConfig()
	if len(c.EmailKeywords) == 0 {
		c.EmailKeywords = def.EmailKeywords
	}
	if len(c.PasswordKeywords) == 0 {
		c.PasswordKeywords = def.PasswordKeywords
	}
	if len(c.PlaceholderTokens) == 0 {
		c.PlaceholderTokens = def.PlaceholderTokens
	}
	return c
}

// fill statement patterns. a recorded statement pairs a field locator with a
// fill action, e.g.:
//
//	await page.getByRole('textbox', { name: 'Email' }).fill('alice@example.com');
//	await page.getByLabel('Password').fill('s3cr3t!');
//
// both quote styles are accepted on either side. the locator and the fill must
// belong to the same statement chain.
var (
	roleFillRe  = regexp.MustCompile(`getByRole\(\s*['"][^'"]*['"]\s*,\s*\{\s*name:\s*['"]([^'"]*)['"][^}]*\}\s*\)\s*\.fill\(\s*['"]([^'"]*)['"]\s*\)`)
	labelFillRe = regexp.MustCompile(`getBy(?:Label|Placeholder)\(\s*['"]([^'"]*)['"][^)]*\)\s*\.fill\(\s*['"]([^'"]*)['"]\s*\)`)

	// selector-shape heuristics: values that look like CSS selectors or
	// attribute queries rather than typed input.
	bareIdentRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
)

// fieldMatch is an intermediate match with its position in the script,
// used to keep detections in first-match order across both patterns.
type fieldMatch struct {
	pos   int
	field string
	value string
}

// Detect scans a recorded script for fill actions on credential-looking fields
// and returns the detected literals in first-match order. values that look like
// selectors or common placeholder test data are dropped, not reported. an empty
// result is not an error - it means there is nothing to redact.
func Detect(script string, cfg DetectorConfig) []Credential {
	cfg = cfg.withDefaults()

	matches := collectFieldFills(script)

	var creds []Credential
	for _, m := range matches {
		kind, ok := classifyField(m.field, cfg)
		if !ok {
			continue
		}
		if m.value == "" || looksLikeSelector(m.value) || isPlaceholder(m.value, cfg.PlaceholderTokens) {
			continue
		}
		creds = append(creds, Credential{Field: m.field, Value: m.value, Kind: kind})
	}
	return creds
}

// collectFieldFills finds all locator+fill pairs in the script, merged from
// both locator patterns and sorted by position.
func collectFieldFills(script string) []fieldMatch {
	var matches []fieldMatch
	for _, re := range []*regexp.Regexp{roleFillRe, labelFillRe} {
		for _, idx := range re.FindAllStringSubmatchIndex(script, -1) {
			matches = append(matches, fieldMatch{
				pos:   idx[0],
				field: script[idx[2]:idx[3]],
				value: script[idx[4]:idx[5]],
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })
	return matches
}

// classifyField maps a field name to a credential kind by substring match.
// password keywords win over email keywords when a name contains both.
func classifyField(field string, cfg DetectorConfig) (Kind, bool) {
	for _, kw := range cfg.PasswordKeywords {
		if strings.Contains(field, kw) {
			return KindPassword, true
		}
	}
	for _, kw := range cfg.EmailKeywords {
		if strings.Contains(field, kw) {
			return KindEmail, true
		}
	}
	return "", false
}

// looksLikeSelector reports whether a value is selector-shaped: leading # or .,
// bracketed attribute syntax, a bare identifier, or containing attribute-query
// substrings. such values come from mis-recorded locators, not typed input.
func looksLikeSelector(v string) bool {
	if strings.HasPrefix(v, "#") || strings.HasPrefix(v, ".") {
		return true
	}
	if strings.Contains(v, "[") && strings.Contains(v, "]") {
		return true
	}
	if bareIdentRe.MatchString(v) {
		return true
	}
	for _, marker := range []string{"data-testid", "data-cy", "class=", "id="} {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}

// isPlaceholder reports whether the lowercased value contains any placeholder
// token. this deliberately over-drops: values containing "admin" or "user" are
// excluded even when they might be real test credentials, trading recall for
// never leaking a false positive.
func isPlaceholder(v string, tokens []string) bool {
	lower := strings.ToLower(v)
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
