package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

//go:embed defaults
var defaultsFS embed.FS

// LocalSettingsFile is the per-project settings override at the project root.
const LocalSettingsFile = ".testwright"

// Settings holds user-level tool settings loaded from ini files.
// fields ending in *Set track whether that field was explicitly set, which
// keeps explicit zero values distinguishable from "not set" during merging.
type Settings struct {
	ClaudeCommand      string
	ClaudeArgs         []string
	MutationMaxTurns   int
	MutationMaxSet     bool
	GenerateMaxTurns   int
	GenerateMaxSet     bool
	EmailKeywords      []string // detector overrides, empty keeps built-ins
	PasswordKeywords   []string
	PlaceholderTokens  []string
	NotifyWebhooks     []string
	NotifyScript       string
	NotifyTimeoutMs    int
	NotifyTimeoutMsSet bool
}

// LoadSettings loads tool settings with the fallback chain
// embedded defaults -> global (~/.config/testwright/config) -> local (.testwright).
// projectDir locates the local override; empty disables it.
func LoadSettings(projectDir string) (*Settings, error) {
	globalPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		globalPath = filepath.Join(home, ".config", "testwright", "config")
	}

	localPath := ""
	if projectDir != "" {
		localPath = filepath.Join(projectDir, LocalSettingsFile)
	}

	embedded, err := parseSettingsFromEmbedded()
	if err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}

	global, err := parseSettingsFromFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("parse global settings: %w", err)
	}

	local, err := parseSettingsFromFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("parse local settings: %w", err)
	}

	// merge: embedded -> global -> local (local wins)
	result := embedded
	result.mergeFrom(&global)
	result.mergeFrom(&local)

	return &result, nil
}

// EnsureDefaultSettings installs the default settings file under the user
// config dir on first run. existing files are never overwritten.
func EnsureDefaultSettings() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home dir: %w", err)
	}
	configDir := filepath.Join(home, ".config", "testwright")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config")
	if _, statErr := os.Stat(configPath); statErr == nil {
		return nil
	} else if !os.IsNotExist(statErr) {
		return fmt.Errorf("check settings file: %w", statErr)
	}

	data, err := defaultsFS.ReadFile("defaults/config")
	if err != nil {
		return fmt.Errorf("read embedded defaults: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// parseSettingsFromFile reads an ini settings file. a missing file or one that
// contains only comments yields empty Settings, letting defaults apply.
func parseSettingsFromFile(path string) (Settings, error) {
	if path == "" {
		return Settings{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	if strings.TrimSpace(stripComments(string(data))) == "" {
		return Settings{}, nil
	}

	return parseSettingsFromBytes(data)
}

func parseSettingsFromEmbedded() (Settings, error) {
	data, err := defaultsFS.ReadFile("defaults/config")
	if err != nil {
		return Settings{}, fmt.Errorf("read embedded defaults: %w", err)
	}
	return parseSettingsFromBytes(data)
}

func parseSettingsFromBytes(data []byte) (Settings, error) {
	// ignoreInlineComment keeps # usable inside values
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	var s Settings
	section := cfg.Section("")

	if key, err := section.GetKey("claude_command"); err == nil {
		s.ClaudeCommand = key.String()
	}
	if key, err := section.GetKey("claude_args"); err == nil {
		s.ClaudeArgs = splitList(key.String())
	}

	if key, err := section.GetKey("mutation_max_turns"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Settings{}, fmt.Errorf("invalid mutation_max_turns: %w", intErr)
		}
		if val < 0 {
			return Settings{}, fmt.Errorf("invalid mutation_max_turns: must be non-negative, got %d", val)
		}
		s.MutationMaxTurns = val
		s.MutationMaxSet = true
	}
	if key, err := section.GetKey("generate_max_turns"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Settings{}, fmt.Errorf("invalid generate_max_turns: %w", intErr)
		}
		if val < 0 {
			return Settings{}, fmt.Errorf("invalid generate_max_turns: must be non-negative, got %d", val)
		}
		s.GenerateMaxTurns = val
		s.GenerateMaxSet = true
	}

	// detector list overrides (comma-separated)
	if key, err := section.GetKey("email_keywords"); err == nil {
		s.EmailKeywords = splitList(key.String())
	}
	if key, err := section.GetKey("password_keywords"); err == nil {
		s.PasswordKeywords = splitList(key.String())
	}
	if key, err := section.GetKey("placeholder_tokens"); err == nil {
		s.PlaceholderTokens = splitList(key.String())
	}

	// notifications
	if key, err := section.GetKey("notify_webhooks"); err == nil {
		s.NotifyWebhooks = splitList(key.String())
	}
	if key, err := section.GetKey("notify_script"); err == nil {
		s.NotifyScript = key.String()
	}
	if key, err := section.GetKey("notify_timeout_ms"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Settings{}, fmt.Errorf("invalid notify_timeout_ms: %w", intErr)
		}
		s.NotifyTimeoutMs = val
		s.NotifyTimeoutMsSet = true
	}

	return s, nil
}

// mergeFrom merges explicitly set values from src into dst.
func (dst *Settings) mergeFrom(src *Settings) {
	if src.ClaudeCommand != "" {
		dst.ClaudeCommand = src.ClaudeCommand
	}
	if len(src.ClaudeArgs) > 0 {
		dst.ClaudeArgs = src.ClaudeArgs
	}
	if src.MutationMaxSet {
		dst.MutationMaxTurns = src.MutationMaxTurns
		dst.MutationMaxSet = true
	}
	if src.GenerateMaxSet {
		dst.GenerateMaxTurns = src.GenerateMaxTurns
		dst.GenerateMaxSet = true
	}
	if len(src.EmailKeywords) > 0 {
		dst.EmailKeywords = src.EmailKeywords
	}
	if len(src.PasswordKeywords) > 0 {
		dst.PasswordKeywords = src.PasswordKeywords
	}
	if len(src.PlaceholderTokens) > 0 {
		dst.PlaceholderTokens = src.PlaceholderTokens
	}
	if len(src.NotifyWebhooks) > 0 {
		dst.NotifyWebhooks = src.NotifyWebhooks
	}
	if src.NotifyScript != "" {
		dst.NotifyScript = src.NotifyScript
	}
	if src.NotifyTimeoutMsSet {
		dst.NotifyTimeoutMs = src.NotifyTimeoutMs
		dst.NotifyTimeoutMsSet = true
	}
}

// splitList splits a comma-separated value, trimming whitespace and dropping
// empty entries.
func splitList(val string) []string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	var out []string
	for p := range strings.SplitSeq(val, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// stripComments removes full-line # comments from ini content.
func stripComments(content string) string {
	var lines []string
	for line := range strings.SplitSeq(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
