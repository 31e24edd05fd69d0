// Package envfile appends KEY=value lines to dotenv files. files are only ever
// appended to, never rewritten, so user-managed entries and comments survive.
package envfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Entry is a single variable to append.
type Entry struct {
	Key   string
	Value string
}

// Append adds the entries missing from the file at path, creating the file if
// needed. entries whose key is already present are skipped. returns the keys
// that were actually added.
func Append(path string, entries []Entry) ([]string, error) {
	existing, err := readKeys(path)
	if err != nil {
		return nil, err
	}

	var missing []Entry
	for _, e := range entries {
		if _, ok := existing[e.Key]; ok {
			continue
		}
		missing = append(missing, e)
	}
	if len(missing) == 0 {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // env file path comes from project config
	if err != nil {
		return nil, fmt.Errorf("open env file %s: %w", path, err)
	}

	var added []string
	var b strings.Builder
	for _, e := range missing {
		fmt.Fprintf(&b, "%s=%s\n", e.Key, e.Value)
		added = append(added, e.Key)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return nil, fmt.Errorf("append env file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close env file %s: %w", path, err)
	}
	return added, nil
}

// AppendExample mirrors Append for the .example companion: same keys, empty
// values, so the example file documents required variables without leaking any.
func AppendExample(path string, entries []Entry) ([]string, error) {
	blank := make([]Entry, len(entries))
	for i, e := range entries {
		blank[i] = Entry{Key: e.Key}
	}
	return Append(path, blank)
}

// readKeys parses the existing file into a key set. a missing file is an empty
// set, not an error.
func readKeys(path string) (map[string]struct{}, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("parse env file %s: %w", path, err)
	}
	keys := make(map[string]struct{}, len(vals))
	for k := range vals {
		keys[k] = struct{}{}
	}
	return keys, nil
}
