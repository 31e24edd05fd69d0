// Package recorder drives the Playwright codegen recorder as a blocking
// foreground subprocess and collects its outputs: a recorded script and a
// storage-state snapshot of the authenticated session.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// logger is the minimal logging surface the recorder needs.
type logger interface {
	Print(format string, args ...any)
	Warn(format string, args ...any)
}

// Options configures a recording session.
type Options struct {
	BaseURL     string // URL the recorder opens
	StoragePath string // where codegen saves the session storage state
	ScriptPath  string // where codegen writes the recorded script
	Browser     string // optional browser name, codegen default when empty
}

// Recorder records a login flow through playwright codegen.
type Recorder struct {
	opts Options
	log  logger

	// runCmd abstracts the blocking subprocess for testing. the default runs
	// npx with inherited terminal I/O so the user can drive the browser.
	runCmd func(ctx context.Context, name string, args ...string) error
}

// New creates a Recorder.
func New(opts Options, log logger) *Recorder {
	r := &Recorder{opts: opts, log: log}
	r.runCmd = r.runForeground
	return r
}

// CheckAvailable verifies npx (and therefore playwright codegen) is reachable.
func CheckAvailable() error {
	if _, err := exec.LookPath("npx"); err != nil {
		return errors.New("npx not found in PATH, install Node.js to record login flows")
	}
	return nil
}

// Record runs the interactive recording session and returns the recorded
// script text. it blocks until the user closes the recorder browser. the
// storage-state file is watched during the session so capture is reported as
// it happens rather than only at the end.
func (r *Recorder) Record(ctx context.Context) (string, error) {
	if err := os.MkdirAll(filepath.Dir(r.opts.StoragePath), 0o750); err != nil {
		return "", fmt.Errorf("create auth dir: %w", err)
	}
	if dir := filepath.Dir(r.opts.ScriptPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("create script dir: %w", err)
		}
	}

	stopWatch := r.watchCapture()
	defer stopWatch()

	args := []string{
		"playwright", "codegen",
		"--target", "playwright-test",
		"--save-storage", r.opts.StoragePath,
		"--output", r.opts.ScriptPath,
	}
	if r.opts.Browser != "" {
		args = append(args, "--browser", r.opts.Browser)
	}
	args = append(args, r.opts.BaseURL)

	r.log.Print("recording login flow at %s, close the browser window when done", r.opts.BaseURL)
	if err := r.runCmd(ctx, "npx", args...); err != nil {
		return "", fmt.Errorf("playwright codegen: %w", err)
	}

	data, err := os.ReadFile(r.opts.ScriptPath) //nolint:gosec // path comes from project config
	if err != nil {
		return "", fmt.Errorf("read recorded script: %w", err)
	}

	if _, err := os.Stat(r.opts.StoragePath); err != nil {
		return "", fmt.Errorf("storage state not captured at %s, was the login completed?", r.opts.StoragePath)
	}

	return string(data), nil
}

// watchCapture watches the storage-state directory and reports when the
// snapshot file appears. watch failures only cost the live hint, so they are
// logged and ignored.
func (r *Recorder) watchCapture() (stop func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.log.Warn("storage watch unavailable: %v", err)
		return func() {}
	}

	if err := watcher.Add(filepath.Dir(r.opts.StoragePath)); err != nil {
		r.log.Warn("storage watch unavailable: %v", err)
		watcher.Close()
		return func() {}
	}

	target := filepath.Clean(r.opts.StoragePath)
	go func() {
		reported := false
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if reported || filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) {
					r.log.Print("storage state captured: %s", r.opts.StoragePath)
					reported = true
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { watcher.Close() }
}

// runForeground executes the command with inherited terminal I/O.
func (r *Recorder) runForeground(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
