package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// customChannel delivers results by piping them to a user-provided script.
// the script receives the Result as JSON on stdin, so a hook can react to
// login and generation outcomes without parsing log output.
type customChannel struct {
	script string
}

func newCustomChannel(script string) *customChannel {
	return &customChannel{script: script}
}

// send serializes the result and runs the script with it on stdin. stderr is
// captured and folded into the returned error for the caller's log line.
func (c *customChannel) send(ctx context.Context, r Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.script) //nolint:gosec // script path comes from settings, not external input
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("script %s: %w, stderr: %s", c.script, err, stderr.String())
		}
		return fmt.Errorf("script %s: %w", c.script, err)
	}
	return nil
}
