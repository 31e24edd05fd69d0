// Package render provides terminal rendering utilities for agent output.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
)

// Markdown renders markdown content for terminal display.
// If noColor is true, returns the content unchanged.
// Otherwise, uses glamour to render with auto-detected style and word wrap.
func Markdown(content string, noColor bool) (string, error) {
	if noColor {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	result, err := renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return result, nil
}

// RunStats describes the footer line appended below an agent summary.
type RunStats struct {
	Turns      int
	DurationMs int64
	CostUSD    float64
}

// AgentSummary renders the agent's final summary with a stats footer. an empty
// summary still produces the footer so the user sees the run cost.
func AgentSummary(summary string, stats RunStats, noColor bool) (string, error) {
	var b strings.Builder
	if strings.TrimSpace(summary) != "" {
		b.WriteString(summary)
		b.WriteString("\n\n---\n\n")
	}

	dur := time.Duration(stats.DurationMs) * time.Millisecond
	fmt.Fprintf(&b, "*%d turns, %s", stats.Turns, dur.Round(time.Second))
	if stats.CostUSD > 0 {
		fmt.Fprintf(&b, ", $%.4f", stats.CostUSD)
	}
	b.WriteString("*\n")

	return Markdown(b.String(), noColor)
}
