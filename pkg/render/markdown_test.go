package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	t.Run("with color enabled renders markdown", func(t *testing.T) {
		content := "# Generated Tests\n\nAdded **3** spec files."
		result, err := Markdown(content, false)
		require.NoError(t, err)
		// glamour transforms markdown - should not be identical to input
		assert.NotEqual(t, content, result)
		assert.Contains(t, result, "Generated Tests")
		assert.Contains(t, result, "3")
	})

	t.Run("with noColor returns plain content", func(t *testing.T) {
		content := "# Generated Tests\n\nAdded **3** spec files."
		result, err := Markdown(content, true)
		require.NoError(t, err)
		assert.Equal(t, content, result)
	})

	t.Run("handles empty content", func(t *testing.T) {
		result, err := Markdown("", false)
		require.NoError(t, err)
		// glamour may add trailing whitespace for empty content
		assert.Empty(t, strings.TrimSpace(result))
	})

	t.Run("handles code blocks", func(t *testing.T) {
		content := "```ts\ntest('loads dashboard', async ({ page }) => {});\n```"
		result, err := Markdown(content, false)
		require.NoError(t, err)
		assert.Contains(t, result, "loads dashboard")
	})
}

func TestAgentSummary(t *testing.T) {
	t.Run("summary with stats footer", func(t *testing.T) {
		result, err := AgentSummary("Added login coverage for the admin role.",
			RunStats{Turns: 12, DurationMs: 95000, CostUSD: 0.42}, true)
		require.NoError(t, err)
		assert.Contains(t, result, "Added login coverage")
		assert.Contains(t, result, "12 turns")
		assert.Contains(t, result, "1m35s")
		assert.Contains(t, result, "$0.4200")
	})

	t.Run("empty summary still shows stats", func(t *testing.T) {
		result, err := AgentSummary("", RunStats{Turns: 2, DurationMs: 4000}, true)
		require.NoError(t, err)
		assert.Contains(t, result, "2 turns")
		assert.NotContains(t, result, "$", "zero cost omitted")
	})
}
