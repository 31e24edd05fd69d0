package web

import (
	"fmt"

	"github.com/testwright/testwright/pkg/progress"
)

// BroadcastLogger wraps a progress.Logger and mirrors its output to SSE
// clients. all calls are forwarded to the inner logger while also being
// recorded in the replay buffer and broadcast through the hub.
//
// Thread safety: BroadcastLogger is NOT goroutine-safe. All methods must be
// called from a single goroutine (the command's main loop). The hub and
// buffer it writes to handle concurrent access from SSE clients.
type BroadcastLogger struct {
	inner  *progress.Logger
	hub    *Hub
	buffer *Buffer
	phase  progress.Phase
}

// NewBroadcastLogger creates a logger mirroring inner to the hub and buffer.
func NewBroadcastLogger(inner *progress.Logger, hub *Hub, buffer *Buffer) *BroadcastLogger {
	return &BroadcastLogger{inner: inner, hub: hub, buffer: buffer, phase: progress.PhaseAgent}
}

// SetPhase sets the current pipeline phase for color coding.
func (b *BroadcastLogger) SetPhase(phase progress.Phase) {
	b.phase = phase
	b.inner.SetPhase(phase)
}

// Print writes a timestamped message and broadcasts it.
func (b *BroadcastLogger) Print(format string, args ...any) {
	b.inner.Print(format, args...)
	b.publish(NewOutputEvent(b.phase, formatText(format, args...)))
}

// PrintRaw writes without timestamp and broadcasts it.
func (b *BroadcastLogger) PrintRaw(format string, args ...any) {
	b.inner.PrintRaw(format, args...)
	b.publish(NewOutputEvent(b.phase, formatText(format, args...)))
}

// PrintAligned writes wrapped text with timestamps and broadcasts it.
func (b *BroadcastLogger) PrintAligned(text string) {
	b.inner.PrintAligned(text)
	b.publish(NewOutputEvent(b.phase, text))
}

// Error writes an error message and broadcasts it.
func (b *BroadcastLogger) Error(format string, args ...any) {
	b.inner.Error(format, args...)
	b.publish(NewErrorEvent(b.phase, formatText(format, args...)))
}

// Warn writes a warning message and broadcasts it.
func (b *BroadcastLogger) Warn(format string, args ...any) {
	b.inner.Warn(format, args...)
	b.publish(NewWarnEvent(b.phase, formatText(format, args...)))
}

// Signal broadcasts a terminal signal ("COMPLETED" or "FAILED") so connected
// dashboards can mark the run as finished.
func (b *BroadcastLogger) Signal(signal string) {
	b.publish(NewSignalEvent(b.phase, signal))
}

// Elapsed returns the humanized elapsed time since the logger started.
func (b *BroadcastLogger) Elapsed() string {
	return b.inner.Elapsed()
}

// Path returns the session log file path.
func (b *BroadcastLogger) Path() string {
	return b.inner.Path()
}

// publish records the event for replay and broadcasts it to live clients.
func (b *BroadcastLogger) publish(e Event) {
	b.buffer.Add(e)
	b.hub.Broadcast(e)
}

// formatText formats a string with args, like fmt.Sprintf.
func formatText(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
