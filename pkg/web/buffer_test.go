package web

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testwright/testwright/pkg/progress"
)

func TestBuffer_AddAndAll(t *testing.T) {
	b := NewBuffer(10)
	assert.Empty(t, b.All())
	assert.Equal(t, 0, b.Count())

	b.Add(NewOutputEvent(progress.PhaseRecord, "one"))
	b.Add(NewOutputEvent(progress.PhaseAgent, "two"))

	events := b.All()
	require.Len(t, events, 2)
	assert.Equal(t, "one", events[0].Text)
	assert.Equal(t, "two", events[1].Text)
	assert.Equal(t, 2, b.Count())
}

func TestBuffer_Wraparound(t *testing.T) {
	b := NewBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Add(NewOutputEvent(progress.PhaseAgent, fmt.Sprintf("line %d", i)))
	}

	events := b.All()
	require.Len(t, events, 3)
	assert.Equal(t, "line 3", events[0].Text, "oldest surviving event first")
	assert.Equal(t, "line 4", events[1].Text)
	assert.Equal(t, "line 5", events[2].Text)
	assert.Equal(t, 3, b.Count())
}

func TestBuffer_Clear(t *testing.T) {
	b := NewBuffer(5)
	b.Add(NewOutputEvent(progress.PhaseAgent, "x"))
	b.Clear()

	assert.Empty(t, b.All())
	assert.Equal(t, 0, b.Count())
}

func TestBuffer_DefaultSize(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, DefaultBufferSize, b.maxSize)
}
