package logbus

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_RingBufferKeepsLatest(t *testing.T) {
	b := New(2, nil)
	b.Log("info", "one", nil)
	b.Log("warn", "two", nil)
	b.Log("error", "three", nil)

	logs := b.Logs("")
	require.Len(t, logs, 2)
	assert.Equal(t, "two", logs[0].Msg)
	assert.Equal(t, "three", logs[1].Msg)
	assert.Len(t, b.Logs("error"), 1)
}

func TestBus_WritesThroughLogger(t *testing.T) {
	var out bytes.Buffer
	b := New(10, NewLogger("checkin", "debug", &out))
	b.SetField("runId", "r-1")
	b.Log("debug", "hello", map[string]any{"step": "login"})

	s := out.String()
	assert.Contains(t, s, "[checkin] hello")
	assert.Contains(t, s, "runId=r-1")
	assert.Contains(t, s, "step=login")
}

func TestBus_BufferKeepsBaseFields(t *testing.T) {
	b := New(10, nil)
	b.SetField("runId", "r-2")
	b.Log("info", "step", map[string]any{"account": "a***@x.com"})

	logs := b.Logs("info")
	require.Len(t, logs, 1)
	assert.Equal(t, "r-2", logs[0].Fields["runId"])
	assert.Equal(t, "a***@x.com", logs[0].Fields["account"])
}

func TestBus_LevelFilter(t *testing.T) {
	var out bytes.Buffer
	b := New(10, NewLogger("", "warn", &out))
	b.Log("info", "quiet", nil)
	b.Log("error", "loud", nil)

	assert.NotContains(t, out.String(), "quiet")
	assert.Contains(t, out.String(), "loud")
	// the buffer keeps everything regardless of the output level
	assert.Len(t, b.Logs(""), 2)
}

func TestBus_ClosedDropsMessages(t *testing.T) {
	b := New(10, nil)
	b.Close()
	b.Log("info", "after close", nil)
	assert.Empty(t, b.Snapshot())
}
