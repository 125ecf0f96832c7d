package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonLinesLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	log := NewJsonLinesLogRecorder(&buf).NewSession("abc123")

	require.NoError(t, log.Record(&PipelineRun{
		Programs:  []string{"/bin/ls", "/usr/bin/wc"},
		ExitCodes: []int{0, 0},
	}))
	require.NoError(t, log.Record(&LineRejected{
		Line:   "ls |",
		Reason: "input cannot start or end with a pipe",
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "abc123", first.SessionID)
	assert.NotZero(t, first.TimestampMicros)
	require.NotNil(t, first.PipelineRun)
	assert.Equal(t, []int{0, 0}, first.PipelineRun.ExitCodes)
	assert.Nil(t, first.LineRejected)

	var second LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.NotNil(t, second.LineRejected)
	assert.Equal(t, "ls |", second.LineRejected.Line)
}

func TestNewSessionGeneratesID(t *testing.T) {
	l := NewDiscardLogRecorder()
	a := l.NewSession("")
	b := l.NewSession("")
	assert.NotEmpty(t, a.sessionID)
	assert.NotEqual(t, a.sessionID, b.sessionID)
}

func TestDiscardRecorder(t *testing.T) {
	log := NewDiscardLogRecorder().NewSession("x")
	assert.NoError(t, log.Record(&SessionStart{User: "nobody"}))
	assert.NoError(t, log.Record(&SessionEnd{}))
}
