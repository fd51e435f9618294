package logx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"verbose": LevelVerbose,
		"LOAD":    LevelLoad,
		" perf ":  LevelPerf,
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestCustomLevelNames(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelVerbose)

	Verbose(l, "candidate")
	Load(l, "read file")
	Perf(l, "stage")

	out := buf.String()
	assert.Contains(t, out, "level=VERBOSE")
	assert.Contains(t, out, "level=LOAD")
	assert.Contains(t, out, "level=PERF")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelWarn)

	Verbose(l, "hidden")
	Load(l, "hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
