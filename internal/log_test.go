package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"ERROR": LogLevelError,
		"warn":  LogLevelWarn,
		" Info": LogLevelInfo,
		"debug": LogLevelDebug,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	level, err := ParseLogLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, LogLevelInfo, level)
}

func TestLoggerGatesByLevel(t *testing.T) {
	buf := captureLog(t)
	l := NewLogger(LogLevelWarn)

	l.Debug("[Test] debug")
	l.Info("[Test] info")
	l.Warn("[Test] warn %d", 1)
	l.Error("[Test] error")

	assert.Equal(t, "[Test] warn 1\n[Test] error\n", buf.String())

	buf.Reset()
	l.SetLevel(LogLevelDebug)
	l.Debug("[Test] now visible")
	assert.Equal(t, "[Test] now visible\n", buf.String())
	assert.Equal(t, "DEBUG", l.Level().String())
}
