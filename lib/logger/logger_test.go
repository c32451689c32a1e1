package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Setup(&Settings{Output: &buf, Level: "warn"})
	t.Cleanup(func() { Setup(&Settings{Output: os.Stderr, Level: "info"}) })

	Info("hidden")
	Warnf("shown %d", 1)
	Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN][logger_test.go:")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "[ERROR]")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARNING, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}
