package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hashmap-learn/config"
	"hashmap-learn/lib/logger"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		config.Properties = config.Defaults()
		logger.Setup(&logger.Settings{Output: os.Stderr, Level: "info"})
	})
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "wordcount dev\n", out)
}

func TestCount(t *testing.T) {
	input := writeInput(t, "It was the best of times, it was the worst of times.")
	out, err := execute(t, "count", input, "--initial-capacity", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "ChainedHashMap stats:\n")
	assert.Contains(t, out, "Unique word count: 7\n")
	assert.Contains(t, out, "(appears 2 times)")
}

func TestCountFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "wordcount.conf")
	require.NoError(t, os.WriteFile(conf, []byte("implementation simple\nprint-stats no\n"), 0o644))
	input := writeInput(t, "b a b")

	out, err := execute(t, "count", input, "--config", conf)
	require.NoError(t, err)
	assert.NotContains(t, out, "stats:")
	assert.Contains(t, out, "Most common word: b (appears 2 times)")

	out, err = execute(t, "count", input, "--config", conf, "--print-stats", "--implementation", "bucketed")
	require.NoError(t, err)
	assert.Contains(t, out, "BucketedHashMap stats:")
}

func TestCountEnvironment(t *testing.T) {
	t.Setenv("WORDCOUNT_IMPLEMENTATION", "simple")
	out, err := execute(t, "count", writeInput(t, "x y"))
	require.NoError(t, err)
	assert.Contains(t, out, "SimpleHashMap stats:")
}

func TestCountErrors(t *testing.T) {
	_, err := execute(t, "count", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "unable to open input file")

	_, err = execute(t, "count", writeInput(t, "123"))
	assert.ErrorContains(t, err, "no words")

	_, err = execute(t, "count", writeInput(t, "a"), "--hash-function", "md5")
	assert.ErrorContains(t, err, "unknown hash function")

	_, err = execute(t, "count", writeInput(t, "some words here"), "--memory-limit", "16")
	assert.ErrorContains(t, err, "Unable to allocate memory")
}

func TestExperimentAndHistory(t *testing.T) {
	dir := t.TempDir()
	history := filepath.Join(dir, "history.db")
	report := filepath.Join(dir, "report.txt")
	input := writeInput(t, strings.Repeat("alpha beta gamma beta ", 10))

	_, err := execute(t, "experiment", input, "1", "0x10", "64",
		"--parallelism", "2", "-o", report, "--history-file", history)
	require.NoError(t, err)
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	text := string(data)
	assert.Equal(t, 3, strings.Count(text, "Most common word: beta (appears 20 times)"))
	assert.Less(t, strings.Index(text, "Initial capacity: 16\n"), strings.Index(text, "Initial capacity: 64\n"))

	out, err := execute(t, "history", "--history-file", history, "-n", "0")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "AVG CHAIN")
	assert.Contains(t, out, "beta (20)")
}

func TestExperimentInvalidCapacity(t *testing.T) {
	_, err := execute(t, "experiment", writeInput(t, "a"), "ten")
	assert.ErrorContains(t, err, "invalid argument")
}

func TestHistoryRequiresFile(t *testing.T) {
	_, err := execute(t, "history")
	assert.Error(t, err)
}
