package dict

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hashmap-learn/lib/alloc"
	"hashmap-learn/lib/logger"
)

func TestStatusMessages(t *testing.T) {
	cases := []struct {
		status Status
		kind   string
		msg    string
	}{
		{Status{}, "OK", "No errors"},
		{Status{StatusOutOfMemory, "entry"}, "OUT_OF_MEMORY", "Unable to allocate memory for entry"},
		{Status{StatusConcurrentModification, "entry iterator"}, "CONCURRENT_MODIFICATION",
			"Concurrent modification occurred while using entry iterator"},
		{Status{StatusPrintError, "stats"}, "PRINT_ERROR", "Unable to print stats"},
		{Status{Kind: StatusKind(99)}, "StatusKind(99)", "Unknown error"},
	}
	for _, c := range cases {
		t.Run(c.kind, func(t *testing.T) {
			assert.Equal(t, c.kind, c.status.Kind.String())
			assert.Equal(t, c.msg, c.status.Message())
			var buf bytes.Buffer
			_, err := c.status.Fprint(&buf)
			require.NoError(t, err)
			assert.Equal(t, c.msg+"\n", buf.String())
		})
	}
}

func TestStatusErr(t *testing.T) {
	assert.NoError(t, Status{}.Err())
	err := Status{StatusOutOfMemory, "entry"}.Err()
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.False(t, errors.Is(err, ErrPrint))
	assert.Equal(t, "Unable to allocate memory for entry", err.Error())

	wrapped := &StatusError{Status: Status{StatusPrintError, "stats"}, Cause: os.ErrClosed}
	assert.ErrorIs(t, wrapped, ErrPrint)
	assert.ErrorIs(t, wrapped, os.ErrClosed)
	assert.True(t, strings.HasPrefix(wrapped.Error(), "Unable to print stats: "))
}

func TestLogOnError(t *testing.T) {
	var buf bytes.Buffer
	logger.Setup(&logger.Settings{Output: &buf, Level: "info"})
	t.Cleanup(func() { logger.Setup(&logger.Settings{Output: os.Stderr, Level: "info"}) })

	m, err := NewChainedHashMap(1, -1, nil, WithAllocator(alloc.NewBudget(bucketSize)))
	require.NoError(t, err)
	assert.False(t, LogOnError(m))
	assert.Empty(t, buf.String())

	require.Error(t, m.Put("abc", 1))
	assert.True(t, LogOnError(m))
	assert.Contains(t, buf.String(), "Error occurred in map: Unable to allocate memory for key copy")
	assert.Equal(t, StatusOutOfMemory, m.Status().Kind, "logging must not reset the status")

	assert.True(t, LogAndFreeOnError(m))
	assert.Panics(t, func() { m.Size() })
}
