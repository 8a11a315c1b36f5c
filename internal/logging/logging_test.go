package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorCloser struct{ err error }

func (c *errorCloser) Close() error { return c.err }

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info")

	LogError(logger, "conversion failed", errors.New("boom"), logrus.Fields{"format": "csv"})

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"msg":"conversion failed"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"format":"csv"`)
}

func TestLogOperationRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	LogOperation(logger, "converted", nil)
	assert.Empty(t, buf.String())

	SetLevel(logger, "debug")
	LogOperation(logger, "converted", logrus.Fields{"mode": "none"})
	assert.Contains(t, buf.String(), `"msg":"converted"`)
}

func TestSetLevelUnknown(t *testing.T) {
	logger := Discard()
	assert.False(t, SetLevel(logger, "loud"))
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNilLoggerIsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		LogError(nil, "x", errors.New("y"), nil)
		LogOperation(nil, "x", nil)
	})
}

func TestSafeClose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info")

	SafeClose(&errorCloser{}, logger, "ok")
	assert.Empty(t, buf.String())

	SafeClose(&errorCloser{err: assert.AnError}, logger, "history_store")
	assert.Contains(t, buf.String(), `"operation":"history_store"`)
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tabconv.log")

	logger, closer, err := NewFile(path, "info")
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestContextLogger(t *testing.T) {
	logger := Discard()
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
