package logging

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, true)

	logger.Info("rotated %s", "AKIAEXAMPLE")
	logger.Warn("backup exists")
	logger.Error("delete failed")

	out := buf.String()
	assert.Contains(t, out, "✓ rotated AKIAEXAMPLE")
	assert.Contains(t, out, "⚠ backup exists")
	assert.Contains(t, out, "✗ delete failed")
}

func TestDebugSuppressedByDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, true)
	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	debugBuf := bytes.Buffer{}
	debugLogger := NewWithWriter(&debugBuf, true, true)
	debugLogger.Debug("visible")
	assert.Contains(t, debugBuf.String(), "[DEBUG] visible")
}

func TestColorToggle(t *testing.T) {
	t.Parallel()

	var colored bytes.Buffer
	NewWithWriter(&colored, false, false).Info("hello")
	assert.Contains(t, colored.String(), "\033[32m")

	var plain bytes.Buffer
	NewWithWriter(&plain, false, true).Info("hello")
	assert.NotContains(t, plain.String(), "\033[")
}

func TestSecretRedaction(t *testing.T) {
	t.Parallel()

	s := Secret("wJalrXUtnFEMI")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", s))
}

func TestRedact(t *testing.T) {
	t.Parallel()

	msg := Redact("secret is wJalrXUtnFEMI and code is ab", []string{"wJalrXUtnFEMI", "ab"})
	assert.Equal(t, "secret is [REDACTED] and code is ab", msg)
}
