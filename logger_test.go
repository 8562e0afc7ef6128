package numgen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, "info")

	logger.Debug("hidden %d", 1)
	logger.Info("generated %d", 42)
	logger.Error("failed: %v", "quota")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "generated 42")
	assert.Contains(t, out, "failed: quota")
}

func TestZerologLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, "chatty")

	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)

	n.Success("generated number: 7")
	n.Error("minimum must be less than maximum")
	assert.Equal(t, "✓ generated number: 7\n✗ minimum must be less than maximum\n", buf.String())
}
