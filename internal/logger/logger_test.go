package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	SetLevel(DEBUG)
	SetRedactPII(true)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(INFO)
	})
	return buf
}

func TestInfoWritesJSON(t *testing.T) {
	buf := captureOutput(t)

	Info("campaign dispatched", "campaign_id", "c-1", "sent", 3)

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "campaign dispatched", entry["msg"])
	assert.Equal(t, "c-1", entry["campaign_id"])
	assert.Equal(t, "3", entry["sent"])
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(WARN)

	Info("dropped")
	Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "kept")
}

func TestRedaction(t *testing.T) {
	buf := captureOutput(t)

	Info("send failed", "phone", "5511987654321", "detail", "recipient +55 11 98765-4321 rejected", "email", "maria@example.com")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "*********4321", entry["phone"])
	assert.NotContains(t, entry["detail"], "98765")
	assert.Equal(t, "ma***@example.com", entry["email"])
}

func TestIdentifiersAreNotRedacted(t *testing.T) {
	buf := captureOutput(t)

	Info("dispatch started", "campaign_id", "9b2f4c1e-3a7d-4e8b-a1c2-446655440000")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "9b2f4c1e-3a7d-4e8b-a1c2-446655440000", entry["campaign_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestRedactPhoneShort(t *testing.T) {
	assert.Equal(t, "***", RedactPhone("123"))
}
