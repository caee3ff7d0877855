package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(Config{Level: "info", Format: "json", Output: &buf})

	log.Infof("catalog loaded: %d rows", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "catalog loaded: 42 rows", entry["message"])
}

func TestZerologLogger_ErrorfIncludesError(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(Config{Level: "info", Output: &buf})

	log.Errorf(errors.New("boom"), "failed to load %s", "model")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "failed to load model", entry["message"])
}

func TestZerologLogger_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(Config{Level: "warn", Output: &buf})

	log.Debugf("hidden")
	log.Infof("hidden too")
	assert.Zero(t, buf.Len())

	log.Warnf("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestZerologLogger_WithAddsField(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(Config{Level: "debug", Output: &buf}).With("component", "ranker")

	log.Debugf("ranked")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ranker", entry["component"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "info", parseLevel("unknown").String())
}
