package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/persona-authenticity/internal/config"
)

func TestInitialize_JSON(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "agent"}, zapcore.AddSync(&buf))

	GetLogger().Named("pipeline").Debug("attempt scored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "agent.pipeline", entry["logger"])
	assert.Equal(t, "attempt scored", entry["msg"])
}

func TestInitialize_BadLevelDefaultsToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "chatty", Format: "json"}, zapcore.AddSync(&buf))

	GetLogger().Debug("hidden")
	assert.Empty(t, buf.String())
	GetLogger().Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitialize_OnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&first))
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))

	GetLogger().Info("hello")
	assert.NotEmpty(t, first.String())
	assert.Empty(t, second.String())
}

func TestGetLogger_BeforeInitialize(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
	assert.NotPanics(t, Sync)
}
