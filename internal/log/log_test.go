package log

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/album-downloader/internal/config"
)

func TestFromConfig_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := FromConfig(config.Log{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("path", "/music/a.mp3").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "/music/a.mp3", entry["path"])
	assert.Equal(t, "warn", entry["level"])
}

func TestFromConfig_AutoIsJSONWhenNotTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := FromConfig(config.Log{Level: "info", Format: "auto"}, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestFromConfig_ErrorHasStack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := FromConfig(config.Log{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Error().Msg("boom")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	stack, ok := entry["stack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, stack)

	top, ok := stack[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "github.com/handiism/album-downloader/internal/log.TestFromConfig_ErrorHasStack", top["func"])
	for _, f := range stack {
		frame, ok := f.(map[string]any)
		require.True(t, ok)
		assert.NotContains(t, frame["func"], "github.com/rs/zerolog.")
	}
}

func TestFromConfig_InfoHasNoStack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := FromConfig(config.Log{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Warn().Msg("careful")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "stack")
}

func TestFromConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := FromConfig(config.Log{Level: "chatty", Format: "json"}, &bytes.Buffer{})
	require.Error(t, err)

	_, err = FromConfig(config.Log{Level: "info", Format: "xml"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestFromConfig_Pretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := FromConfig(config.Log{Level: "debug", Format: "pretty"}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("details")
	assert.Contains(t, buf.String(), "details")
	assert.Contains(t, buf.String(), "DBG")
}
