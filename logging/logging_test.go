package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Config{Level: "warn", Output: &buf})
	require.NoError(t, err)
	log := Component(base, "render")

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Str("spec", "orders.yaml").Msg("shown")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "render", entry["component"])
	assert.Equal(t, "orders.yaml", entry["spec"])
	assert.Equal(t, "shown", entry["message"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"disabled", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	_, err := ParseLevel("chatty")
	assert.ErrorContains(t, err, `unknown log level "chatty"`)

	_, err = New(Config{Level: "debgu"})
	assert.Error(t, err)
}
