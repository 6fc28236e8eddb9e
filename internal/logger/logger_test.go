package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestInfoWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New().WithOutput(&buf)

	l.Component("importer").Infof("filas procesadas: %d", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "importer", entry["component"])
	assert.Equal(t, "filas procesadas: 3", entry["message"])
}

func TestErrorIncludesErr(t *testing.T) {
	var buf bytes.Buffer
	l := New().WithOutput(&buf)

	l.Error(errors.New("boom"), "fallo la consulta")

	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"message":"fallo la consulta"`)
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromLevel("warn").WithOutput(&buf)

	l.Debug("oculto")
	l.Info("oculto")
	assert.Empty(t, buf.String())

	l.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}
