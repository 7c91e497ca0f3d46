package logger

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestFormatFields(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   string
	}{
		{"empty", nil, ""},
		{"sorted", Fields{"tempo": 120, "preset": "standard"}, "{preset=standard, tempo=120}"},
		{"float", Fields{"beat": 3.14159}, "{beat=3.14}"},
		{"other", Fields{"loop": true}, "{loop=true}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFields(tt.fields))
		})
	}
}

func TestLevels(t *testing.T) {
	buf := captureLog(t)

	Info("exported", Fields{"bytes": 1024})
	Warn("port missing", nil)
	Debug("tick", Fields{"beat": 1.5})
	Error("render failed", errors.New("boom"), Fields{"preset": "simple"})

	out := buf.String()
	assert.Contains(t, out, "[INFO] exported {bytes=1024}")
	assert.Contains(t, out, "[WARN] port missing")
	assert.Contains(t, out, "[DEBUG] tick {beat=1.50}")
	assert.Contains(t, out, "[ERROR] render failed: boom {preset=simple}")
}

func TestInitWithoutDSN(t *testing.T) {
	require.NoError(t, Init("", "test", "dev"))
	Flush()
}
