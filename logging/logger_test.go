package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBufferLogger builds a Logger over an in-memory buffer with the same
// fixed fields the bridge binds.
func newBufferLogger(buf *bytes.Buffer, service string) *Logger {
	fieldNamesOnce.Do(configureFieldNames)
	lg := zerolog.New(buf).With().
		Timestamp().
		Str("service", service).
		Str("logger", service).
		Logger()
	return &Logger{Logger: lg}
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestLogger_FixedFields(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	l := newBufferLogger(&buf, "svc")

	// Act
	l.Infow("hello")

	// Assert
	record := decodeRecord(t, &buf)
	assert.Equal(t, "hello", record["message"])
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "svc", record["service"])
	assert.Equal(t, "svc", record["logger"])
	assert.Contains(t, record, "timestamp")
}

func TestLogger_ExtraFieldsAttached(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	l := newBufferLogger(&buf, "svc")

	// Act
	l.Infow("hello", map[string]any{"user_id": "123", "attempt": 2})

	// Assert
	record := decodeRecord(t, &buf)
	assert.Equal(t, "123", record["user_id"])
	assert.Equal(t, float64(2), record["attempt"])
}

func TestLogger_ReservedFieldsNeverOverwritten(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	l := newBufferLogger(&buf, "svc")

	// Act — every extra reuses a reserved name
	l.Infow("real message", map[string]any{
		"message":   "fake",
		"level":     "fake",
		"service":   "fake",
		"logger":    "fake",
		"timestamp": "fake",
		"ok":        true,
	})

	// Assert
	record := decodeRecord(t, &buf)
	assert.Equal(t, "real message", record["message"])
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "svc", record["service"])
	assert.Equal(t, "svc", record["logger"])
	assert.NotEqual(t, "fake", record["timestamp"])
	assert.Equal(t, true, record["ok"])
}

func TestLogger_FirstWriterWinsAcrossExtraMaps(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	l := newBufferLogger(&buf, "svc")

	// Act
	l.Infow("hello",
		map[string]any{"request_id": "first"},
		map[string]any{"request_id": "second", "other": "kept"},
	)

	// Assert
	record := decodeRecord(t, &buf)
	assert.Equal(t, "first", record["request_id"])
	assert.Equal(t, "kept", record["other"])
}

func TestLogger_WithExtraBindsAndProtects(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	l := newBufferLogger(&buf, "svc").WithExtra(map[string]any{
		"env":     "prod",
		"service": "ignored-reserved",
	})

	// Act — the call-site tries to override the bound field
	l.Infow("hello", map[string]any{"env": "call-site"})

	// Assert
	record := decodeRecord(t, &buf)
	assert.Equal(t, "prod", record["env"])
	assert.Equal(t, "svc", record["service"])
}

func TestLogger_Errw_FaultFields(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	l := newBufferLogger(&buf, "svc")
	root := errors.New("connection refused")
	err := fmt.Errorf("error opening database: %w", root)

	// Act
	l.Errw(err, "startup failed", map[string]any{"attempt": 1})

	// Assert
	record := decodeRecord(t, &buf)
	assert.Equal(t, "error", record["level"])
	assert.Equal(t, "startup failed", record["message"])
	assert.Equal(t, "error opening database: connection refused", record["error"])
	assert.Equal(t, "*fmt.wrapError", record["error_type"])
	assert.Equal(t,
		[]any{"error opening database: connection refused", "connection refused"},
		record["error_trace"])
	assert.Equal(t, float64(1), record["attempt"])
}

func TestLogger_Errw_CallerCannotOverrideFaultFields(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	l := newBufferLogger(&buf, "svc")

	// Act
	l.Errw(errors.New("boom"), "failed", map[string]any{"error": "fake", "error_type": "fake"})

	// Assert
	record := decodeRecord(t, &buf)
	assert.Equal(t, "boom", record["error"])
	assert.Equal(t, "*errors.errorString", record["error_type"])
}

func TestLogger_Errw_NilError(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	l := newBufferLogger(&buf, "svc")

	// Act
	l.Errw(nil, "no fault here")

	// Assert
	record := decodeRecord(t, &buf)
	assert.Equal(t, "no fault here", record["message"])
	assert.NotContains(t, record, "error")
	assert.NotContains(t, record, "error_type")
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name string
		emit func(l *Logger)
		want string
	}{
		{name: "debug", emit: func(l *Logger) { l.Debugw("m") }, want: "debug"},
		{name: "info", emit: func(l *Logger) { l.Infow("m") }, want: "info"},
		{name: "warn", emit: func(l *Logger) { l.Warnw("m") }, want: "warn"},
		{name: "error", emit: func(l *Logger) { l.Errorw("m") }, want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := newBufferLogger(&buf, "svc")

			tt.emit(l)

			record := decodeRecord(t, &buf)
			assert.Equal(t, tt.want, record["level"])
		})
	}
}

func TestNop_DiscardsOutput(t *testing.T) {
	// Act / Assert — must not panic, must emit nothing
	l := Nop()
	l.Infow("dropped", map[string]any{"k": "v"})
	require.NotNil(t, l)
}
