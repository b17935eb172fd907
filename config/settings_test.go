package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type databaseSettings struct {
	Host    string   `json:"host" env:"SETTINGS_TEST_DB_HOST"`
	Port    int      `json:"port" env:"SETTINGS_TEST_DB_PORT"`
	Timeout Duration `json:"timeout"`
}

func TestBind_FileValues(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", "database:\n  host: db.local\n  port: 5432\n  timeout: 30s\n")

	store := New(dir)
	store.Reload()

	// Act
	var settings databaseSettings
	err := store.Bind("database", &settings)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "db.local", settings.Host)
	assert.Equal(t, 5432, settings.Port)
	assert.Equal(t, Duration(30*time.Second), settings.Timeout)
}

func TestBind_EnvOverridesFileValues(t *testing.T) {
	// Arrange
	t.Setenv("SETTINGS_TEST_DB_HOST", "env.host")
	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", "database:\n  host: file.host\n  port: 5432\n")

	store := New(dir)
	store.Reload()

	// Act
	var settings databaseSettings
	err := store.Bind("database", &settings)

	// Assert — environment wins, untouched fields keep file values
	require.NoError(t, err)
	assert.Equal(t, "env.host", settings.Host)
	assert.Equal(t, 5432, settings.Port)
}

func TestBind_MissingSectionLeavesZeroValues(t *testing.T) {
	// Arrange
	store := New(t.TempDir())
	store.Reload()

	// Act
	var settings databaseSettings
	err := store.Bind("database", &settings)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, databaseSettings{}, settings)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Duration
	}{
		{name: "duration string", body: `"1h"`, want: Duration(time.Hour)},
		{name: "seconds string", body: `"30s"`, want: Duration(30 * time.Second)},
		{name: "raw nanoseconds", body: `1000000000`, want: Duration(time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, json.Unmarshal([]byte(tt.body), &d))
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDuration_UnmarshalJSON_Invalid(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(raw))
}
