package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "surveys", cfg.Mongo.Database)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Survey.CacheTTL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.RespondentTokenTTL)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URI", "redis://cache:6380")
	t.Setenv("PUBLIC_BASE_URL", "https://encuestas.example.com/")
	t.Setenv("ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "https://encuestas.example.com", cfg.Survey.PublicBaseURL)
	assert.True(t, cfg.IsDevelopment())
}

func TestSurveyConfig_Location(t *testing.T) {
	loc, err := SurveyConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = SurveyConfig{Timezone: "America/Mexico_City"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())

	_, err = SurveyConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
