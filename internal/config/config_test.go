package config

import (
	"testing"
	"time"

	"nuanswers/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.ChatModel)
	assert.Equal(t, 300, cfg.AI.VisionMaxTokens)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(25<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "America/New_York", cfg.Tutoring.TimeZone)
	assert.Equal(t, DefaultTutoringSchedule, cfg.Tutoring.Schedule)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
}

func TestMissingCredentialsAreFeatureErrors(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err, "missing credentials must not fail Load")

	for name, check := range map[string]func() error{
		"ai":       cfg.RequireAI,
		"admin":    cfg.RequireAdmin,
		"database": cfg.RequireDatabase,
	} {
		err := check()
		require.Error(t, err, name)
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err), name)
	}
}

func TestLegacyPostgresScheme(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://u:p@db:5432/app", cfg.Database.URL)
	assert.NoError(t, cfg.RequireDatabase())
}

func TestInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "DATABASE_DRIVER", "mysql"},
		{"unknown timezone", "TUTORING_TIMEZONE", "Mars/Olympus"},
		{"zero upload size", "MAX_UPLOAD_MB", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
