package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                       "",
		"REDIS_URL":                  "",
		"RATE_LIMIT_MAX":             "",
		"RATE_LIMIT_WINDOW":          "",
		"OBS_ENABLE_TRACING":         "",
		"OBS_TRACING_SAMPLING_RATIO": "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, 120, cfg.RateLimitMax)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.False(t, cfg.TracingEnabled)
	require.Equal(t, 1.0, cfg.TracingSampling)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                     ":9090",
		"REDIS_URL":                "redis://localhost:6379/0",
		"CORS_ALLOWED_ORIGINS":     "https://a.example, https://b.example,",
		"TAX_REGIMES_FILE":         "regimes.yaml",
		"RATE_LIMIT_MAX":           "10",
		"RATE_LIMIT_WINDOW":        "30s",
		"SECURITY_HEADERS_ENABLED": "off",
		"OBS_LOG_FORMAT":           "console",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "regimes.yaml", cfg.RegimesFile)
	require.Equal(t, 10, cfg.RateLimitMax)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	require.False(t, cfg.SecurityHeaders)
	require.Equal(t, "console", cfg.LogFormat)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := LoadForTests(map[string]string{"RATE_LIMIT_MAX": "-1"})
	require.Error(t, err)

	_, err = LoadForTests(map[string]string{"OBS_TRACING_SAMPLING_RATIO": "1.5"})
	require.Error(t, err)
}

func TestParseDurationFallsBack(t *testing.T) {
	require.Equal(t, time.Minute, parseDuration("bogus", "1m"))
	require.Equal(t, 5*time.Second, parseDuration(" 5s ", "1m"))
}
