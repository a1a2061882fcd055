package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PYSIS_DB", "PYSIS_COURSE_DIR", "PYSIS_TIMEZONE", "CORE_ADDR", "GATEWAY_ADDR", "STATS_ADDR",
		"CORE_SERVICE_URL", "CORE_TIMEOUT", "TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_URL",
		"PYSIS_EMBEDDER", "PYSIS_INGEST_WORKERS", "PYSIS_LLM_PROVIDER",
		"PYSIS_GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY",
		"PYSIS_OPENAI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8002", cfg.CoreAddr)
	assert.Equal(t, ":8001", cfg.GatewayAddr)
	assert.Equal(t, ":8003", cfg.StatsAddr)
	assert.Equal(t, "http://localhost:8002", cfg.CoreServiceURL)
	assert.Equal(t, 45*time.Second, cfg.CoreTimeout)
	assert.Equal(t, "course_content", cfg.CourseDir)
	assert.Equal(t, 4, cfg.IngestWorkers)
	assert.Equal(t, time.Local, cfg.Timezone)
	assert.Equal(t, "gemini", cfg.EmbedderName())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORE_SERVICE_URL", "http://core_service:8002/")
	t.Setenv("CORE_TIMEOUT", "3s")
	t.Setenv("PYSIS_TIMEZONE", "UTC")
	t.Setenv("PYSIS_INGEST_WORKERS", "oops")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://core_service:8002", cfg.CoreServiceURL)
	assert.Equal(t, 3*time.Second, cfg.CoreTimeout)
	assert.Equal(t, "UTC", cfg.Timezone.String())
	assert.Equal(t, 4, cfg.IngestWorkers)
}

func TestFromEnvBadTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("PYSIS_TIMEZONE", "Mars/Olympus")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Error(t, cfg.ValidateCore(), "core needs an LLM key")
	assert.Error(t, cfg.ValidateGateway(), "gateway needs a bot token")
	assert.NoError(t, cfg.ValidateStats())

	cfg.TelegramBotToken = "123:abc"
	assert.NoError(t, cfg.ValidateGateway())

	cfg.LLM.Provider = "mock"
	assert.Equal(t, "hash", cfg.EmbedderName())
	assert.NoError(t, cfg.ValidateCore())
	assert.NoError(t, cfg.ValidateIndex())

	cfg.Embedder = "bogus"
	assert.Error(t, cfg.ValidateIndex())
}

func TestFromEnvDiscoversKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "openai", cfg.EmbedderName())
	assert.NoError(t, cfg.ValidateCore())
}
