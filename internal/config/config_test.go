package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gpmd")
	t.Setenv("LEAD_API_TOKEN", "token")
	t.Setenv("CAKTO_WEBHOOK_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.com, https://b.com,")
	t.Setenv("DELIVERY_DEADLINE", "")
	t.Setenv("TRUST_PROXY_HEADERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 60*time.Second, cfg.DeliveryDeadline)
	assert.Equal(t, 3, cfg.FetchMaxAttempts)
	assert.Equal(t, 587, cfg.MailPort)
	assert.False(t, cfg.WhatsAppEnabled())
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestLoadRejectsMissingSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LEAD_API_TOKEN", "")
	t.Setenv("CAKTO_WEBHOOK_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "LEAD_API_TOKEN")
	assert.Contains(t, err.Error(), "CAKTO_WEBHOOK_SECRET")
}

func TestValidateBounds(t *testing.T) {
	cfg := &Config{
		DatabaseURL:         "postgres://",
		LeadAPIToken:        "t",
		CaktoWebhookSecret:  "s",
		DeliveryDeadline:    0,
		DownloadConcurrency: 0,
		FetchMaxAttempts:    0,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DELIVERY_DEADLINE")
	assert.Contains(t, err.Error(), "DOWNLOAD_CONCURRENCY")
	assert.Contains(t, err.Error(), "FETCH_MAX_ATTEMPTS")
}
