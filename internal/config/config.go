// Package config carrega a configuração da aplicação uma única vez no startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	DatabaseURL string

	LeadAPIToken        string
	CaktoWebhookSecret  string
	AllowedOrigins      []string
	LeadRateLimit       int
	LeadRateLimitWindow time.Duration

	// TrustProxyHeaders liga o chi RealIP; só com proxy reverso que sobrescreve X-Forwarded-For.
	TrustProxyHeaders bool

	MailHost        string
	MailPort        int
	MailUser        string
	MailPassword    string
	MailFromName    string
	MailFromAddress string
	EmailLogoPath   string

	ZAPIBaseURL     string
	ZAPIInstanceID  string
	ZAPIToken       string
	ZAPIClientToken string

	RabbitMQURL string
	RedisURL    string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool

	SentryDSN string

	DeliveryDeadline    time.Duration
	DownloadConcurrency int
	FetchMaxAttempts    int
	StaleOrderAfter     time.Duration

	Brand Brand
}

// Brand alimenta o conteúdo das mensagens de entrega.
type Brand struct {
	Name            string
	Instagram       string
	Website         string
	SupportWhatsApp string
	SupportEmail    string
}

// Load lê o .env (se existir) e o ambiente, aplica defaults e valida.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		LeadAPIToken:        os.Getenv("LEAD_API_TOKEN"),
		CaktoWebhookSecret:  os.Getenv("CAKTO_WEBHOOK_SECRET"),
		AllowedOrigins:      splitList(os.Getenv("ALLOWED_ORIGINS")),
		LeadRateLimit:       getEnvInt("LEAD_RATE_LIMIT", 10),
		LeadRateLimitWindow: getEnvDuration("LEAD_RATE_LIMIT_WINDOW", time.Minute),
		TrustProxyHeaders:   getEnvBool("TRUST_PROXY_HEADERS", false),

		MailHost:        os.Getenv("MAIL_HOST"),
		MailPort:        getEnvInt("MAIL_PORT", 587),
		MailUser:        os.Getenv("MAIL_USER"),
		MailPassword:    os.Getenv("MAIL_PASS"),
		MailFromName:    getEnv("MAIL_FROM_NAME", "CarsLab"),
		MailFromAddress: os.Getenv("MAIL_FROM_ADDRESS"),
		EmailLogoPath:   getEnv("EMAIL_LOGO_PATH", "public/CarsLabLogo.png"),

		ZAPIBaseURL:     getEnv("ZAPI_BASE_URL", "https://api.z-api.io"),
		ZAPIInstanceID:  os.Getenv("ZAPI_INSTANCE_ID"),
		ZAPIToken:       os.Getenv("ZAPI_TOKEN"),
		ZAPIClientToken: os.Getenv("ZAPI_CLIENT_TOKEN"),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOUseSSL:    getEnvBool("MINIO_USE_SSL", true),

		SentryDSN: os.Getenv("SENTRY_DSN"),

		DeliveryDeadline:    getEnvDuration("DELIVERY_DEADLINE", 60*time.Second),
		DownloadConcurrency: getEnvInt("DOWNLOAD_CONCURRENCY", 4),
		FetchMaxAttempts:    getEnvInt("FETCH_MAX_ATTEMPTS", 3),
		StaleOrderAfter:     getEnvDuration("STALE_ORDER_AFTER", 15*time.Minute),

		Brand: Brand{
			Name:            getEnv("BRAND_NAME", "CarsLab"),
			Instagram:       getEnv("BRAND_INSTAGRAM", "@carslab.br"),
			Website:         os.Getenv("BRAND_WEBSITE"),
			SupportWhatsApp: os.Getenv("SUPPORT_WHATSAPP"),
			SupportEmail:    os.Getenv("SUPPORT_EMAIL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.LeadAPIToken == "" {
		errs = append(errs, errors.New("LEAD_API_TOKEN is required"))
	}
	if c.CaktoWebhookSecret == "" {
		errs = append(errs, errors.New("CAKTO_WEBHOOK_SECRET is required"))
	}
	if c.DeliveryDeadline <= 0 {
		errs = append(errs, fmt.Errorf("DELIVERY_DEADLINE must be positive, got %s", c.DeliveryDeadline))
	}
	if c.DownloadConcurrency < 1 {
		errs = append(errs, fmt.Errorf("DOWNLOAD_CONCURRENCY must be >= 1, got %d", c.DownloadConcurrency))
	}
	if c.FetchMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("FETCH_MAX_ATTEMPTS must be >= 1, got %d", c.FetchMaxAttempts))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

func (c *Config) MailEnabled() bool { return c.MailHost != "" && c.MailFromAddress != "" }

func (c *Config) WhatsAppEnabled() bool { return c.ZAPIInstanceID != "" && c.ZAPIToken != "" }

func (c *Config) MinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
