package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Gateway modes.
const (
	GatewayPolling = "polling"
	GatewayWebhook = "webhook"
)

// Config holds runtime configuration values for the storefront assistant.
type Config struct {
	TelegramToken         string
	TelegramAPIURL        string
	TelegramWebhookSecret string
	GatewayMode           string

	StorefrontURL  string
	ConsumerKey    string
	ConsumerSecret string
	CatalogTimeout time.Duration

	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string

	StageTimeout       time.Duration
	MaxConcurrentChats int

	ServerPort    int
	LogLevel      string
	SentryDSN     string
	Environment   string
	ShutdownGrace time.Duration
}

const (
	defaultServerPort         = 8080
	defaultLogLevel           = "info"
	defaultEnvironment        = "development"
	defaultShutdownGrace      = 10 * time.Second
	defaultLLMModel           = "gpt-4o-mini"
	defaultStageTimeout       = 30 * time.Second
	defaultCatalogTimeout     = 15 * time.Second
	defaultMaxConcurrentChats = 4
)

var requiredVars = []string{
	"TELEGRAM_BOT_TOKEN",
	"WOOCOMMERCE_URL",
	"WOOCOMMERCE_CONSUMER_KEY",
	"WOOCOMMERCE_CONSUMER_SECRET",
	"OPENAI_API_KEY",
}

// Load reads configuration values from environment variables, applying defaults where necessary.
// Every missing required variable is reported in a single error.
func Load() (*Config, error) {
	var missing []string
	for _, key := range requiredVars {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		TelegramToken:         strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramAPIURL:        os.Getenv("TELEGRAM_API_URL"),
		TelegramWebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		GatewayMode:           strings.ToLower(getEnv("GATEWAY_MODE", GatewayPolling)),
		StorefrontURL:         strings.TrimSpace(os.Getenv("WOOCOMMERCE_URL")),
		ConsumerKey:           strings.TrimSpace(os.Getenv("WOOCOMMERCE_CONSUMER_KEY")),
		ConsumerSecret:        strings.TrimSpace(os.Getenv("WOOCOMMERCE_CONSUMER_SECRET")),
		LLMEndpoint:           os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:             strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		LLMModel:              getEnv("LLM_MODEL", defaultLLMModel),
		LogLevel:              getEnv("LOG_LEVEL", defaultLogLevel),
		SentryDSN:             os.Getenv("SENTRY_DSN"),
		Environment:           getEnv("ENV", defaultEnvironment),
		ShutdownGrace:         defaultShutdownGrace,
	}

	switch cfg.GatewayMode {
	case GatewayPolling:
	case GatewayWebhook:
		if strings.TrimSpace(cfg.TelegramWebhookSecret) == "" {
			return nil, eris.New("TELEGRAM_WEBHOOK_SECRET is required in webhook mode")
		}
	default:
		return nil, eris.Errorf("invalid GATEWAY_MODE value: %s", cfg.GatewayMode)
	}

	var err error
	if cfg.ServerPort, err = getInt("SERVER_PORT", defaultServerPort); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentChats, err = getInt("MAX_CONCURRENT_CHATS", defaultMaxConcurrentChats); err != nil {
		return nil, err
	}
	if cfg.StageTimeout, err = getDuration("STAGE_TIMEOUT", defaultStageTimeout); err != nil {
		return nil, err
	}
	if cfg.CatalogTimeout, err = getDuration("CATALOG_TIMEOUT", defaultCatalogTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, strconv.Itoa(fallback))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	if value <= 0 {
		return 0, eris.Errorf("%s must be greater than zero: %d", key, value)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, fallback.String())
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	if value <= 0 {
		return 0, eris.Errorf("%s must be greater than zero: %s", key, raw)
	}
	return value, nil
}
