package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("WOOCOMMERCE_URL", "https://shop.example.am")
	t.Setenv("WOOCOMMERCE_CONSUMER_KEY", "ck_test")
	t.Setenv("WOOCOMMERCE_CONSUMER_SECRET", "cs_test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func clearOptional(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"TELEGRAM_API_URL", "TELEGRAM_WEBHOOK_SECRET", "GATEWAY_MODE",
		"LLM_ENDPOINT", "LLM_MODEL", "LOG_LEVEL", "SENTRY_DSN", "ENV",
		"SERVER_PORT", "STAGE_TIMEOUT", "MAX_CONCURRENT_CHATS", "CATALOG_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.Environment != defaultEnvironment {
		t.Errorf("expected default environment %q, got %q", defaultEnvironment, cfg.Environment)
	}

	if cfg.ShutdownGrace != defaultShutdownGrace {
		t.Errorf("expected shutdown grace %s, got %s", defaultShutdownGrace, cfg.ShutdownGrace)
	}

	if cfg.GatewayMode != GatewayPolling {
		t.Errorf("expected polling gateway, got %q", cfg.GatewayMode)
	}

	if cfg.LLMModel != defaultLLMModel {
		t.Errorf("expected default model %q, got %q", defaultLLMModel, cfg.LLMModel)
	}

	if cfg.StageTimeout != defaultStageTimeout {
		t.Errorf("expected stage timeout %s, got %s", defaultStageTimeout, cfg.StageTimeout)
	}

	if cfg.CatalogTimeout != defaultCatalogTimeout {
		t.Errorf("expected catalog timeout %s, got %s", defaultCatalogTimeout, cfg.CatalogTimeout)
	}

	if cfg.MaxConcurrentChats != defaultMaxConcurrentChats {
		t.Errorf("expected %d concurrent chats, got %d", defaultMaxConcurrentChats, cfg.MaxConcurrentChats)
	}

	if cfg.LLMEndpoint != "" {
		t.Errorf("expected empty LLM endpoint, got %q", cfg.LLMEndpoint)
	}

	if cfg.SentryDSN != "" {
		t.Errorf("expected empty Sentry DSN, got %q", cfg.SentryDSN)
	}
}

func TestLoadWithExplicitValues(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LLM_ENDPOINT", "https://example.com/llm")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("SENTRY_DSN", "dsn")
	t.Setenv("ENV", "production")
	t.Setenv("GATEWAY_MODE", "Webhook")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "s3cret")
	t.Setenv("STAGE_TIMEOUT", "45s")
	t.Setenv("CATALOG_TIMEOUT", "5s")
	t.Setenv("MAX_CONCURRENT_CHATS", "16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.ServerPort)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}

	if cfg.LLMEndpoint != "https://example.com/llm" {
		t.Errorf("expected LLM endpoint https://example.com/llm, got %q", cfg.LLMEndpoint)
	}

	if cfg.LLMModel != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", cfg.LLMModel)
	}

	if cfg.LLMAPIKey != "sk-test" {
		t.Errorf("expected LLM API key sk-test, got %q", cfg.LLMAPIKey)
	}

	if cfg.GatewayMode != GatewayWebhook || cfg.TelegramWebhookSecret != "s3cret" {
		t.Errorf("expected webhook mode with secret, got %q / %q", cfg.GatewayMode, cfg.TelegramWebhookSecret)
	}

	if cfg.StageTimeout != 45*time.Second || cfg.CatalogTimeout != 5*time.Second {
		t.Errorf("unexpected timeouts %s / %s", cfg.StageTimeout, cfg.CatalogTimeout)
	}

	if cfg.MaxConcurrentChats != 16 {
		t.Errorf("expected 16 concurrent chats, got %d", cfg.MaxConcurrentChats)
	}

	if cfg.StorefrontURL != "https://shop.example.am" || cfg.ConsumerKey != "ck_test" || cfg.ConsumerSecret != "cs_test" {
		t.Errorf("unexpected storefront settings %+v", cfg)
	}

	if cfg.SentryDSN != "dsn" {
		t.Errorf("expected Sentry DSN dsn, got %q", cfg.SentryDSN)
	}

	if cfg.Environment != "production" {
		t.Errorf("expected environment production, got %q", cfg.Environment)
	}
}

func TestLoadReportsEveryMissingVariable(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "  ")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for missing variables, got nil")
	}

	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "OPENAI_API_KEY"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %s, got %v", key, err)
		}
	}

	if strings.Contains(err.Error(), "WOOCOMMERCE_URL") {
		t.Fatalf("error should only name missing variables, got %v", err)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("SERVER_PORT", "invalid")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid port, got nil")
	}

	if !strings.Contains(err.Error(), "invalid SERVER_PORT value") {
		t.Fatalf("expected error to mention invalid SERVER_PORT value, got %v", err)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("STAGE_TIMEOUT", "30")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for duration without unit, got nil")
	}

	if !strings.Contains(err.Error(), "invalid STAGE_TIMEOUT value") {
		t.Fatalf("expected error to mention STAGE_TIMEOUT, got %v", err)
	}
}

func TestLoadRejectsNonPositiveConcurrency(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("MAX_CONCURRENT_CHATS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero concurrency, got nil")
	}
}

func TestLoadGatewayMode(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("GATEWAY_MODE", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown gateway mode, got nil")
	}

	t.Setenv("GATEWAY_MODE", "webhook")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for webhook mode without secret, got nil")
	}
}
