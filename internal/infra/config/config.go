package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// CalendarFeed pairs an ICS feed URL with the platform it belongs to.
type CalendarFeed struct {
	Platform string
	URL      string
}

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	StorageMode        string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	PaymentAPIURL      string
	PaymentAPIKey      string
	PaymentWebhookKey  string
	PaymentSuccessURL  string
	PaymentCancelURL   string
	Currency           string
	PendingIntentTTL   time.Duration
	SweepInterval      time.Duration
	SyncInterval       time.Duration
	CalendarFeeds      []CalendarFeed
	AdminToken         string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:               getEnv("APP_ENV", "dev"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		StorageMode:       strings.ToLower(getEnv("STORAGE_MODE", "memory")),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDB:           getEnv("MONGO_DB", "retreat"),
		KafkaTopicPrefix:  getEnv("KAFKA_TOPIC_PREFIX", ""),
		PaymentAPIURL:     getEnv("PAYMENT_API_URL", ""),
		PaymentAPIKey:     os.Getenv("PAYMENT_API_KEY"),
		PaymentWebhookKey: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		PaymentSuccessURL: getEnv("PAYMENT_SUCCESS_URL", "http://localhost:3000/success"),
		PaymentCancelURL:  getEnv("PAYMENT_CANCEL_URL", "http://localhost:3000/"),
		Currency:          strings.ToUpper(getEnv("CURRENCY", "USD")),
		AdminToken:        os.Getenv("ADMIN_TOKEN"),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	pendingTTL, err := parseDurationEnv("PENDING_INTENT_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.PendingIntentTTL = pendingTTL

	sweep, err := parseDurationEnv("SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.SweepInterval = sweep

	sync, err := parseDurationEnv("CALENDAR_SYNC_INTERVAL", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncInterval = sync

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	feeds, err := parseCalendarFeeds(getEnv("CALENDAR_FEEDS", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.CalendarFeeds = feeds

	if cfg.StorageMode != "memory" && cfg.StorageMode != "mongo" {
		return Config{}, fmt.Errorf("invalid STORAGE_MODE %q: want memory or mongo", cfg.StorageMode)
	}
	if cfg.StorageMode == "mongo" && cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
	}
	if cfg.PaymentAPIURL == "" {
		return Config{}, fmt.Errorf("PAYMENT_API_URL is required")
	}
	if cfg.PaymentAPIKey == "" {
		return Config{}, fmt.Errorf("PAYMENT_API_KEY is required")
	}
	if cfg.PaymentWebhookKey == "" {
		return Config{}, fmt.Errorf("PAYMENT_WEBHOOK_SECRET is required")
	}
	return cfg, nil
}

// parseCalendarFeeds reads "platform=url,platform=url" pairs.
func parseCalendarFeeds(raw string) ([]CalendarFeed, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var feeds []CalendarFeed
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		platform, url, ok := strings.Cut(entry, "=")
		if !ok || platform == "" || url == "" {
			return nil, fmt.Errorf("invalid CALENDAR_FEEDS entry %q: want platform=url", entry)
		}
		feeds = append(feeds, CalendarFeed{
			Platform: strings.ToLower(strings.TrimSpace(platform)),
			URL:      strings.TrimSpace(url),
		})
	}
	return feeds, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}
