package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppName is the prefix of every environment variable, e.g. WEATHER_PORT
const AppName = "WEATHER"

// Config holds the runtime configuration
type Config struct {
	Port string `envconfig:"PORT" default:"8000"`

	// ProviderURL is the weather API endpoint, {place} is replaced by the
	// place identifier, e.g. "lat=59.91&lon=10.75" for met.no
	ProviderURL string   `envconfig:"PROVIDER_URL" default:"https://api.met.no/weatherapi/locationforecast/2.0/compact?{place}"`
	Format      string   `envconfig:"FORMAT" default:"json"`
	Places      []string `envconfig:"PLACES"`

	LoadingTimeout         time.Duration `envconfig:"LOADING_TIMEOUT" default:"15s"`
	InTrayActiveTimeoutSec int           `envconfig:"IN_TRAY_ACTIVE_TIMEOUT_SEC" default:"8000"`
	Locale                 string        `envconfig:"LOCALE" default:"en"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	UpstashURL   string `envconfig:"UPSTASH_URL"`
	UpstashToken string `envconfig:"UPSTASH_TOKEN"`
}

// LoadConfig reads an optional .env file, then fills Config from the environment
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("config: cannot read .env", "error", err)
	}

	var cfg Config
	if err := envconfig.Process(AppName, &cfg); err != nil {
		return Config{}, fmt.Errorf("processing env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot
func (c Config) Validate() error {
	if _, err := ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%s_FORMAT: %w", AppName, err)
	}
	if !strings.Contains(c.ProviderURL, "{place}") {
		return fmt.Errorf("%s_PROVIDER_URL must contain {place}", AppName)
	}
	if c.InTrayActiveTimeoutSec < 0 {
		return fmt.Errorf("%s_IN_TRAY_ACTIVE_TIMEOUT_SEC must not be negative", AppName)
	}
	return nil
}
