package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/normalize"
)

type AppConfig struct {
	// Provider access.
	APIKey   string
	APIRef   string
	Language string

	// PollInterval controls how often a full cycle runs.
	PollInterval time.Duration

	// CallLimit is the provider's daily API call ceiling.
	CallLimit int

	// IgnoreEstimated skips publishing observations the provider marks as
	// estimated conditions.
	IgnoreEstimated bool

	// PressureTrend selects the trend symbology for weather records.
	PressureTrend normalize.PressureTrendStyle

	// BindingsFile is the JSON file describing the bound devices.
	BindingsFile string

	// PrefsPath is the sqlite file holding scheduling state.
	PrefsPath string

	Bindings []device.Binding

	Port string
}

// Load reads configuration from environment with sensible defaults and the
// device bindings from the configured JSON file.
func Load(log zerolog.Logger) (*AppConfig, error) {
	log = log.With().Str("component", "config").Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Err(err).Msg("no .env file found or error loading it")
	}
	cfg := &AppConfig{}

	cfg.APIKey = os.Getenv("WU_API_KEY")
	cfg.APIRef = getenvDefault("WU_API_REF", "97986dc4c4b7e764")
	cfg.Language = getenvDefault("WU_LANGUAGE", "EN")

	intervalStr := getenvDefault("POLL_INTERVAL", "15m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	cfg.PollInterval = interval

	// The provider's base plan allows 500 calls a day.
	cfg.CallLimit = getenvInt("CALL_LIMIT", 500)
	cfg.IgnoreEstimated = getenvBool("IGNORE_ESTIMATED", false)
	cfg.PressureTrend = normalize.PressureTrendStyle(getenvDefault("PRESSURE_TREND", string(normalize.TrendText)))

	cfg.BindingsFile = getenvDefault("BINDINGS_FILE", "bindings.json")
	cfg.PrefsPath = getenvDefault("PREFS_PATH", "stationpoll.db")
	cfg.Port = getenvDefault("PORT", "8080")

	bindings, err := loadBindings(cfg.BindingsFile, log)
	if err != nil {
		return nil, err
	}
	cfg.Bindings = bindings

	return cfg, nil
}

func loadBindings(path string, log zerolog.Logger) ([]device.Binding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("file", path).Msg("no bindings file, starting with no devices")
			return nil, nil
		}
		return nil, fmt.Errorf("reading bindings: %w", err)
	}

	var bindings []device.Binding
	if err := json.Unmarshal(data, &bindings); err != nil {
		return nil, fmt.Errorf("parsing bindings: %w", err)
	}

	validate := validator.New()
	for i, b := range bindings {
		if err := validate.Struct(b); err != nil {
			return nil, fmt.Errorf("binding %d (%s): %w", i, b.DisplayName(), err)
		}
	}

	return bindings, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
