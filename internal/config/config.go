package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime option the service recognizes. All values come
// from the environment; invalid values refuse startup.
type Config struct {
	AppEnv   string
	HTTPPort int

	// Upstream feed
	DataURL         string
	TransceiversURL string
	FetchTimeout    time.Duration

	// Cadences
	PollInterval       time.Duration
	WriteInterval      time.Duration
	CleanupInterval    time.Duration
	StaleSectorCleanup time.Duration
	SummaryInterval    time.Duration

	// Session completion
	FlightCompletionMinutes     int
	ControllerCompletionMinutes int
	ReconnectionThresholdMin    int
	FlightTimeoutMinutes        int

	// Sector hysteresis
	SectorEnterKts    int
	SectorExitKts     int
	ExitDebounceTicks int

	// Filtering
	ExcludedCallsignPatterns []string
	PatternsCaseSensitive    bool
	PolygonFile              string
	SectorFile               string

	// Controller interactions
	InteractionRadiusNM float64
	InteractionTimeout  time.Duration

	// Postgres
	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDatabase string

	// Optional Redis cache
	RedisURL string
}

// Load reads the configuration from the environment. Any value that fails to
// parse is an error; the caller is expected to treat that as fatal.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:                envOr("APP_ENV", "development"),
		DataURL:               envOr("VATSIM_DATA_URL", "https://data.vatsim.net/v3/vatsim-data.json"),
		TransceiversURL:       envOr("VATSIM_TRANSCEIVERS_URL", "https://data.vatsim.net/v3/transceivers-data.json"),
		PGHost:                envOr("PG_HOST", "localhost"),
		PGPort:                envOr("PG_PORT", "5432"),
		PGUser:                os.Getenv("PG_USER"),
		PGPassword:            os.Getenv("PG_PASSWORD"),
		PGDatabase:            os.Getenv("PG_DB"),
		RedisURL:              os.Getenv("REDIS_URL"),
		PolygonFile:           os.Getenv("GEOGRAPHIC_POLYGONS"),
		SectorFile:            os.Getenv("SECTOR_FILE"),
		PatternsCaseSensitive: true,
	}

	var err error
	if cfg.HTTPPort, err = envInt("HTTP_PORT", 8080); err != nil {
		return nil, err
	}

	pollSec, err := envInt("POLL_INTERVAL_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	writeSec, err := envInt("WRITE_INTERVAL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cleanupSec, err := envInt("CLEANUP_INTERVAL_SECONDS", 3600)
	if err != nil {
		return nil, err
	}
	staleSec, err := envInt("STALE_SECTOR_CLEANUP_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	summaryMin, err := envInt("SUMMARY_INTERVAL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	fetchSec, err := envInt("FETCH_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	interactionSec, err := envInt("INTERACTION_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	cfg.PollInterval = time.Duration(pollSec) * time.Second
	cfg.WriteInterval = time.Duration(writeSec) * time.Second
	cfg.CleanupInterval = time.Duration(cleanupSec) * time.Second
	cfg.StaleSectorCleanup = time.Duration(staleSec) * time.Second
	cfg.SummaryInterval = time.Duration(summaryMin) * time.Minute
	cfg.FetchTimeout = time.Duration(fetchSec) * time.Second
	cfg.InteractionTimeout = time.Duration(interactionSec) * time.Second

	if cfg.FlightCompletionMinutes, err = envInt("COMPLETION_MINUTES_FLIGHT", 840); err != nil {
		return nil, err
	}
	if cfg.ControllerCompletionMinutes, err = envInt("COMPLETION_MINUTES_CONTROLLER", 60); err != nil {
		return nil, err
	}
	if cfg.ReconnectionThresholdMin, err = envInt("RECONNECTION_THRESHOLD_MINUTES", 5); err != nil {
		return nil, err
	}
	if cfg.FlightTimeoutMinutes, err = envInt("FLIGHT_TIMEOUT_MINUTES", 10); err != nil {
		return nil, err
	}
	if cfg.SectorEnterKts, err = envInt("SECTOR_ENTER_KTS", 60); err != nil {
		return nil, err
	}
	if cfg.SectorExitKts, err = envInt("SECTOR_EXIT_KTS", 30); err != nil {
		return nil, err
	}
	if cfg.ExitDebounceTicks, err = envInt("SECTOR_EXIT_DEBOUNCE_TICKS", 1); err != nil {
		return nil, err
	}

	radius, err := envInt("CONTROLLER_INTERACTION_RADIUS_NM", 30)
	if err != nil {
		return nil, err
	}
	cfg.InteractionRadiusNM = float64(radius)

	patterns := envOr("EXCLUDED_CALLSIGN_PATTERNS", "ATIS")
	for _, p := range strings.Split(patterns, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			cfg.ExcludedCallsignPatterns = append(cfg.ExcludedCallsignPatterns, p)
		}
	}
	if cs := os.Getenv("EXCLUDED_PATTERNS_CASE_SENSITIVE"); cs != "" {
		v, perr := strconv.ParseBool(cs)
		if perr != nil {
			return nil, fmt.Errorf("invalid EXCLUDED_PATTERNS_CASE_SENSITIVE %q: %w", cs, perr)
		}
		cfg.PatternsCaseSensitive = v
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	if c.WriteInterval < c.PollInterval {
		return fmt.Errorf("WRITE_INTERVAL_SECONDS (%s) must not be shorter than POLL_INTERVAL_SECONDS (%s)",
			c.WriteInterval, c.PollInterval)
	}
	if c.SectorExitKts >= c.SectorEnterKts {
		return fmt.Errorf("SECTOR_EXIT_KTS (%d) must be below SECTOR_ENTER_KTS (%d)",
			c.SectorExitKts, c.SectorEnterKts)
	}
	if c.ExitDebounceTicks < 1 {
		return fmt.Errorf("SECTOR_EXIT_DEBOUNCE_TICKS must be at least 1")
	}
	if c.ReconnectionThresholdMin < 0 {
		return fmt.Errorf("RECONNECTION_THRESHOLD_MINUTES must not be negative")
	}
	if c.FlightCompletionMinutes <= 0 || c.ControllerCompletionMinutes <= 0 {
		return fmt.Errorf("completion minutes must be positive")
	}
	return nil
}

// DSN builds the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
