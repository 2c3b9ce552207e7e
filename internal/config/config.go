package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
)

type Config struct {
	Port           string
	LogLevel       string
	LogPretty      bool
	AllowedOrigins []string

	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	RedisURL      string
	RedisPassword string
	CacheTTL      time.Duration

	JWTSecret string
	TicketTTL time.Duration

	Search        SearchConfig
	SearchTimeout time.Duration
	SessionIdle   time.Duration
}

// SearchConfig holds the engine settings as they appear in the environment.
type SearchConfig struct {
	Model          string
	Strategy       string
	Cache          string
	Leaf           string
	Preset         string
	InitialDepth   int
	DepthStepTurns int
	MaxDepth       int
}

func LoadConfig() *Config {
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}

	defaults := bot.DefaultOptions()

	return &Config{
		Port:           GetEnv("PORT", "8080"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogPretty:      GetEnvAsBool("LOG_PRETTY", false),
		AllowedOrigins: allowedOrigins,

		DatabaseURL:          GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", "")),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),

		RedisURL:      GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		CacheTTL:      GetEnvAsDuration("CACHE_TTL_SECONDS", 24*time.Hour, time.Second),

		JWTSecret: GetEnv("JWT_SECRET", "change-this-in-production"),
		TicketTTL: GetEnvAsDuration("TICKET_TTL_MINUTES", 2*time.Hour, time.Minute),

		Search: SearchConfig{
			Model:          GetEnv("SEARCH_MODEL", string(defaults.Model)),
			Strategy:       GetEnv("SEARCH_STRATEGY", string(defaults.Strategy)),
			Cache:          GetEnv("SEARCH_CACHE", string(defaults.Cache)),
			Leaf:           GetEnv("SEARCH_LEAF", string(defaults.Leaf)),
			Preset:         GetEnv("SEARCH_PRESET", defaults.Preset.Name),
			InitialDepth:   GetEnvAsInt("INITIAL_DEPTH", 7),
			DepthStepTurns: GetEnvAsInt("DEPTH_STEP_TURNS", 5),
			MaxDepth:       GetEnvAsInt("MAX_DEPTH", 10),
		},
		SearchTimeout: GetEnvAsDuration("SEARCH_TIMEOUT_SECONDS", 30*time.Second, time.Second),
		SessionIdle:   GetEnvAsDuration("SESSION_IDLE_MINUTES", 30*time.Minute, time.Minute),
	}
}

// EngineOptions turns the search settings into validated engine options.
func (s SearchConfig) EngineOptions() (bot.Options, error) {
	preset, err := bot.PresetByName(s.Preset)
	if err != nil {
		return bot.Options{}, err
	}
	opts := bot.Options{
		Model:    bot.Model(s.Model),
		Strategy: bot.Strategy(s.Strategy),
		Cache:    bot.CacheMode(s.Cache),
		Leaf:     bot.LeafMode(s.Leaf),
		Preset:   preset,
	}
	if err := opts.Validate(); err != nil {
		return bot.Options{}, err
	}
	return opts, nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}
	return value
}

// GetEnvAsDuration reads an integer count of unit.
func GetEnvAsDuration(key string, defaultValue, unit time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		log.Warn().Str("key", key).Str("value", valueStr).Dur("default", defaultValue).Msg("invalid duration, using default")
		return defaultValue
	}
	return time.Duration(value) * unit
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Bool("default", defaultValue).Msg("invalid boolean, using default")
		return defaultValue
	}
	return value
}
