package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Scoring  ScoringConfig
	Webhook  WebhookConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// ScoringConfig holds tier thresholds, policy weight overrides and vouch
// settings. All values are tunable per deployment; defaults match the
// product tier sheet and the standard scoring policy.
type ScoringConfig struct {
	TierElite       float64
	TierExcellent   float64
	TierGood        float64
	TierFair        float64
	TierPoor        float64
	VouchTTLDays    int
	SweepSchedule   string
	SnapshotMaxMins int

	OnTimeRateWeight    float64
	DefaultPenaltyRatio float64
	ReferenceDeposit    float64
	FirstCircleBonus    float64
	VouchPointsCap      float64
}

// WebhookConfig holds the tier-change webhook settings. An empty URL
// disables notifications entirely.
type WebhookConfig struct {
	TierChangeURL string
	TimeoutSecs   int
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	// Build config based on APP_MODE
	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Scoring:  loadScoringConfig(),
		Webhook:  loadWebhookConfig(),
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "xntrust"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadScoringConfig loads tier thresholds and vouch settings
func loadScoringConfig() ScoringConfig {
	return ScoringConfig{
		TierElite:       getEnvFloat("TIER_ELITE_MIN", 88),
		TierExcellent:   getEnvFloat("TIER_EXCELLENT_MIN", 75),
		TierGood:        getEnvFloat("TIER_GOOD_MIN", 60),
		TierFair:        getEnvFloat("TIER_FAIR_MIN", 45),
		TierPoor:        getEnvFloat("TIER_POOR_MIN", 25),
		VouchTTLDays:    getEnvInt("VOUCH_TTL_DAYS", 90),
		SweepSchedule:   getEnv("VOUCH_SWEEP_CRON", "0 15 3 * * *"),
		SnapshotMaxMins: getEnvInt("SNAPSHOT_MAX_AGE_MINUTES", 60),

		OnTimeRateWeight:    getEnvFloat("SCORE_ONTIME_RATE_WEIGHT", 26),
		DefaultPenaltyRatio: getEnvFloat("SCORE_DEFAULT_PENALTY_RATIO", 0.3),
		ReferenceDeposit:    getEnvFloat("SCORE_REFERENCE_DEPOSIT", 500),
		FirstCircleBonus:    getEnvFloat("SCORE_FIRST_CIRCLE_BONUS", 5),
		VouchPointsCap:      getEnvFloat("SCORE_VOUCH_POINTS_CAP", 15),
	}
}

// loadWebhookConfig loads tier-change webhook settings
func loadWebhookConfig() WebhookConfig {
	return WebhookConfig{
		TierChangeURL: getEnv("TIER_CHANGE_WEBHOOK_URL", ""),
		TimeoutSecs:   getEnvInt("TIER_CHANGE_WEBHOOK_TIMEOUT", 5),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat gets environment variable as float with default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://app.xntanda.com"
	}
	return origins
}
