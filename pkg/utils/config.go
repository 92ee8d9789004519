package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSheetID is the published spreadsheet the character data lives in.
const DefaultSheetID = "1nbAsU-zNe4HbM0bBLlYofi1pHhneEjEIWfW22JODBeM"

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

type Config struct {
	SheetID      string
	SheetName    string
	SheetsBase   string
	HTTPAddr     string
	SyncAddr     string
	CacheTTL     time.Duration
	CacheSWR     time.Duration
	FetchTimeout time.Duration
	LogMode      string
	Auth         AuthConfig
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func DefaultConfig() Config {
	return Config{
		SheetID:      DefaultSheetID,
		SheetName:    "Characters",
		SheetsBase:   "https://docs.google.com",
		HTTPAddr:     ":8080",
		SyncAddr:     ":7070",
		CacheTTL:     5 * time.Minute,
		CacheSWR:     24 * time.Hour,
		FetchTimeout: 15 * time.Second,
		LogMode:      "dev",
		Auth: AuthConfig{
			// dev default (change for production)
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "loremaker",
			JWTDuration: 24 * time.Hour,
		},
	}
}

// LoadConfig overlays LOREMAKER_* environment variables on the defaults.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if raw := env("LOREMAKER_SHEET_ID"); raw != "" {
		cfg.SheetID = raw
	}
	if raw := env("LOREMAKER_SHEET_NAME"); raw != "" {
		cfg.SheetName = raw
	}
	if raw := env("LOREMAKER_SHEETS_BASE_URL"); raw != "" {
		cfg.SheetsBase = strings.TrimRight(raw, "/")
	}
	if raw := env("LOREMAKER_HTTP_ADDR"); raw != "" {
		cfg.HTTPAddr = raw
	}
	if raw := env("LOREMAKER_SYNC_ADDR"); raw != "" {
		cfg.SyncAddr = raw
	}
	if d, ok := durationEnv("LOREMAKER_CACHE_TTL"); ok {
		cfg.CacheTTL = d
	}
	if d, ok := durationEnv("LOREMAKER_CACHE_SWR"); ok {
		cfg.CacheSWR = d
	}
	if d, ok := durationEnv("LOREMAKER_FETCH_TIMEOUT"); ok && d > 0 {
		cfg.FetchTimeout = d
	}
	if raw := env("LOREMAKER_LOG_MODE"); raw != "" {
		cfg.LogMode = raw
	}
	cfg.Auth = LoadAuthConfig()
	return cfg
}

func LoadAuthConfig() AuthConfig {
	auth := DefaultConfig().Auth
	if secret := env("LOREMAKER_JWT_SECRET"); secret != "" {
		auth.JWTSecret = secret
	}
	if issuer := env("LOREMAKER_JWT_ISSUER"); issuer != "" {
		auth.JWTIssuer = issuer
	}
	if raw := env("LOREMAKER_JWT_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			auth.JWTDuration = time.Duration(hours) * time.Hour
		}
	}
	return auth
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// durationEnv accepts Go durations ("90s") or a bare number of seconds.
func durationEnv(key string) (time.Duration, bool) {
	raw := env(key)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return time.Duration(n) * time.Second, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}
