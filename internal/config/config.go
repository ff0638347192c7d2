package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/loyalty"
)

type Config struct {
	Port                   string
	AppEnv                 string
	LogLevel               string
	AllowedOrigin          string
	DatabaseURL            string
	FirestoreProjectID     string
	FirestoreCredentials   string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	LoyaltyCacheTTLSeconds int
	SyncLockTTLSeconds     int
	AMQPURL                string
	OutsourceRateFallback  domain.Amount
	TiersFile              string
	BusinessTimezone       string
	PhoneRegion            string
}

// Load reads .env when present, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("[config] ignoring unreadable .env")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := Config{
		Port:                   getEnv("PORT", "8080"),
		AppEnv:                 strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel:               strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigin:          getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		FirestoreProjectID:     strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID")),
		FirestoreCredentials:   strings.TrimSpace(os.Getenv("FIRESTORE_CREDENTIALS_FILE")),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                redisDB,
		LoyaltyCacheTTLSeconds: positiveInt("LOYALTY_CACHE_TTL_SECONDS", 60),
		SyncLockTTLSeconds:     positiveInt("SYNC_LOCK_TTL_SECONDS", 120),
		AMQPURL:                strings.TrimSpace(os.Getenv("AMQP_URL")),
		OutsourceRateFallback:  domain.ParseAmount(getEnv("OUTSOURCE_RATE_FALLBACK", "300")),
		TiersFile:              strings.TrimSpace(os.Getenv("TIERS_FILE")),
		BusinessTimezone:       getEnv("BUSINESS_TIMEZONE", "Asia/Bangkok"),
		PhoneRegion:            strings.ToUpper(getEnv("PHONE_REGION", "TH")),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev" || c.AppEnv == "local"
}

type tierEntry struct {
	Name  string `yaml:"name"`
	Spend string `yaml:"spend"`
	Hours int    `yaml:"hours"`
}

// LoadTiers reads a YAML list of {name, spend, hours} entries. An empty path
// yields the built-in table.
func LoadTiers(path string) (*loyalty.TierTable, error) {
	if path == "" {
		return loyalty.DefaultTierTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tiers file: %w", err)
	}
	return ParseTiers(raw)
}

func ParseTiers(raw []byte) (*loyalty.TierTable, error) {
	var entries []tierEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse tiers: %w", err)
	}

	tiers := make([]loyalty.Tier, 0, len(entries))
	for _, e := range entries {
		spend, err := decimal.NewFromString(strings.TrimSpace(e.Spend))
		if err != nil {
			return nil, fmt.Errorf("%w: tier %q spend %q", loyalty.ErrInvalidTierTable, e.Name, e.Spend)
		}
		tiers = append(tiers, loyalty.Tier{Name: e.Name, Spend: domain.AmountFromDecimal(spend), Hours: e.Hours})
	}
	return loyalty.NewTierTable(tiers)
}

func positiveInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
