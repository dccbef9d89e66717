package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (issued by the external identity provider)
	JWTSecret string

	// Admin
	AdminEmails  string
	AdminUserIDs string

	// Server
	Port        string
	CORSOrigins string
	AppBaseURL  string
	Environment string

	// Observability
	SentryDSN string
	LogLevel  string

	// StoreDriver selects the record store: postgres or memory.
	StoreDriver string

	// Kafka (empty brokers disables event publishing and the Kafka mail sender)
	KafkaBrokers           []string
	KafkaVerificationTopic string
	KafkaEmailTopic        string

	// Redis leaderboard cache (empty address disables it)
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	LeaderboardCacheTTL time.Duration

	// Mail
	MailFrom    string
	MailTimeout time.Duration

	// Digest
	DigestInterval  time.Duration
	DigestRetention time.Duration

	Challenge ChallengeConfig
}

// ChallengeConfig is the single source of scoring truth. It is passed to the
// scoring code explicitly so alternate challenge parameters can be exercised
// without touching package state.
type ChallengeConfig struct {
	Minimums       Minimums
	Weights        Weights
	UnitMinMembers int
}

type Minimums struct {
	CardioMiles  float64
	StrengthLbs  float64
	HIITMinutes  float64
	TMARMMinutes float64
}

type Weights struct {
	Cardio   float64
	Strength float64
	HIIT     float64
	TMARM    float64
}

// DefaultChallenge returns the published challenge parameters.
func DefaultChallenge() ChallengeConfig {
	return ChallengeConfig{
		Minimums: Minimums{
			CardioMiles:  120,
			StrengthLbs:  50000,
			HIITMinutes:  300,
			TMARMMinutes: 200,
		},
		Weights: Weights{
			Cardio:   0.30,
			Strength: 0.30,
			HIIT:     0.20,
			TMARM:    0.20,
		},
		UnitMinMembers: 1,
	}
}

// Validate rejects parameter sets that would make percentages meaningless.
func (c ChallengeConfig) Validate() error {
	m := c.Minimums
	if m.CardioMiles <= 0 || m.StrengthLbs <= 0 || m.HIITMinutes <= 0 || m.TMARMMinutes <= 0 {
		return errors.New("challenge minimums must be positive")
	}
	w := c.Weights
	if w.Cardio < 0 || w.Strength < 0 || w.HIIT < 0 || w.TMARM < 0 {
		return errors.New("challenge weights must not be negative")
	}
	if sum := w.Cardio + w.Strength + w.HIIT + w.TMARM; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("challenge weights must sum to 1, got %.4f", sum)
	}
	if c.UnitMinMembers < 1 {
		return errors.New("unit minimum members must be at least 1")
	}
	return nil
}

func Load() *Config {
	def := DefaultChallenge()
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "challenge_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppBaseURL:  getEnv("APP_BASE_URL", "http://localhost:3000"),
		Environment: getEnv("APP_ENV", "development"),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),

		KafkaBrokers:           splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaVerificationTopic: getEnv("KAFKA_VERIFICATION_TOPIC", "workout.verification"),
		KafkaEmailTopic:        getEnv("KAFKA_EMAIL_TOPIC", "notification.email"),

		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getInt("REDIS_DB", 0),
		LeaderboardCacheTTL: parseDuration(getEnv("LEADERBOARD_CACHE_TTL", "30s"), 30*time.Second),

		MailFrom:    getEnv("MAIL_FROM", "Challenge HQ <noreply@example.com>"),
		MailTimeout: parseDuration(getEnv("MAIL_TIMEOUT", "10s"), 10*time.Second),

		DigestInterval:  parseDuration(getEnv("DIGEST_INTERVAL", "24h"), 24*time.Hour),
		DigestRetention: parseDuration(getEnv("DIGEST_RETENTION", "720h"), 30*24*time.Hour),

		Challenge: ChallengeConfig{
			Minimums: Minimums{
				CardioMiles:  getFloat("CHALLENGE_MIN_CARDIO_MILES", def.Minimums.CardioMiles),
				StrengthLbs:  getFloat("CHALLENGE_MIN_STRENGTH_LBS", def.Minimums.StrengthLbs),
				HIITMinutes:  getFloat("CHALLENGE_MIN_HIIT_MINUTES", def.Minimums.HIITMinutes),
				TMARMMinutes: getFloat("CHALLENGE_MIN_TMARM_MINUTES", def.Minimums.TMARMMinutes),
			},
			Weights: Weights{
				Cardio:   getFloat("CHALLENGE_WEIGHT_CARDIO", def.Weights.Cardio),
				Strength: getFloat("CHALLENGE_WEIGHT_STRENGTH", def.Weights.Strength),
				HIIT:     getFloat("CHALLENGE_WEIGHT_HIIT", def.Weights.HIIT),
				TMARM:    getFloat("CHALLENGE_WEIGHT_TMARM", def.Weights.TMARM),
			},
			UnitMinMembers: getInt("UNIT_MIN_MEMBERS", def.UnitMinMembers),
		},
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// UseMemoryStore reports whether the in-process store replaces Postgres.
func (c *Config) UseMemoryStore() bool {
	return c.StoreDriver == "memory"
}

func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
