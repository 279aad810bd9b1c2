package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerAddr  string
	LogLevel    string

	DatabaseURL string
	SQLitePath  string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	AdminEmail    string
	AdminPassword string

	MaxLoginAttempts int
	LoginLockout     time.Duration

	CORSOrigins []string

	KafkaBrokers []string
	RabbitMQURL  string
	ES           ESConfig
}

type ESConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

// LoadDotEnv reads .env when present; real environment variables win.
func LoadDotEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}
}

func Load() Config {
	LoadDotEnv()

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "panaghia-api"),
		ServerAddr:  EnvDefault("SERVER_ADDR", ":"+strconv.Itoa(EnvIntDefault("SERVER_PORT", 8000))),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTTL:        time.Duration(EnvIntDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		RefreshTTL:       time.Duration(EnvIntDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		MaxLoginAttempts: EnvIntDefault("MAX_LOGIN_ATTEMPTS", 5),
		LoginLockout:     time.Duration(EnvIntDefault("LOGIN_LOCKOUT_MINUTES", 15)) * time.Minute,

		CORSOrigins: CSV(EnvDefault("CORS_ORIGINS", "http://localhost:3000")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),
		ES: ESConfig{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    EnvDefault("ES_INDEX", "menu_items"),
		},
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
