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
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret   string
	JWTLifetime time.Duration

	ServerPort  string
	CORSOrigins string
	// Location is used for calendar-day arithmetic (streaks, daily stats).
	Location *time.Location

	Log        LogConfig
	Redis      RedisConfig
	Curriculum CurriculumConfig
}

type LogConfig struct {
	Level  string
	Dev    bool
	File   string
	MaxAge time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis server is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type CurriculumConfig struct {
	WebhookURL string
	Timeout    time.Duration
	Workers    int
	QueueSize  int
	Debug      bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "neural_nexus"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "neural_nexus.db"),

		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		JWTLifetime: getDuration("JWT_LIFETIME", 7*24*time.Hour),

		ServerPort:  getEnv("SERVER_PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Location:    loc,

		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Dev:    getBool("LOG_DEV", false),
			File:   getEnv("LOG_FILE", ""),
			MaxAge: getDuration("LOG_MAX_AGE", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Curriculum: CurriculumConfig{
			WebhookURL: getEnv("CURRICULUM_WEBHOOK_URL", ""),
			Timeout:    getDuration("CURRICULUM_TIMEOUT", 30*time.Second),
			Workers:    getInt("CURRICULUM_WORKERS", 2),
			QueueSize:  getInt("CURRICULUM_QUEUE", 64),
			Debug:      getBool("CURRICULUM_DEBUG", false),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultValue
}
