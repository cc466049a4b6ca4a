package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rodpaiva/mensageiro-fit/internal/logger"
)

type Config struct {
	TelegramToken string
	UserEmail     string
	Google        GoogleConfig
	DB            DBConfig
	Redis         RedisConfig
	Report        ReportConfig
	Logger        LoggerConfig
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig is optional: an empty Addr keeps the Telegram polling
// cursor in memory instead of Redis.
type RedisConfig struct {
	Addr string
}

// ReportConfig holds the daily report wall-clock schedule.
type ReportConfig struct {
	Hour   int
	Minute int
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	return &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		UserEmail:     os.Getenv("USER_EMAIL"),
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "mensageiro_fit"),
		},
		Redis: RedisConfig{
			Addr: os.Getenv("REDIS_ADDR"),
		},
		Report: ReportConfig{
			Hour:   getEnvIntOrDefault("REPORT_HOUR", 21),
			Minute: getEnvIntOrDefault("REPORT_MINUTE", 0),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}

// Validate reports every required key that is missing, so the operator
// can fix them in one pass.
func (c *Config) Validate() error {
	var missing []string
	if c.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.UserEmail == "" {
		missing = append(missing, "USER_EMAIL")
	}
	if c.Google.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.Google.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.Report.Hour < 0 || c.Report.Hour > 23 {
		return fmt.Errorf("REPORT_HOUR must be between 0 and 23, got %d", c.Report.Hour)
	}
	if c.Report.Minute < 0 || c.Report.Minute > 59 {
		return fmt.Errorf("REPORT_MINUTE must be between 0 and 59, got %d", c.Report.Minute)
	}
	return nil
}
