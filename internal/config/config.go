package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken string
	HTTPAddr      string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	UploadDir     string
	DB            DBConfig
	Redis         RedisConfig
	Logger        LoggerConfig
	Analysis      AnalysisConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DSN returns the Postgres connection string for gorm.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

// RedisConfig describes where the local persisted state lives.
// An empty Host keeps that state in process memory.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
	MaxSizeMB  int
	MaxBackups int
}

// AnalysisConfig holds the artificial latency of the mock analysis per modality.
type AnalysisConfig struct {
	PhotoDelay time.Duration
	VoiceDelay time.Duration
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "echoremedy")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_OUTPUT", "logs/app.log")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 10)
	v.SetDefault("PHOTO_ANALYSIS_DELAY", 3*time.Second)
	v.SetDefault("VOICE_ANALYSIS_DELAY", 2*time.Second)
}

// Load reads the configuration from the environment. Variables from a .env
// file are expected to be loaded into the environment beforehand.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		TelegramToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		HTTPAddr:      v.GetString("HTTP_ADDR"),
		GeminiAPIKey:  v.GetString("GEMINI_API_KEY"),
		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		UploadDir:     v.GetString("UPLOAD_DIR"),
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(v.GetString("LOG_LEVEL")),
			OutputPath: v.GetString("LOG_OUTPUT"),
			Format:     v.GetString("LOG_FORMAT"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		},
		Analysis: AnalysisConfig{
			PhotoDelay: v.GetDuration("PHOTO_ANALYSIS_DELAY"),
			VoiceDelay: v.GetDuration("VOICE_ANALYSIS_DELAY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem found in the configuration at once.
func (c *Config) Validate() error {
	var problems []string
	if c.TelegramToken == "" && c.HTTPAddr == "" {
		problems = append(problems, "either TELEGRAM_BOT_TOKEN or HTTP_ADDR must be set")
	}
	if c.DB.Host == "" || c.DB.DBName == "" {
		problems = append(problems, "DB_HOST and DB_NAME are required")
	}
	if c.Analysis.PhotoDelay < 0 || c.Analysis.VoiceDelay < 0 {
		problems = append(problems, "analysis delays must not be negative")
	}
	if c.Logger.Format != "json" && c.Logger.Format != "text" {
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be json or text, got %q", c.Logger.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
