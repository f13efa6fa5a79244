package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBPath     string `mapstructure:"DB_PATH"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	AWSRegion     string `mapstructure:"AWS_REGION"`
	SNSFCMArn     string `mapstructure:"SNS_FCM_ARN"`
	S3Bucket      string `mapstructure:"S3_BUCKET"`
	S3Region      string `mapstructure:"S3_REGION"`
	CloudFrontURL string `mapstructure:"CLOUDFRONT_URL"`
	SESEmail      string `mapstructure:"SES_EMAIL"`

	NotifyURLs string        `mapstructure:"NOTIFY_URLS"`
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`
}

var defaults = map[string]any{
	"ENVIRONMENT":    "development",
	"SERVER_PORT":    "8080",
	"DB_DRIVER":      "postgres",
	"DB_HOST":        "localhost",
	"DB_PORT":        "5432",
	"DB_USER":        "",
	"DB_PASSWORD":    "",
	"DB_NAME":        "firstbites",
	"DB_PATH":        "firstbites.db",
	"JWT_SECRET":     "",
	"AWS_REGION":     "ap-south-1",
	"SNS_FCM_ARN":    "",
	"S3_BUCKET":      "",
	"S3_REGION":      "",
	"CLOUDFRONT_URL": "",
	"SES_EMAIL":      "",
	"NOTIFY_URLS":    "",
	"SESSION_TTL":    "30m",
	"LOG_LEVEL":      "info",
	"LOG_FILE":       "",
}

// LoadConfig reads <dir>/.env when present and overlays the process environment.
func LoadConfig(dir string) (Config, error) {
	var cfg Config

	envFile := filepath.Join(dir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if cfg.S3Region == "" {
		cfg.S3Region = cfg.AWSRegion
	}
	return cfg, nil
}

// IsProduction reports whether gin should run in release mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// NotifyURLList splits NOTIFY_URLS into individual shoutrrr URLs.
func (c *Config) NotifyURLList() []string {
	var out []string
	for _, u := range strings.Split(c.NotifyURLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// PostgresDSN returns the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}
