package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/k-experience/service-reservation/internal/platform/database"
)

// SMTPConfig holds mail delivery settings. An empty host disables email.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port             string
	AppEnv           string
	DBConfig         database.PostgresConfig
	JWTConfig        JWTConfig
	KafkaConfig      KafkaConfig
	SMTPConfig       SMTPConfig
	RedisAddr        string
	RedisPassword    string
	StorefrontOrigin string
}

// Load reads configuration from environment variables and returns a
// ServiceConfig.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "reservation")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "service-reservation")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("STOREFRONT_ORIGIN", "http://localhost:3000")

	accessTTL, err := time.ParseDuration(v.GetString("JWT_ACCESS_TTL"))
	if err != nil {
		return nil, err
	}
	refreshTTL, err := time.ParseDuration(v.GetString("JWT_REFRESH_TTL"))
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{
		Port:   v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		SMTPConfig: SMTPConfig{
			Host: v.GetString("SMTP_HOST"),
			Port: v.GetInt("SMTP_PORT"),
			User: v.GetString("SMTP_USER"),
			Pass: v.GetString("SMTP_PASSWORD"),
			From: v.GetString("SMTP_FROM"),
		},
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		StorefrontOrigin: v.GetString("STOREFRONT_ORIGIN"),
	}, nil
}
