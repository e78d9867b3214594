package config

import (
	"os"
	"strconv"
	"time"
)

type WaterServiceConfig struct {
	Port        string
	Environment string
	LogDir      string
	PostgresCfg PostgresConfig
	MinioCfg    MinioConfig
	RedisCfg    RedisConfig
	RabbitMQCfg RabbitMQConfig
	MailCfg     MailConfig
	AuthCfg     AuthConfig
	WorkerCfg   WorkerConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
	SSLMode  string
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
	PresignExpiry  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type MailConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
	Enabled  bool
}

type AuthConfig struct {
	AdminUsername string
	// AdminPasswordHash is a bcrypt hash; when empty AdminPassword is hashed at startup.
	AdminPasswordHash string
	AdminPassword     string
	JWTSecret         string
	SessionTTL        time.Duration
	SecureCookie      bool
}

type WorkerConfig struct {
	NumWorkers int
	QueueSize  int
}

func New() *WaterServiceConfig {
	return &WaterServiceConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		LogDir:      getEnvOrDefault("LOG_DIR", "/water/log/water_service"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "water_service"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9000"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
			PresignExpiry:  getDurationOrDefault("MINIO_PRESIGN_EXPIRY", 15*time.Minute),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		MailCfg: MailConfig{
			SMTPHost: getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort: getIntOrDefault("SMTP_PORT", 587),
			Username: getEnvOrDefault("SMTP_USERNAME", ""),
			Password: getEnvOrDefault("SMTP_PASSWORD", ""),
			From:     getEnvOrDefault("MAIL_FROM", "utilities@example.gov"),
			Enabled:  getBoolOrDefault("MAIL_ENABLED", false),
		},
		AuthCfg: AuthConfig{
			AdminUsername:     getEnvOrDefault("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: getEnvOrDefault("ADMIN_PASSWORD_HASH", ""),
			AdminPassword:     getEnvOrDefault("ADMIN_PASSWORD", "admin"),
			JWTSecret:         getEnvOrDefault("JWT_SECRET", "change-me"),
			SessionTTL:        getDurationOrDefault("ADMIN_SESSION_TTL", 24*time.Hour),
			SecureCookie:      getBoolOrDefault("SECURE_COOKIE", false),
		},
		WorkerCfg: WorkerConfig{
			NumWorkers: getIntOrDefault("NOTIFY_WORKERS", 2),
			QueueSize:  getIntOrDefault("NOTIFY_QUEUE_SIZE", 100),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
