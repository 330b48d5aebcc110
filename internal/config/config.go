package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	BaseURL        string        `env:"BASE_URL"` // если задан, используется вместо схемы и хоста запроса
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	SessionSecret string `env:"SESSION_SECRET,required"`
	SessionSecure bool   `env:"SESSION_SECURE"`

	// Redis опционален: пустой URL отключает кэш виджетов боковой панели
	RedisURL        string        `env:"REDIS_URL"`
	SidebarCacheTTL time.Duration `env:"SIDEBAR_CACHE_TTL" envDefault:"1m"`

	// Настройки для MinIO
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION,required"`

	ImageFetchTimeout time.Duration `env:"IMAGE_FETCH_TIMEOUT" envDefault:"15s"`
	ImageMaxBytes     int64         `env:"IMAGE_MAX_BYTES" envDefault:"10485760"`

	SMTP struct {
		Host     string `env:"SMTP_HOST" envDefault:"localhost"`
		Port     int    `env:"SMTP_PORT" envDefault:"25"`
		Username string `env:"SMTP_USERNAME"`
		Password string `env:"SMTP_PASSWORD"`
		From     string `env:"MAIL_FROM" envDefault:"blog@example.com"`
	}
	MailViaQueue bool `env:"MAIL_VIA_QUEUE"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"mail_queue"`
	}

	PasswordResetTimeout time.Duration `env:"PASSWORD_RESET_TIMEOUT" envDefault:"72h"`
	PostsPerPage         int           `env:"POSTS_PER_PAGE" envDefault:"3"`
	FeedItems            int           `env:"FEED_ITEMS" envDefault:"5"`
	SearchConfig         string        `env:"SEARCH_CONFIG" envDefault:"english"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MailViaQueue && c.RabbitMQ.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL must be set when MAIL_VIA_QUEUE is enabled")
	}
	if c.PostsPerPage <= 0 {
		return fmt.Errorf("POSTS_PER_PAGE must be positive, got %d", c.PostsPerPage)
	}
	if c.FeedItems <= 0 {
		return fmt.Errorf("FEED_ITEMS must be positive, got %d", c.FeedItems)
	}
	return nil
}
