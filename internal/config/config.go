// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel   string     `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	AdminEmail string     `yaml:"admin_email" env:"ADMIN_EMAIL" env-default:"admin@jmfx.com"`
	Storage    Storage    `yaml:"storage"`
	Latency    Latency    `yaml:"latency"`
	Gemini     Gemini     `yaml:"gemini"`
	RabbitMQ   RabbitMQ   `yaml:"rabbitmq"`
	Telegram   Telegram   `yaml:"telegram"`
	StatusPoll StatusPoll `yaml:"status_poll"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
}

// Storage выбирает бэкенд key-value хранилища: memory, redis или postgres.
type Storage struct {
	Driver         string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	PostgresDSN    string `yaml:"postgres_dsn" env:"STORAGE_POSTGRES_DSN"`
	MigrationsPath string `yaml:"migrations_path" env-default:"./migrations"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном сессии
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"720h"`
}

// Latency настраивает искусственную задержку операций хранилища.
// Scale умножает базовые длительности.
type Latency struct {
	Disabled bool    `yaml:"disabled" env:"LATENCY_DISABLED"`
	Scale    float64 `yaml:"scale" env-default:"1"`
}

// Gemini настройки модели для анализа и чата.
type Gemini struct {
	APIKey  string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model   string `yaml:"model" env-default:"gemini-3-flash-preview"`
	BaseURL string `yaml:"base_url" env:"GEMINI_BASE_URL"`
}

// RabbitMQ настройки брокера для рассылки сигналов в VIP группу.
// Пустой URL отключает публикацию, сигналы только логируются.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
	Exchange   string        `yaml:"exchange" env-default:"signals"`
	Queue      string        `yaml:"queue" env-default:"signals.vip"`
	RoutingKey string        `yaml:"routing_key" env-default:"vip"`
}

// Telegram настройки бота, который публикует сигналы в группу.
type Telegram struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

// StatusPoll интервал повторной проверки статуса подписки неоплаченного пользователя.
type StatusPoll struct {
	Interval time.Duration `yaml:"interval" env-default:"10s"`
	Timeout  time.Duration `yaml:"timeout" env-default:"25s"`
	// Sweep интервал фонового прохода по реестру. По умолчанию 0: истечение только при чтении
	Sweep time.Duration `yaml:"sweep" env:"STATUS_POLL_SWEEP" env-default:"0s"`
}

// RateLimit лимит запросов анализа на весь сервис.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"3"`
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"AdminEmail: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Gemini:\n"+
			"  Model: %s\n"+
			"  APIKeySet: %t\n"+
			"RabbitMQ:\n"+
			"  Exchange: %s\n"+
			"  Queue: %s\n"+
			"Latency:\n"+
			"  Disabled: %t\n"+
			"  Scale: %.2f\n",
		c.Env,
		c.AdminEmail,
		c.Storage.Driver,
		c.Storage.MigrationsPath,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Gemini.Model,
		c.Gemini.APIKey != "",
		c.RabbitMQ.Exchange,
		c.RabbitMQ.Queue,
		c.Latency.Disabled,
		c.Latency.Scale,
	)
}
