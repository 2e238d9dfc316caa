// Package config предоставялет структуры и функции для парсинга и загрузки конфига консоли администратора.
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
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	API             `yaml:"api"`
	HTTPServer      `yaml:"http_server"`
	RedisConnection `yaml:"redis_connection"`
	Cache           `yaml:"cache"`
}

// API структура для настройки клиента удалённого REST API
type API struct {
	BaseURL   string        `yaml:"base_url" env:"API_BASE_URL" env-required:"true"`
	AssetsURL string        `yaml:"assets_url" env:"API_ASSETS_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"API_TIMEOUT"`
	// RateLimit — запросов в секунду к API, 0 отключает ограничение
	RateLimit float64 `yaml:"rate_limit" env:"API_RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"API_RATE_BURST" env-default:"5"`
	PageSize  int     `yaml:"page_size" env:"API_PAGE_SIZE" env-default:"10"`
}

// HTTPServer структура для настройки сервера консоли
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// RequestsPerSecond ограничивает входящие запросы консоли, 0 отключает лимитер
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Cache структура для настройки общего кеша результатов запросов
type Cache struct {
	Enabled   bool          `yaml:"enabled" env:"CACHE_ENABLED"`
	TTL       time.Duration `yaml:"ttl" env-default:"30s"`
	KeyPrefix string        `yaml:"key_prefix" env-default:"admin:"`
	// StaleTime — сколько ответ считается свежим, после чего страница запрашивает его заново
	StaleTime time.Duration `yaml:"stale_time" env:"CACHE_STALE_TIME" env-default:"60s"`
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

// Load читает конфиг из файла и переменных окружения.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"API:\n"+
			"  BaseURL: %s\n"+
			"  AssetsURL: %s\n"+
			"  Timeout: %s\n"+
			"  RateLimit: %.2f (burst %d)\n"+
			"  PageSize: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"Cache:\n"+
			"  Enabled: %t\n"+
			"  TTL: %s\n"+
			"  StaleTime: %s\n",
		c.Env,
		c.BaseURL,
		c.AssetsURL,
		c.Timeout,
		c.RateLimit,
		c.RateBurst,
		c.PageSize,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.DB,
		c.Enabled,
		c.TTL,
		c.StaleTime,
	)
}
