package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string `yaml:"env" env:"ENV" env-default:"local"`
	Backend `yaml:"backend"`
	Session `yaml:"session"`
	PaymentCallback `yaml:"payment_callback"`
}

type Backend struct {
	BaseURL string        `yaml:"base_url" env:"BACKEND_BASE_URL" env-default:"http://localhost:8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

type Session struct {
	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Key       string `yaml:"key" env-default:"garage:session"`
}

type PaymentCallback struct {
	Address         string        `yaml:"address" env-default:"localhost:8089"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}
