package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuracion de ambos procesos (API y gateway).
type Config struct {
	HTTPPort           string `env:"HTTP_PORT" envDefault:"13247"`
	GatewayPort        string `env:"GATEWAY_PORT" envDefault:"13246"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	RedisAddr          string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	AuthTimeoutSeconds int    `env:"AUTH_TIMEOUT_SECONDS" envDefault:"10"`
	LoginWindowSeconds int    `env:"LOGIN_WINDOW_SECONDS" envDefault:"60"`
	LoginMaxAttempts   int    `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
