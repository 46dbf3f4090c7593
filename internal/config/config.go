package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/path/to/socket)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	AutoConfirmGraceHours int    `env:"AUTO_CONFIRM_GRACE_HOURS" envDefault:"24"`
	AutoConfirmSchedule   string `env:"AUTO_CONFIRM_SCHEDULE" envDefault:"@every 5m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) AutoConfirmGrace() time.Duration {
	return time.Duration(c.AutoConfirmGraceHours) * time.Hour
}
