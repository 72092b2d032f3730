package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Shopkeep"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"shopkeep"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		JWTSecret     string        `envconfig:"JWT_SECRET"`
		AdminUser     string        `envconfig:"ADMIN_USER" default:"admin"`
		AdminPassword string        `envconfig:"ADMIN_PASSWORD"`
		TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
	}

	Invoice struct {
		// Default tax rate for new invoices, in percent (NHIL + VAT).
		TaxRate string `envconfig:"INVOICE_TAX_RATE" default:"15.00"`
	}

	Shop struct {
		Name    string `envconfig:"SHOP_NAME" default:"THE POOLsHOP"`
		Address string `envconfig:"SHOP_ADDRESS" default:"123 Pool Street, Accra, Ghana"`
		Phone   string `envconfig:"SHOP_PHONE" default:"+233 500 000 000"`
		Email   string `envconfig:"SHOP_EMAIL" default:"info@poolshop.com"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
