package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contient la configuration globale de l'application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Upload   UploadConfig
}

// ServerConfig contient la configuration du serveur web
type ServerConfig struct {
	Port        string `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:4000"`
}

// DatabaseConfig contient la configuration de la base de données
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"listora"`
}

// JWTConfig contient la configuration des tokens d'identité.
// Le secret est obligatoire: pas de valeur de repli embarquée.
type JWTConfig struct {
	Secret   string `env:"JWT_SECRET"`
	Issuer   string `env:"JWT_ISSUER"`
	Audience string `env:"JWT_AUDIENCE"`
}

// SMTPConfig contient la configuration d'envoi d'emails
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" envDefault:"localhost"`
	Port     int    `env:"SMTP_PORT" envDefault:"2525"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"no-reply@listora.local"`
}

// UploadConfig contient la configuration du stockage des fichiers uploadés.
// Les fichiers sont écrits sous PublicDir/uploads et servis en statique.
type UploadConfig struct {
	PublicDir string `env:"PUBLIC_DIR" envDefault:"web/static"`
}

// Load charge la configuration depuis les variables d'environnement
func Load() (*Config, error) {
	// Charger les variables d'environnement depuis .env si présent
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("erreur lors de la lecture de l'environnement: %w", err)
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%s", cfg.Server.Port)
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = cfg.Server.BaseURL
	}
	if cfg.JWT.Audience == "" {
		cfg.JWT.Audience = cfg.Server.FrontendURL
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate vérifie la présence des variables obligatoires
func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("la variable d'environnement JWT_SECRET est obligatoire")
	}
	return nil
}
