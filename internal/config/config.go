package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIPort  int `mapstructure:"apiPort"`
	Database struct {
		Type            string `mapstructure:"type"` // "postgres" or "sqlite"
		Path            string `mapstructure:"path"` // sqlite only
		Host            string `mapstructure:"host"`
		Port            string `mapstructure:"port"`
		Name            string `mapstructure:"name"`
		User            string `mapstructure:"user"`
		Password        string `mapstructure:"password"`
		SSLMode         string `mapstructure:"sslmode"`
		MaxConns        int    `mapstructure:"maxConns"`
		MaxIdle         int    `mapstructure:"maxIdle"`
		ConnMaxLifetime string `mapstructure:"connMaxLifetime"`
	} `mapstructure:"database"`
	Auth struct {
		SessionDuration time.Duration `mapstructure:"sessionDuration"`
		RenewalFraction float64       `mapstructure:"renewalFraction"`
		JWTSecret       string        `mapstructure:"jwtSecret"`
		JWTDuration     time.Duration `mapstructure:"jwtDuration"`
		SecureCookies   bool          `mapstructure:"secureCookies"`
	} `mapstructure:"auth"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	S3 struct {
		Endpoint        string `mapstructure:"endpoint"`
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		AccessKeyID     string `mapstructure:"accessKeyId"`
		SecretAccessKey string `mapstructure:"secretAccessKey"`
	} `mapstructure:"s3"`
}

// ExportEnabled reports whether account export has somewhere to upload to.
func (c *Config) ExportEnabled() bool {
	return c.S3.Bucket != ""
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DAYLOOP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Printf("Warning: Could not read config file: %s. Using defaults or environment variables.", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.APIPort == 0 {
		cfg.APIPort = 8080
		log.Println("apiPort not specified, using default 8080")
	}

	switch cfg.Database.Type {
	case "postgres":
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	case "sqlite", "":
		cfg.Database.Type = "sqlite"
		if cfg.Database.Path == "" {
			cfg.Database.Path = "/data/dayloop.db"
			log.Println("Database path not specified, using default /data/dayloop.db")
		}
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	if cfg.Auth.SessionDuration == 0 {
		cfg.Auth.SessionDuration = 30 * 24 * time.Hour
	}
	if cfg.Auth.RenewalFraction <= 0 || cfg.Auth.RenewalFraction >= 1 {
		cfg.Auth.RenewalFraction = 0.5
	}
	if cfg.Auth.JWTDuration == 0 {
		cfg.Auth.JWTDuration = 24 * time.Hour
	}
	if cfg.Auth.JWTSecret == "" {
		log.Println("Warning: auth.jwtSecret not set, bearer token issuance is disabled")
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}

	return &cfg, nil
}
