package config

import (
	"encoding/json"
	"fmt"

	aws_handler "github.com/gmgifpe/asset-tracker/src/utils/aws"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	Auth            AuthConfig           `mapstructure:"auth"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Worker          WorkerConfig         `mapstructure:"worker"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type ServiceType `mapstructure:"type"`
	Port string      `mapstructure:"port"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`

	// When set, username/password are resolved from AWS Secrets Manager
	// instead of the yaml file.
	SecretARN string `mapstructure:"secret_arn"`
	AWSRegion string `mapstructure:"aws_region"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	Enabled  bool   `mapstructure:"enabled"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwtSecret"`
	TokenTTLHours int    `mapstructure:"tokenTTLHours"`
}

type ExternalClientConfig struct {
	Quotes QuotesConfig `mapstructure:"quotes"`
	FX     FXConfig     `mapstructure:"fx"`
}

type QuotesConfig struct {
	CryptoBaseURL   string `mapstructure:"cryptoBaseUrl"`
	CacheTTLMinutes int    `mapstructure:"cacheTTLMinutes"`
}

type FXConfig struct {
	BaseURL         string `mapstructure:"baseUrl"`
	CacheTTLMinutes int    `mapstructure:"cacheTTLMinutes"`
}

type WorkerConfig struct {
	PriceRefreshCron string `mapstructure:"priceRefreshCron"`
}

type dbSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	// Local overrides, ignored when no .env file is present
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Databases.SQL.SecretARN != "" {
		if err := resolveDBSecret(&cfg); err != nil {
			return nil, fmt.Errorf("failed to resolve database secret: %w", err)
		}
	}

	if cfg.Auth.TokenTTLHours == 0 {
		cfg.Auth.TokenTTLHours = 24
	}

	return &cfg, nil
}

func resolveDBSecret(cfg *Config) error {
	handler, err := aws_handler.NewAWSHandler(cfg.Databases.SQL.AWSRegion)
	if err != nil {
		return err
	}
	raw, err := handler.SecretManager.GetSecretValue(cfg.Databases.SQL.SecretARN)
	if err != nil {
		return err
	}
	var secret dbSecret
	if err := json.Unmarshal([]byte(raw), &secret); err != nil {
		return err
	}
	cfg.Databases.SQL.Username = secret.Username
	cfg.Databases.SQL.Password = secret.Password
	return nil
}
