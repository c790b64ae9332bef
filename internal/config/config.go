package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"jobhive"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"JOBHIVE_ADDRESS" default:":8080"`
	MetricsAddress  string `envconfig:"JOBHIVE_METRICS_ADDRESS" default:":8081"`
	BaseUrl         string `envconfig:"JOBHIVE_BASE_URL" default:"http://localhost:8080"`
	LogLevel        string `envconfig:"JOBHIVE_LOG_LEVEL" default:"info"`
	BulkLimit       int    `envconfig:"JOBHIVE_BULK_LIMIT" default:"100"`
	DefaultPageSize int    `envconfig:"JOBHIVE_DEFAULT_PAGE_SIZE" default:"20"`
	MaxPageSize     int    `envconfig:"JOBHIVE_MAX_PAGE_SIZE" default:"100"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a config populated with defaults only, ignoring the
// environment. Used by tests.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{Type: "sqlite", Name: "file::memory:?cache=shared"},
		Service: &svcConfig{
			Address:         ":8080",
			MetricsAddress:  ":8081",
			BaseUrl:         "http://localhost:8080",
			LogLevel:        "info",
			BulkLimit:       100,
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}
