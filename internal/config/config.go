package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Codes    CodesConfig    `mapstructure:"codes"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
	Path     string `mapstructure:"path"` // directory for the SQLite database file
}

type StorageConfig struct {
	Driver       string   `mapstructure:"driver"` // local or s3
	LocalPath    string   `mapstructure:"local_path"`
	MaxFileSize  int64    `mapstructure:"max_file_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	S3           S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// CodesConfig holds the prefixes of generated natural keys.
type CodesConfig struct {
	CuriaPrefix      string `mapstructure:"curia_prefix"`
	ScholasticPrefix string `mapstructure:"scholastic_prefix"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		if d.Name == ":memory:" || d.Path == "" {
			return d.Name
		}
		return filepath.Join(d.Path, d.Name+".db")
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsSQLite returns true if the driver is sqlite.
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

// Load reads app.yaml (if present) and environment overrides such as
// DATABASE_HOST or AUTH_JWT_SECRET.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("app")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("../..")
	}

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "curia")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.path", "./data")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_path", "./uploads")
	v.SetDefault("storage.max_file_size", 5242880)
	v.SetDefault("storage.allowed_types", []string{"image/jpeg", "image/png", "image/gif", "image/webp"})
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.jwt_secret", "changeme-secret")
	v.SetDefault("codes.curia_prefix", "CUR")
	v.SetDefault("codes.scholastic_prefix", "SCH")
	v.SetDefault("metrics.enabled", true)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
