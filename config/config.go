package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Cart     CartConfig     `yaml:"cart"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`

	MongoURI  string `yaml:"mongo_uri"`
	MongoName string `yaml:"mongo_name"`

	FirestoreProject     string `yaml:"firestore_project"`
	FirestoreCredentials string `yaml:"firestore_credentials"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	StoreEventsTopic   string   `yaml:"store_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
	BcryptCost      int    `yaml:"bcrypt_cost"`
	AdminEmail      string `yaml:"admin_email"`
	AdminPassword   string `yaml:"admin_password"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver"`
	Dir           string `yaml:"dir"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type CatalogConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

type CartConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

const (
	DriverPostgres  = "postgres"
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"

	StorageFS     = "fs"
	StorageGridFS = "gridfs"
)

func LoadConfig(path string) (*Config, error) {
	// .env is optional; the process environment wins either way.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.Auth.AdminPassword = v
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageFS
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data/blobs"
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		c.Auth.TokenTTLMinutes = 24 * 60
	}
	if c.Auth.BcryptCost <= 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Catalog.CacheTTLSeconds <= 0 {
		c.Catalog.CacheTTLSeconds = 60
	}
	if c.Cart.TTLMinutes <= 0 {
		c.Cart.TTLMinutes = 24 * 60
	}
	c.Storage.PublicBaseURL = strings.TrimRight(c.Storage.PublicBaseURL, "/")
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMongo, DriverFirestore, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case StorageFS, StorageGridFS:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == StorageGridFS && c.Database.MongoURI == "" {
		return errors.New("gridfs storage requires database.mongo_uri")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	return nil
}
