package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers understood by repositories.Open.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Image backends understood by upload.NewImageStore.
const (
	ImageBackendLocal = "local"
	ImageBackendS3    = "s3"
)

// Config is the process-wide configuration. It is built once in main and
// handed to every component that needs it.
type Config struct {
	Env  string
	Port string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseDSN   string
	SQLitePath    string

	JWTSecret         string
	TokenTTL          time.Duration
	AuthRequireWrites bool

	UploadDir       string
	UploadURLPrefix string
	UploadField     string
	MaxUploadBytes  int64
	ImageBackend    string
	S3              S3Config

	RabbitMQURL      string
	OrderEventsQueue string

	DefaultPageLimit int
	MaxPageLimit     int
	RequestTimeout   time.Duration
	MetricsEnabled   bool
}

// S3Config holds the connection details for the S3 image backend.
// Endpoint may point at any S3 compatible service (MinIO in development).
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	KeyPrefix string
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:  v.GetString("APP_ENV"),
		Port: v.GetString("APP_PORT"),

		StoreDriver:   strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:      v.GetString("MONGO_URI"),
		MongoDatabase: v.GetString("MONGO_DATABASE"),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		SQLitePath:    v.GetString("SQLITE_PATH"),

		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		AuthRequireWrites: v.GetBool("AUTH_REQUIRE_WRITES"),

		UploadDir:       v.GetString("UPLOAD_DIR"),
		UploadURLPrefix: v.GetString("UPLOAD_URL_PREFIX"),
		UploadField:     v.GetString("UPLOAD_FIELD"),
		MaxUploadBytes:  v.GetInt64("MAX_UPLOAD_BYTES"),
		ImageBackend:    strings.ToLower(v.GetString("IMAGE_BACKEND")),
		S3: S3Config{
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			KeyPrefix: v.GetString("S3_KEY_PREFIX"),
		},

		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		OrderEventsQueue: v.GetString("ORDER_EVENTS_QUEUE"),

		DefaultPageLimit: v.GetInt("DEFAULT_PAGE_LIMIT"),
		MaxPageLimit:     v.GetInt("MAX_PAGE_LIMIT"),
		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		MetricsEnabled:   v.GetBool("METRICS_ENABLED"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the application cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.ImageBackend {
	case ImageBackendLocal:
	case ImageBackendS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required when IMAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_BACKEND %q", c.ImageBackend)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.DefaultPageLimit < 1 || c.MaxPageLimit < c.DefaultPageLimit {
		return fmt.Errorf("invalid page limits: default %d, max %d", c.DefaultPageLimit, c.MaxPageLimit)
	}
	return nil
}

// IsDev reports whether the process runs in the development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", ":3000")

	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "storefront")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=storefront port=5432 sslmode=disable")
	v.SetDefault("SQLITE_PATH", "storefront.db")

	v.SetDefault("JWT_SECRET", "your_secret_key")
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("AUTH_REQUIRE_WRITES", false)

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_URL_PREFIX", "/uploads")
	v.SetDefault("UPLOAD_FIELD", "productImage")
	v.SetDefault("MAX_UPLOAD_BYTES", 2*1024*1024)
	v.SetDefault("IMAGE_BACKEND", ImageBackendLocal)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_KEY_PREFIX", "products")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("ORDER_EVENTS_QUEUE", "order_queue")

	v.SetDefault("DEFAULT_PAGE_LIMIT", 10)
	v.SetDefault("MAX_PAGE_LIMIT", 100)
	v.SetDefault("REQUEST_TIMEOUT", 5*time.Second)
	v.SetDefault("METRICS_ENABLED", true)
}

// Defaults returns the configuration used when no environment is set.
// Tests start from it and override what they need.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := FromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config: defaults are invalid: %v", err))
	}
	return cfg
}
