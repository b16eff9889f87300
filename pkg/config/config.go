package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "campustrack-dev-secret"

// S3Config holds the S3 or MinIO blob settings
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	DBDriver                string
	MongoURI                string
	MongoDB                 string
	MongoTransactions       bool
	PostgresURL             string
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	JWTSecret               string
	TokenTTL                time.Duration
	LockTTL                 time.Duration
	CORSOrigins             []string
	BlobBackend             string
	S3                      S3Config
	FirebaseCredentialsPath string
	FirebaseBucket          string
	MetricsPort             string
	AdminEmails             []string
	RateLimitPerMinute      int
}

// IsDevelopment reports whether ENV is development
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads the configuration from the environment, after loading a .env file if present
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_DRIVER", "mongo")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "campustrack")
	v.SetDefault("MONGO_TRANSACTIONS", false)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("LOCK_TTL", "30s")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("BLOB_BACKEND", "s3")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_PUBLIC_URL", "")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("FIREBASE_BUCKET", "")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("ADMIN_EMAILS", "")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	return v
}

func load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:              v.GetString("PORT"),
		Env:               v.GetString("ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		MongoURI:          v.GetString("MONGO_URI"),
		MongoDB:           v.GetString("MONGO_DB"),
		MongoTransactions: v.GetBool("MONGO_TRANSACTIONS"),
		PostgresURL:       v.GetString("POSTGRES_URL"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		LockTTL:           v.GetDuration("LOCK_TTL"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		BlobBackend:       strings.ToLower(v.GetString("BLOB_BACKEND")),
		S3: S3Config{
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			PublicURL: v.GetString("S3_PUBLIC_URL"),
		},
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		FirebaseBucket:          v.GetString("FIREBASE_BUCKET"),
		MetricsPort:             v.GetString("METRICS_PORT"),
		AdminEmails:             splitList(v.GetString("ADMIN_EMAILS")),
		RateLimitPerMinute:      v.GetInt("RATE_LIMIT_PER_MINUTE"),
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable not set")
		}
		cfg.JWTSecret = devJWTSecret
	}
	switch cfg.DBDriver {
	case "mongo", "memory":
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	switch cfg.BlobBackend {
	case "s3", "firebase", "memory":
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
