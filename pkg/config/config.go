package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported post stores
const (
	PostStorePostgres = "postgres"
	PostStoreMongo    = "mongo"
)

type Config struct {
	Port                    string
	Env                     string
	JWTSecret               string
	AccessTokenTTL          time.Duration
	BcryptCost              int
	PostgresConnStr         string
	PostStore               string
	MongoURI                string
	MongoDatabase           string
	UploadDir               string
	MaxUploadSize           string
	FirebaseCredentialsPath string
	CORSAllowOrigins        []string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		PostgresConnStr:         os.Getenv("POSTGRES_CONN_STR"),
		PostStore:               strings.ToLower(getEnv("POST_STORE", PostStorePostgres)),
		MongoURI:                os.Getenv("MONGO_URI"),
		MongoDatabase:           getEnv("MONGO_DATABASE", "blogi"),
		UploadDir:               getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize:           getEnv("MAX_UPLOAD_SIZE", "10M"),
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		CORSAllowOrigins:        splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}
	if cfg.PostgresConnStr == "" {
		return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}

	minutes, err := strconv.Atoi(getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "30"))
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer")
	}
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cfg.BcryptCost, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("BCRYPT_COST must be an integer: %w", err)
		}
	}

	switch cfg.PostStore {
	case PostStorePostgres:
	case PostStoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unknown POST_STORE %q", cfg.PostStore)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
