package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port         string
	Environment  string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string

	JWTSecret     string
	JWKSURL       string
	TokenTTL      time.Duration
	VerifyCodeTTL time.Duration

	// BookingMode is "legacy" or "atomic".
	BookingMode string

	UploadProvider      string
	SupabaseURL         string
	SupabaseServiceKey  string
	SupabaseBucket      string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	ResendAPIKey string
	EmailFrom    string

	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:         getEnvWithDefault("PORT", "8080"),
		Environment:  getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:     getEnvWithDefault("LOG_LEVEL", "info"),
		ReadTimeout:  getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getDurationEnv("WRITE_TIMEOUT", 15*time.Second),

		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase: getEnvWithDefault("MONGODB_DATABASE", "gatherly"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWKSURL:       os.Getenv("JWKS_URL"),
		TokenTTL:      getDurationEnv("TOKEN_TTL", 24*time.Hour),
		VerifyCodeTTL: getDurationEnv("VERIFY_CODE_TTL", time.Hour),

		BookingMode: strings.ToLower(getEnvWithDefault("BOOKING_MODE", "legacy")),

		UploadProvider:      strings.ToLower(getEnvWithDefault("UPLOAD_PROVIDER", "supabase")),
		SupabaseURL:         os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey:  os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:      getEnvWithDefault("SUPABASE_BUCKET", "avatar"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnvWithDefault("CLOUDINARY_FOLDER", "gatherly"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnvWithDefault("EMAIL_FROM", "Gatherly <onboarding@resend.dev>"),

		AllowedOrigins: splitList(getEnvWithDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.BookingMode {
	case "legacy", "atomic":
	default:
		return nil, fmt.Errorf("BOOKING_MODE must be legacy or atomic, got %q", cfg.BookingMode)
	}
	switch cfg.UploadProvider {
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for supabase uploads")
		}
	case "cloudinary":
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for cloudinary uploads")
		}
	default:
		return nil, fmt.Errorf("UPLOAD_PROVIDER must be supabase or cloudinary, got %q", cfg.UploadProvider)
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv falls back to defaultValue when the variable is unset or
// not a valid time.Duration.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
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

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
