package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds every runtime setting. It is loaded once in main and passed
// explicitly to the components that need it.
type Env struct {
	// Database
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Redis
	RedisAddr string
	RedisPass string
	RedisDB   int

	// JWT
	SecretKey                       string
	AccessTokenExpireMinutes        int
	RefreshTokenExpireDays          int
	PasswordResetTokenExpireMinutes int

	// Passwords
	PasswordMinLength   int
	PasswordMaxLength   int
	PasswordHistorySize int
	BcryptCost          int

	// Password-reset rate limiting
	MaxResetAttempts   int
	BaseLockoutMinutes int
	MaxLockoutMinutes  int
	ResetWindowMinutes int

	// Email
	SMTPServer   string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	FrontendURL  string

	// PlantNet
	PlantNetAPIURL         string
	PlantNetAPIKey         string
	PlantNetMaxImages      int
	PlantNetMaxImageSize   int64
	PlantNetIncludeRelated bool
	PlantNetLanguage       string
	PlantNetNbResults      int

	// S3 storage
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3BucketName       string

	// Wikipedia
	WikipediaAPIURL string

	ServerAddr string
}

// LoadEnv reads .env (if present) and the process environment.
func LoadEnv() (*Env, error) {
	// Missing .env is fine in production, the environment is already set.
	_ = godotenv.Load()

	env := &Env{
		DBHost:     getEnv("POSTGRES_SERVER", "localhost"),
		DBUser:     getEnv("POSTGRES_USER", "postgres"),
		DBPassword: getEnv("POSTGRES_PASSWORD", ""),
		DBName:     getEnv("POSTGRES_DB", "gardenia"),
		DBPort:     getEnv("POSTGRES_PORT", "5432"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		RedisPass: getEnv("REDIS_PASSWORD", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		SecretKey:                       getEnv("SECRET_KEY", ""),
		AccessTokenExpireMinutes:        getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		RefreshTokenExpireDays:          getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 7),
		PasswordResetTokenExpireMinutes: getEnvInt("PASSWORD_RESET_TOKEN_EXPIRE_MINUTES", 60),

		PasswordMinLength:   getEnvInt("PASSWORD_MIN_LENGTH", 8),
		PasswordMaxLength:   getEnvInt("PASSWORD_MAX_LENGTH", 100),
		PasswordHistorySize: getEnvInt("PASSWORD_HISTORY_SIZE", 5),
		BcryptCost:          getEnvInt("BCRYPT_COST", 10),

		MaxResetAttempts:   getEnvInt("MAX_RESET_ATTEMPTS", 3),
		BaseLockoutMinutes: getEnvInt("BASE_LOCKOUT_MINUTES", 5),
		MaxLockoutMinutes:  getEnvInt("MAX_LOCKOUT_MINUTES", 60),
		ResetWindowMinutes: getEnvInt("RESET_WINDOW_MINUTES", 60),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", ""),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:8000"),

		PlantNetAPIURL:         getEnv("PLANTNET_API_URL", "https://my-api.plantnet.org/v2/identify/all"),
		PlantNetAPIKey:         getEnv("PLANTNET_API_KEY", ""),
		PlantNetMaxImages:      getEnvInt("PLANTNET_MAX_IMAGES", 5),
		PlantNetMaxImageSize:   getEnvInt64("PLANTNET_MAX_IMAGE_SIZE", 50*1024*1024),
		PlantNetIncludeRelated: getEnvBool("PLANTNET_INCLUDE_RELATED", true),
		PlantNetLanguage:       getEnv("PLANTNET_LANGUAGE", "es"),
		PlantNetNbResults:      getEnvInt("PLANTNET_NB_RESULTS", 5),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:       getEnv("S3_BUCKET_NAME", ""),

		WikipediaAPIURL: getEnv("WIKIPEDIA_API_URL", "https://es.wikipedia.org/api/rest_v1"),

		ServerAddr: getEnv("SERVER_ADDR", ":8000"),
	}

	return env, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
