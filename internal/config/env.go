package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays environment variables onto the Config. Unset or empty
// variables leave the current values untouched. Variable names mirror the
// JSON keys in upper snake case.
func parseEnv(config *Config) {
	envString(&config.Addr, "ADDRESS")
	envString(&config.PublicBaseURL, "PUBLIC_BASE_URL")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SessionSecret, "SESSION_SECRET")
	envString(&config.OperatorEmail, "OPERATOR_EMAIL")
	envString(&config.EmailFrom, "EMAIL_FROM")
	envString(&config.ResendAPIKey, "RESEND_API_KEY")
	envString(&config.GoogleClientID, "GOOGLE_CLIENT_ID")
	envString(&config.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	envString(&config.GoogleRedirectURL, "GOOGLE_REDIRECT_URL")
	envString(&config.S3AccessKey, "S3_ACCESS_KEY")
	envString(&config.S3SecretKey, "S3_SECRET_KEY")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.Environment, "ENVIRONMENT")

	if v := os.Getenv("SESSION_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionValidity = d
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.BcryptCost = n
		}
	}
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
