package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/flagx"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "168h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	Addr               string         `json:"addr"`
	PublicBaseURL      string         `json:"public_base_url"`
	DatabaseDSN        string         `json:"database_dsn"`
	SessionSecret      string         `json:"session_secret"`
	SessionValidity    timex.Duration `json:"session_validity"`
	BcryptCost         int            `json:"bcrypt_cost"`
	OperatorEmail      string         `json:"operator_email"`
	EmailFrom          string         `json:"email_from"`
	ResendAPIKey       string         `json:"resend_api_key"`
	GoogleClientID     string         `json:"google_client_id"`
	GoogleClientSecret string         `json:"google_client_secret"`
	GoogleRedirectURL  string         `json:"google_redirect_url"`
	S3AccessKey        string         `json:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	Environment        string         `json:"environment"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. Empty values in the
// file leave the current Config values untouched.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIfNotEmpty(&config.Addr, c.Addr)
	setIfNotEmpty(&config.PublicBaseURL, c.PublicBaseURL)
	setIfNotEmpty(&config.DatabaseDSN, c.DatabaseDSN)
	setIfNotEmpty(&config.SessionSecret, c.SessionSecret)
	setIfNotEmpty(&config.OperatorEmail, c.OperatorEmail)
	setIfNotEmpty(&config.EmailFrom, c.EmailFrom)
	setIfNotEmpty(&config.ResendAPIKey, c.ResendAPIKey)
	setIfNotEmpty(&config.GoogleClientID, c.GoogleClientID)
	setIfNotEmpty(&config.GoogleClientSecret, c.GoogleClientSecret)
	setIfNotEmpty(&config.GoogleRedirectURL, c.GoogleRedirectURL)
	setIfNotEmpty(&config.S3AccessKey, c.S3AccessKey)
	setIfNotEmpty(&config.S3SecretKey, c.S3SecretKey)
	setIfNotEmpty(&config.S3Bucket, c.S3Bucket)
	setIfNotEmpty(&config.S3Region, c.S3Region)
	setIfNotEmpty(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIfNotEmpty(&config.Environment, c.Environment)

	if c.SessionValidity.Duration > 0 {
		config.SessionValidity = time.Duration(c.SessionValidity.Duration)
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
