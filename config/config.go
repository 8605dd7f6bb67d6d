package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/krishkalaria12/linegrade/validation"
)

// DefaultCameraToken is the shared secret cameras send in X-CONSTANT-TOKEN
// when CAMERA_TOKEN is not configured.
const DefaultCameraToken = "#camera#spesific#token#"

// Settings is the process-wide configuration, read once at startup.
type Settings struct {
	DatabaseDriver string `validate:"oneof=postgres sqlite"`
	DatabaseURL    string `validate:"required"`
	JWTSecret      string `validate:"required,min=16"`
	CameraToken    string `validate:"required"`
	Port           string `validate:"required,numeric"`
	AppURL         string `validate:"required,url"`

	StorageBackend string `validate:"oneof=local gcs"`
	MediaRoot      string `validate:"required_if=StorageBackend local"`
	GCSProjectID   string `validate:"required_if=StorageBackend gcs"`
	GCSBucketName  string `validate:"required_if=StorageBackend gcs"`

	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogFormat string `validate:"oneof=json console"`
}

// Load reads an optional .env file from the working directory, then the
// environment, and validates the result.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	s := &Settings{
		DatabaseDriver: strings.ToLower(Config("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    Config("DATABASE_URL"),
		JWTSecret:      Config("JWT_SECRET"),
		CameraToken:    Config("CAMERA_TOKEN", DefaultCameraToken),
		Port:           Config("PORT", "3000"),
		AppURL:         Config("APP_URL", "http://localhost:3000"),
		StorageBackend: strings.ToLower(Config("STORAGE_BACKEND", "local")),
		MediaRoot:      Config("MEDIA_ROOT", "./media"),
		GCSProjectID:   Config("GCS_PROJECT_ID"),
		GCSBucketName:  Config("GCS_BUCKET_NAME"),
		LogLevel:       strings.ToLower(Config("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(Config("LOG_FORMAT", "json")),
	}

	if err := validation.GetValidator().Struct(s); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return s, nil
}

// Config returns the value of envVar, or the first fallback when it is unset
// or blank.
func Config(envVar string, fallback ...string) string {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" && len(fallback) > 0 {
		return fallback[0]
	}

	return value
}

// ListenAddr is the address handed to fiber.App.Listen.
func (s *Settings) ListenAddr() string {
	return ":" + s.Port
}
