package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/koecheck/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env                        string        `env:"ENV" envDefault:"production"`
	HTTPAddr                   string        `env:"HTTP_ADDR" envDefault:":8000"`
	MaxUploadBytes             int64         `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`
	Transcriber                string        `env:"TRANSCRIBER" envDefault:"google"`
	ProviderTimeout            time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"30s"`
	GoogleCloudProjectID       string        `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string        `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string        `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string        `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"short"`
	OpenAIAPIKey               string        `env:"OPENAI_API_KEY"`
	OpenAITranscribeModel      string        `env:"OPENAI_TRANSCRIBE_MODEL" envDefault:"whisper-1"`
	DatabaseURL                string        `env:"DATABASE_URL"`
	VerificationWebhookURL     string        `env:"VERIFICATION_WEBHOOK_URL"`
	NATSURL                    string        `env:"NATS_URL"`
	NATSSubject                string        `env:"NATS_SUBJECT" envDefault:"koecheck.verifications"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load() (*internalconfig.Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
		slog.Debug("no .env file found; using process environment")
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		HTTPAddr:                   raw.HTTPAddr,
		MaxUploadBytes:             raw.MaxUploadBytes,
		Transcriber:                raw.Transcriber,
		ProviderTimeout:            raw.ProviderTimeout,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		OpenAIAPIKey:               raw.OpenAIAPIKey,
		OpenAITranscribeModel:      raw.OpenAITranscribeModel,
		DatabaseURL:                raw.DatabaseURL,
		VerificationWebhookURL:     raw.VerificationWebhookURL,
		NATSURL:                    raw.NATSURL,
		NATSSubject:                raw.NATSSubject,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
