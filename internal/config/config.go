package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	TranscriberGoogle = "google"
	TranscriberOpenAI = "openai"
)

type Config struct {
	Env                        string
	HTTPAddr                   string
	MaxUploadBytes             int64
	Transcriber                string
	ProviderTimeout            time.Duration
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	OpenAIAPIKey               string
	OpenAITranscribeModel      string
	DatabaseURL                string
	VerificationWebhookURL     string
	NATSURL                    string
	NATSSubject                string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.DatabaseURL != "" && c.DatabaseDriver() == "" {
		return fmt.Errorf("DATABASE_URL must start with postgres://, postgresql:// or sqlite:")
	}
	if c.NATSURL != "" && c.NATSSubject == "" {
		return fmt.Errorf("NATS_SUBJECT is required when NATS_URL is set")
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	fields := []requiredEnvField{
		{name: "HTTP_ADDR", value: c.HTTPAddr},
	}
	switch c.Transcriber {
	case TranscriberGoogle:
		fields = append(fields,
			requiredEnvField{name: "GOOGLE_CLOUD_PROJECT_ID", value: c.GoogleCloudProjectID},
			requiredEnvField{name: "GOOGLE_CLOUD_CREDENTIALS_JSON", value: c.GoogleCloudCredentialsJSON},
			requiredEnvField{name: "GOOGLE_CLOUD_SPEECH_LOCATION", value: c.GoogleCloudSpeechLocation},
		)
	case TranscriberOpenAI:
		fields = append(fields,
			requiredEnvField{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey},
			requiredEnvField{name: "OPENAI_TRANSCRIBE_MODEL", value: c.OpenAITranscribeModel},
		)
	default:
		// An unknown backend reports as a missing field with the accepted values.
		fields = append(fields, requiredEnvField{name: "TRANSCRIBER (google|openai)", value: ""})
	}
	return fields
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DatabaseDriver derives the verification log backend from DATABASE_URL.
func (c *Config) DatabaseDriver() string {
	switch {
	case c.DatabaseURL == "":
		return ""
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(c.DatabaseURL, "sqlite:"):
		return "sqlite"
	default:
		return ""
	}
}

// SQLitePath strips the sqlite: scheme from DATABASE_URL.
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(strings.TrimPrefix(c.DatabaseURL, "sqlite:"), "//")
}
