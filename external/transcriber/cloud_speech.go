package transcriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/foxseedlab/koecheck/internal/transcriber"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const speechAPIEndpointPort = 443

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Location        string
	Model           string
}

type recognizeClient interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

type CloudSpeechTranscriber struct {
	projectID string
	location  string
	model     string
	newClient func(ctx context.Context) (recognizeClient, error)
}

func NewCloudSpeechTranscriber(cfg CloudSpeechConfig) transcriber.Transcriber {
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "global"
	}
	t := &CloudSpeechTranscriber{
		projectID: cfg.ProjectID,
		location:  location,
		model:     strings.TrimSpace(cfg.Model),
	}
	t.newClient = func(ctx context.Context) (recognizeClient, error) {
		return newSpeechClient(ctx, cfg.CredentialsJSON, location)
	}
	return t
}

func newSpeechClient(ctx context.Context, credentialsJSON, location string) (recognizeClient, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}

	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", location, speechAPIEndpointPort)))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Transcribe sends the whole recording in one synchronous Recognize call.
func (t *CloudSpeechTranscriber) Transcribe(ctx context.Context, a transcriber.Audio, languageCode string) (string, error) {
	slog.Debug("calling cloud speech recognize", "location", t.location, "language_code", languageCode, "model", t.model, "pcm_bytes", len(a.PCM))

	client, err := t.newClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", transcriber.ErrUnavailable, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close cloud speech client", "error", err)
		}
	}()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location),
		Config: &speechpb.RecognitionConfig{
			Model:         t.model,
			LanguageCodes: []string{languageCode},
			DecodingConfig: &speechpb.RecognitionConfig_ExplicitDecodingConfig{
				ExplicitDecodingConfig: &speechpb.ExplicitDecodingConfig{
					Encoding:          speechpb.ExplicitDecodingConfig_LINEAR16,
					SampleRateHertz:   int32(a.SampleRate),
					AudioChannelCount: int32(a.Channels),
				},
			},
			Features: &speechpb.RecognitionFeatures{},
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: a.PCM},
	})
	if err != nil {
		return "", classifyCloudSpeechError(err)
	}

	parts := make([]string, 0, len(resp.GetResults()))
	for _, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		if text := strings.TrimSpace(alternatives[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", transcriber.ErrNoSpeech
	}
	return strings.Join(parts, " "), nil
}

func classifyCloudSpeechError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", transcriber.ErrTimeout, err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("cloud speech recognize: %w", err)
	}
	switch st.Code() {
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", transcriber.ErrTimeout, st.Message())
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", transcriber.ErrQuotaExceeded, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", transcriber.ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("cloud speech recognize failed (%s): %s", st.Code(), st.Message())
	}
}
