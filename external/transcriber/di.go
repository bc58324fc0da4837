package transcriber

import (
	"fmt"

	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/foxseedlab/koecheck/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		c := do.MustInvoke[*config.Config](i)
		switch c.Transcriber {
		case config.TranscriberGoogle:
			return NewCloudSpeechTranscriber(CloudSpeechConfig{
				ProjectID:       c.GoogleCloudProjectID,
				CredentialsJSON: c.GoogleCloudCredentialsJSON,
				Location:        c.GoogleCloudSpeechLocation,
				Model:           c.GoogleCloudSpeechModel,
			}), nil
		case config.TranscriberOpenAI:
			return NewWhisperTranscriber(WhisperConfig{
				APIKey: c.OpenAIAPIKey,
				Model:  c.OpenAITranscribeModel,
			}), nil
		default:
			return nil, fmt.Errorf("unknown transcriber %q", c.Transcriber)
		}
	})
}
