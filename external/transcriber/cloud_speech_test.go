package transcriber

import (
	"context"
	"errors"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/foxseedlab/koecheck/internal/transcriber"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type mockRecognizeClient struct {
	resp   *speechpb.RecognizeResponse
	err    error
	req    *speechpb.RecognizeRequest
	closed bool
}

func (m *mockRecognizeClient) Recognize(_ context.Context, req *speechpb.RecognizeRequest, _ ...gax.CallOption) (*speechpb.RecognizeResponse, error) {
	m.req = req
	return m.resp, m.err
}

func (m *mockRecognizeClient) Close() error {
	m.closed = true
	return nil
}

func newTestCloudSpeech(client *mockRecognizeClient) *CloudSpeechTranscriber {
	return &CloudSpeechTranscriber{
		projectID: "project-id",
		location:  "global",
		model:     "short",
		newClient: func(context.Context) (recognizeClient, error) { return client, nil },
	}
}

func result(text string) *speechpb.SpeechRecognitionResult {
	return &speechpb.SpeechRecognitionResult{
		Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: text}},
	}
}

var testAudio = transcriber.Audio{PCM: make([]byte, 320), SampleRate: 16000, Channels: 1}

func TestCloudSpeechTranscribe_JoinsResults(t *testing.T) {
	client := &mockRecognizeClient{resp: &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{result("hello"), result(" world "), {}},
	}}
	tr := newTestCloudSpeech(client)

	text, err := tr.Transcribe(context.Background(), testAudio, "hi-IN")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected transcript: %q", text)
	}
	if !client.closed {
		t.Fatal("client must be closed after the call")
	}
	if got := client.req.GetConfig().GetLanguageCodes(); len(got) != 1 || got[0] != "hi-IN" {
		t.Fatalf("unexpected language codes: %v", got)
	}
	dec := client.req.GetConfig().GetExplicitDecodingConfig()
	if dec.GetSampleRateHertz() != 16000 || dec.GetAudioChannelCount() != 1 || dec.GetEncoding() != speechpb.ExplicitDecodingConfig_LINEAR16 {
		t.Fatalf("unexpected decoding config: %+v", dec)
	}
	if client.req.GetRecognizer() != "projects/project-id/locations/global/recognizers/_" {
		t.Fatalf("unexpected recognizer: %q", client.req.GetRecognizer())
	}
}

func TestCloudSpeechTranscribe_NoSpeech(t *testing.T) {
	tr := newTestCloudSpeech(&mockRecognizeClient{resp: &speechpb.RecognizeResponse{}})
	if _, err := tr.Transcribe(context.Background(), testAudio, "en-US"); !errors.Is(err, transcriber.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestCloudSpeechTranscribe_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{err: status.Error(codes.ResourceExhausted, "quota"), want: transcriber.ErrQuotaExceeded},
		{err: status.Error(codes.Unavailable, "down"), want: transcriber.ErrUnavailable},
		{err: status.Error(codes.DeadlineExceeded, "slow"), want: transcriber.ErrTimeout},
		{err: context.DeadlineExceeded, want: transcriber.ErrTimeout},
	}
	for _, tc := range cases {
		tr := newTestCloudSpeech(&mockRecognizeClient{err: tc.err})
		if _, err := tr.Transcribe(context.Background(), testAudio, "en-US"); !errors.Is(err, tc.want) {
			t.Fatalf("error %v: expected %v, got %v", tc.err, tc.want, err)
		}
	}

	tr := newTestCloudSpeech(&mockRecognizeClient{err: status.Error(codes.InvalidArgument, "bad audio")})
	_, err := tr.Transcribe(context.Background(), testAudio, "en-US")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, sentinel := range []error{transcriber.ErrNoSpeech, transcriber.ErrQuotaExceeded, transcriber.ErrUnavailable, transcriber.ErrTimeout} {
		if errors.Is(err, sentinel) {
			t.Fatalf("invalid argument must not map to %v", sentinel)
		}
	}
}

func TestCloudSpeechTranscribe_ClientCreationFailure(t *testing.T) {
	tr := &CloudSpeechTranscriber{
		projectID: "project-id",
		location:  "global",
		newClient: func(context.Context) (recognizeClient, error) { return nil, errors.New("no credentials") },
	}
	if _, err := tr.Transcribe(context.Background(), testAudio, "en-US"); !errors.Is(err, transcriber.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
