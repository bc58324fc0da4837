package capture

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestSession(t *testing.T, rt roundTripFunc) *discordgo.Session {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if rt != nil {
		s.Client = &http.Client{Transport: rt}
	}
	return s
}

func TestUserVoiceChannelID_UsesStateCacheFirst(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected REST call: %s %s", req.Method, req.URL.String())
		return nil, nil
	})
	if err := s.State.GuildAdd(&discordgo.Guild{
		ID: "guild-1",
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "user-1"},
		},
	}); err != nil {
		t.Fatalf("failed to add guild to state: %v", err)
	}

	channelID, err := userVoiceChannelID(s, "guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "vc-1" {
		t.Fatalf("expected vc-1, got %q", channelID)
	}
}

func TestUserVoiceChannelID_FallsBackToREST(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/guilds/guild-1/voice-states/user-1") {
			t.Fatalf("unexpected request path: %s", req.URL.Path)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body: io.NopCloser(strings.NewReader(
				`{"guild_id":"guild-1","channel_id":"vc-rest","user_id":"user-1","session_id":"x","deaf":false,"mute":false,"self_deaf":false,"self_mute":false,"self_video":false,"suppress":false}`,
			)),
			Header: make(http.Header),
		}, nil
	})

	channelID, err := userVoiceChannelID(s, "guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "vc-rest" {
		t.Fatalf("expected vc-rest, got %q", channelID)
	}
}

func TestUserVoiceChannelID_EmptyOnNotFound(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Body:       io.NopCloser(strings.NewReader(`{"message":"Unknown Voice State","code":10065}`)),
			Header:     make(http.Header),
		}, nil
	})

	channelID, err := userVoiceChannelID(s, "guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "" {
		t.Fatalf("expected empty channel id, got %q", channelID)
	}
}

type fakeMixer struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (m *fakeMixer) WriteOpusPacket(_ string, packet []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, packet)
}

func (m *fakeMixer) ReadMixedPCM(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return 0, nil
	}
	n := copy(buf, m.frames[0])
	m.frames = m.frames[1:]
	return n, nil
}

func (m *fakeMixer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func TestDiscordStream_ReadChunk(t *testing.T) {
	mixer := &fakeMixer{}
	closed := 0
	s := newDiscordStream(mixer, func() error {
		closed++
		mixer.Close()
		return nil
	})

	go func() {
		time.Sleep(30 * time.Millisecond)
		mixer.WriteOpusPacket("user-1", []byte{1, 2, 3, 4})
	}()
	chunk, err := s.ReadChunk(context.Background())
	if err != nil {
		t.Fatalf("ReadChunk returned error: %v", err)
	}
	if len(chunk) != 4 {
		t.Fatalf("unexpected chunk: %v", chunk)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := s.ReadChunk(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error on an idle channel, got %v", err)
	}

	_ = s.Close()
	_ = s.Close()
	if closed != 1 || !mixer.closed {
		t.Fatalf("expected a single close, got %d", closed)
	}
}

func TestNewDiscordDevice_Validates(t *testing.T) {
	if _, err := NewDiscordDevice(DiscordConfig{Token: "t"}); err == nil {
		t.Fatal("expected error without guild id")
	}
	if _, err := NewDiscordDevice(DiscordConfig{Token: "t", GuildID: "g"}); err == nil {
		t.Fatal("expected error without channel or speaker")
	}
	d, err := NewDiscordDevice(DiscordConfig{Token: "t", GuildID: "g", SpeakerUserID: "u"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f := d.Format(); f.SampleRate != 48000 || f.Channels != 2 {
		t.Fatalf("unexpected format: %s", f)
	}
}
