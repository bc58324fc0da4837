package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/foxseedlab/koecheck/internal/audio"
	"github.com/foxseedlab/koecheck/internal/capture"
)

const mixerPollInterval = discordFrameMs * time.Millisecond

type DiscordConfig struct {
	Token     string
	GuildID   string
	ChannelID string
	// SpeakerUserID limits capture to one member; it also locates the voice
	// channel when ChannelID is empty.
	SpeakerUserID string
}

// DiscordDevice joins a voice channel and captures the mixed speakers as
// 48 kHz stereo PCM.
type DiscordDevice struct {
	cfg  DiscordConfig
	busy atomic.Bool
}

func NewDiscordDevice(cfg DiscordConfig) (*DiscordDevice, error) {
	if cfg.Token == "" || cfg.GuildID == "" {
		return nil, fmt.Errorf("discord token and guild id are required")
	}
	if cfg.ChannelID == "" && cfg.SpeakerUserID == "" {
		return nil, fmt.Errorf("discord voice channel id or speaker user id is required")
	}
	return &DiscordDevice{cfg: cfg}, nil
}

func (d *DiscordDevice) Format() audio.Format {
	return audio.Format{SampleRate: discordSampleRate, Channels: discordChannels}
}

func (d *DiscordDevice) Open(_ context.Context) (capture.Stream, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return nil, capture.ErrDeviceBusy
	}
	stream, err := d.open()
	if err != nil {
		d.busy.Store(false)
		return nil, err
	}
	return stream, nil
}

func (d *DiscordDevice) open() (*discordStream, error) {
	mixer, err := newOpusMixer()
	if err != nil {
		return nil, err
	}

	s, err := discordgo.New("Bot " + d.cfg.Token)
	if err != nil {
		mixer.Close()
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuildVoiceStates)
	s.State.TrackVoice = true
	if err := s.Open(); err != nil {
		mixer.Close()
		return nil, fmt.Errorf("connect discord gateway: %w", err)
	}

	channelID := d.cfg.ChannelID
	if channelID == "" {
		channelID, err = userVoiceChannelID(s, d.cfg.GuildID, d.cfg.SpeakerUserID)
		if err == nil && channelID == "" {
			err = fmt.Errorf("user %s is not in a voice channel", d.cfg.SpeakerUserID)
		}
		if err != nil {
			_ = s.Close()
			mixer.Close()
			return nil, fmt.Errorf("locate voice channel: %w", err)
		}
	}

	vc, err := s.ChannelVoiceJoin(d.cfg.GuildID, channelID, true, false)
	if err != nil {
		_ = s.Close()
		mixer.Close()
		return nil, fmt.Errorf("join voice channel %s: %w", channelID, err)
	}
	slog.Info("joined discord voice channel", "guild_id", d.cfg.GuildID, "channel_id", channelID)

	done := make(chan struct{})
	go receiveOpus(vc, mixer, d.cfg.SpeakerUserID, done)

	return newDiscordStream(mixer, func() error {
		close(done)
		var errs []error
		if err := vc.Disconnect(); err != nil {
			errs = append(errs, fmt.Errorf("leave voice channel: %w", err))
		}
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close discord session: %w", err))
		}
		mixer.Close()
		d.busy.Store(false)
		return errors.Join(errs...)
	}), nil
}

func receiveOpus(vc *discordgo.VoiceConnection, mixer opusMixer, speakerUserID string, done <-chan struct{}) {
	if vc.OpusRecv == nil {
		return
	}
	ssrcToUser := make(map[uint32]string)
	var mu sync.RWMutex
	vc.AddHandler(func(_ *discordgo.VoiceConnection, vs *discordgo.VoiceSpeakingUpdate) {
		mu.Lock()
		if vs.Speaking {
			ssrcToUser[uint32(vs.SSRC)] = vs.UserID
		}
		mu.Unlock()
	})
	for {
		select {
		case <-done:
			return
		case p, ok := <-vc.OpusRecv:
			if !ok {
				return
			}
			if p == nil || len(p.Opus) == 0 {
				continue
			}
			mu.RLock()
			userID := ssrcToUser[p.SSRC]
			mu.RUnlock()
			if speakerUserID != "" && userID != speakerUserID {
				continue
			}
			if userID == "" {
				userID = strconv.FormatUint(uint64(p.SSRC), 10)
			}
			mixer.WriteOpusPacket(userID, p.Opus)
		}
	}
}

type discordStream struct {
	mixer     opusMixer
	closeFn   func() error
	closeOnce sync.Once
	closeErr  error
}

func newDiscordStream(mixer opusMixer, closeFn func() error) *discordStream {
	return &discordStream{mixer: mixer, closeFn: closeFn}
}

// ReadChunk returns the next mixed 20 ms frame. Discord sends nothing while
// nobody speaks, so silent stretches produce no chunks.
func (s *discordStream) ReadChunk(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(mixerPollInterval)
	defer ticker.Stop()
	buf := make([]byte, discordFrameSamples*2)
	for {
		n, err := s.mixer.ReadMixedPCM(buf)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return buf[:n], nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *discordStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.closeFn()
	})
	return s.closeErr
}

// userVoiceChannelID looks in the state cache first and falls back to the
// REST API, which answers even before the cache is warm.
func userVoiceChannelID(s *discordgo.Session, guildID, userID string) (string, error) {
	if s.State != nil {
		vs, err := s.State.VoiceState(guildID, userID)
		if err == nil && vs != nil {
			return vs.ChannelID, nil
		}
	}
	vs, err := s.UserVoiceState(guildID, userID)
	if err != nil {
		if isRESTNotFound(err) {
			return "", nil
		}
		return "", err
	}
	if vs == nil {
		return "", nil
	}
	return vs.ChannelID, nil
}

func isRESTNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	return restErr.Response.StatusCode == http.StatusNotFound
}
