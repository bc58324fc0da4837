package verify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/koecheck/internal/notify"
	"github.com/foxseedlab/koecheck/internal/repository"
)

const journalTimeout = 10 * time.Second

// Journal persists and announces outcomes after the response is written.
// Either collaborator may be nil.
type Journal struct {
	repo   repository.Repository
	sender notify.Sender
	wg     sync.WaitGroup
}

func NewJournal(repo repository.Repository, sender notify.Sender) *Journal {
	return &Journal{repo: repo, sender: sender}
}

// Record runs in the background; Wait blocks until every pending record is done.
func (j *Journal) Record(o Outcome) {
	if j.repo == nil && j.sender == nil {
		return
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()
		j.record(ctx, o)
	}()
}

func (j *Journal) Wait() {
	j.wg.Wait()
}

func (j *Journal) record(ctx context.Context, o Outcome) {
	input := repository.InsertVerificationInput{
		ID:              o.Request.ID,
		Language:        o.Request.Language,
		LanguageCode:    o.Language.Code(),
		ReferenceText:   o.Request.ReferenceText,
		RecognizedText:  o.Result.RecognizedText,
		Matched:         o.Result.Matched,
		AudioBytes:      len(o.Request.Waveform),
		AudioDuration:   o.AudioDuration,
		ProviderLatency: o.ProviderLatency,
		CreatedAt:       o.CompletedAt,
	}
	if o.Result.Failure != nil {
		input.FailureKind = string(o.Result.Failure.Kind)
		input.FailureDetail = o.Result.Failure.Detail
	}

	if j.repo != nil {
		if err := j.repo.InsertVerification(ctx, input); err != nil && !errors.Is(err, repository.ErrDisabled) {
			slog.Error("failed to store verification", "request_id", input.ID, "error", err)
		}
	}

	if j.sender != nil {
		event := notify.VerificationEvent{
			ID:             input.ID,
			Language:       input.Language,
			LanguageCode:   input.LanguageCode,
			ReferenceText:  input.ReferenceText,
			RecognizedText: input.RecognizedText,
			Matched:        input.Matched,
			FailureKind:    input.FailureKind,
			Error:          input.FailureDetail,
			AudioSeconds:   input.AudioDuration.Seconds(),
			OccurredAt:     input.CreatedAt,
		}
		if err := j.sender.SendVerification(ctx, event); err != nil {
			slog.Error("failed to send verification event", "request_id", input.ID, "error", err)
		}
	}
}
