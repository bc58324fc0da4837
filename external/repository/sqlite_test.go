package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/foxseedlab/koecheck/internal/repository"
)

func TestSQLiteRepository_InsertAndList(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "data", "koecheck.db"))
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	defer repo.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inputs := []repository.InsertVerificationInput{
		{
			ID: "a", Language: "English", LanguageCode: "en-US", ReferenceText: "hello world",
			RecognizedText: "Hello World", Matched: true, AudioBytes: 32044,
			AudioDuration: time.Second, ProviderLatency: 850 * time.Millisecond, CreatedAt: base,
		},
		{
			ID: "b", Language: "Hindi", LanguageCode: "hi-IN", ReferenceText: "test",
			FailureKind: "no_speech", FailureDetail: "no speech", AudioBytes: 44,
			CreatedAt: base.Add(time.Minute),
		},
	}
	for _, in := range inputs {
		if err := repo.InsertVerification(ctx, in); err != nil {
			t.Fatalf("InsertVerification returned error: %v", err)
		}
	}
	// Duplicate ids are ignored.
	if err := repo.InsertVerification(ctx, inputs[0]); err != nil {
		t.Fatalf("duplicate insert returned error: %v", err)
	}

	list, err := repo.ListRecentVerifications(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentVerifications returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(list))
	}
	if list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("rows are not newest first: %s, %s", list[0].ID, list[1].ID)
	}
	a := list[1]
	if !a.Matched || a.RecognizedText != "Hello World" || a.AudioDuration != time.Second || a.ProviderLatency != 850*time.Millisecond {
		t.Fatalf("unexpected row: %+v", a)
	}
	if !a.CreatedAt.Equal(base) {
		t.Fatalf("unexpected created_at: %s", a.CreatedAt)
	}
	if list[0].FailureKind != "no_speech" || list[0].Matched {
		t.Fatalf("unexpected row: %+v", list[0])
	}

	limited, err := repo.ListRecentVerifications(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit not applied: %d rows, err=%v", len(limited), err)
	}
}

func TestDisabledRepository(t *testing.T) {
	repo := NewDisabledRepository()
	if err := repo.InsertVerification(context.Background(), repository.InsertVerificationInput{ID: "x"}); err != nil {
		t.Fatalf("insert must be a no-op, got %v", err)
	}
	if _, err := repo.ListRecentVerifications(context.Background(), 5); !errors.Is(err, repository.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
