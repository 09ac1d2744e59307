package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/avoran/jobscout/internal/adzuna"
	"github.com/avoran/jobscout/internal/ai"
	"github.com/avoran/jobscout/internal/faults"
	"go.uber.org/zap"
)

type stubTailor struct {
	app   *ai.TailoredApplication
	err   error
	calls int
}

func (s *stubTailor) Tailor(_ context.Context, _, _, _ string) (*ai.TailoredApplication, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.app, nil
}

type stubStore struct {
	records []*Record
	err     error
}

func (s *stubStore) Insert(_ context.Context, record *Record) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.records = append(s.records, record)
	return "rec-1", nil
}

func sampleJob() *adzuna.Job {
	return &adzuna.Job{
		ID:          "j1",
		Title:       "Backend Developer",
		Company:     "Initech",
		Description: "Build services in Go.",
		URL:         "https://example.org/jobs/j1",
	}
}

func TestArchiveSuccess(t *testing.T) {
	tailor := &stubTailor{app: &ai.TailoredApplication{
		JobTitle:      "Senior Backend Developer",
		Resume:        "tailored",
		CoverLetter:   "letter",
		MatchingScore: 65,
	}}
	store := &stubStore{}
	archiver := New(tailor, store, zap.NewNop(), "en")

	score := ai.NewMatchScore(72, []string{"Go"}, []string{"Kafka"})

	id, err := archiver.Archive(context.Background(), sampleJob(), score, "resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id != "rec-1" {
		t.Fatalf("unexpected record id: %q", id)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(store.records))
	}

	record := store.records[0]
	if record.JobTitle != "Senior Backend Developer" {
		t.Fatalf("expected tailored job title, got %q", record.JobTitle)
	}

	// The on-screen score wins over the tailoring run's own estimate.
	if record.MatchingScore != 72 {
		t.Fatalf("expected score 72, got %d", record.MatchingScore)
	}

	if record.TailoredResume != "tailored" || record.CoverLetter != "letter" {
		t.Fatalf("tailored documents not persisted")
	}

	if record.Applied {
		t.Fatalf("new records must start with applied=false")
	}
}

func TestArchiveOracleFailure(t *testing.T) {
	tailor := &stubTailor{err: faults.New(faults.Oracle, "model unavailable")}
	store := &stubStore{}
	archiver := New(tailor, store, zap.NewNop(), "en")

	_, err := archiver.Archive(context.Background(), sampleJob(), nil, "resume")
	if err == nil {
		t.Fatalf("expected error from failing oracle")
	}

	if !faults.IsKind(err, faults.Oracle) {
		t.Fatalf("expected oracle fault, got %s", faults.KindOf(err))
	}

	if len(store.records) != 0 {
		t.Fatalf("no record may be written when tailoring fails")
	}
}

func TestArchivePersistenceFailure(t *testing.T) {
	tailor := &stubTailor{app: &ai.TailoredApplication{Resume: "tailored"}}
	store := &stubStore{err: faults.Wrap(faults.Persistence, "insert", errors.New("connection reset"))}
	archiver := New(tailor, store, zap.NewNop(), "en")

	_, err := archiver.Archive(context.Background(), sampleJob(), nil, "resume")
	if err == nil {
		t.Fatalf("expected persistence error")
	}

	if !faults.IsKind(err, faults.Persistence) {
		t.Fatalf("expected persistence fault, got %s", faults.KindOf(err))
	}
}

func TestArchiveRejectsEmptyResume(t *testing.T) {
	tailor := &stubTailor{}
	archiver := New(tailor, &stubStore{}, zap.NewNop(), "en")

	_, err := archiver.Archive(context.Background(), sampleJob(), nil, "  ")
	if err == nil {
		t.Fatalf("expected validation error")
	}

	if !faults.IsKind(err, faults.Validation) {
		t.Fatalf("expected validation fault, got %s", faults.KindOf(err))
	}

	if tailor.calls != 0 {
		t.Fatalf("oracle must not be invoked on invalid input")
	}
}
