// Package archive turns a scored job into a persisted, tailored application
// record.
package archive

import (
	"context"
	"strings"
	"time"

	"github.com/avoran/jobscout/internal/adzuna"
	"github.com/avoran/jobscout/internal/ai"
	"github.com/avoran/jobscout/internal/faults"
	"go.uber.org/zap"
)

// Record is one archived application. CreatedAt is stamped by the store.
type Record struct {
	ID              string
	JobTitle        string
	Company         string
	JobDescription  string
	ApplicationLink string
	TailoredResume  string
	CoverLetter     string
	Language        string
	MatchingScore   int
	MatchingSkills  []string
	LackingSkills   []string
	Applied         bool
	CreatedAt       time.Time
}

// RecordStore persists application records.
type RecordStore interface {
	Insert(ctx context.Context, record *Record) (string, error)
}

type Archiver struct {
	tailor   ai.Tailor
	store    RecordStore
	logger   *zap.Logger
	language string
}

func New(tailor ai.Tailor, store RecordStore, logger *zap.Logger, language string) *Archiver {
	if language = strings.TrimSpace(language); language == "" {
		language = "en"
	}

	return &Archiver{
		tailor:   tailor,
		store:    store,
		logger:   logger,
		language: language,
	}
}

// Archive tailors the resume for the job and persists the application record.
// It returns the new record id only after the write succeeds; the caller must
// not mark the job as saved before that. No dedup happens here: archiving the
// same job twice produces two records, the saved set only gates the action in
// the surrounding prompt.
func (a *Archiver) Archive(ctx context.Context, job *adzuna.Job, score *ai.MatchScore, resume string) (string, error) {
	if job == nil {
		return "", faults.New(faults.Validation, "job is required")
	}
	if strings.TrimSpace(resume) == "" {
		return "", faults.New(faults.Validation, "resume must not be empty")
	}

	tailored, err := a.tailor.Tailor(ctx, resume, job.Description, a.language)
	if err != nil {
		return "", err
	}

	record := &Record{
		JobTitle:        job.Title,
		Company:         job.Company,
		JobDescription:  job.Description,
		ApplicationLink: job.URL,
		TailoredResume:  tailored.Resume,
		CoverLetter:     tailored.CoverLetter,
		Language:        a.language,
		MatchingScore:   tailored.MatchingScore,
		MatchingSkills:  tailored.MatchingSkills,
		LackingSkills:   tailored.LackingSkills,
	}

	if tailored.JobTitle != "" {
		record.JobTitle = tailored.JobTitle
	}

	// The score already shown to the user wins over the tailoring run's own
	// estimate, so the archived record matches what was on screen.
	if score != nil {
		record.MatchingScore = score.Score
		record.MatchingSkills = score.MatchingSkills
		record.LackingSkills = score.LackingSkills
	}

	id, err := a.store.Insert(ctx, record)
	if err != nil {
		return "", err
	}

	a.logger.Info("archived application",
		zap.String("record_id", id),
		zap.String("job_id", job.ID),
		zap.String("job_title", record.JobTitle),
		zap.Int("matching_score", record.MatchingScore),
	)

	return id, nil
}
