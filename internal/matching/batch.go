// Package matching drives incremental resume/job scoring and the ranked view
// over its results.
package matching

import (
	"context"
	"errors"

	"github.com/avoran/jobscout/internal/adzuna"
	"github.com/avoran/jobscout/internal/ai"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScoreMap keys match scores by job id.
type ScoreMap map[string]*ai.MatchScore

// ErrNothingToScore reports that every job already has a score, so the caller
// can say "all jobs analyzed" instead of treating the batch as a failure.
var ErrNothingToScore = errors.New("all jobs are already scored")

const (
	defaultBatchLimit = 10
	defaultGroupSize  = 3
)

// Orchestrator scores unscored jobs in bounded concurrent groups.
type Orchestrator struct {
	scorer     ai.Scorer
	logger     *zap.Logger
	batchLimit int
	groupSize  int
}

func NewOrchestrator(scorer ai.Scorer, logger *zap.Logger, batchLimit, groupSize int) *Orchestrator {
	if batchLimit < 1 {
		batchLimit = defaultBatchLimit
	}
	if groupSize < 1 {
		groupSize = defaultGroupSize
	}

	return &Orchestrator{
		scorer:     scorer,
		logger:     logger,
		batchLimit: batchLimit,
		groupSize:  groupSize,
	}
}

// ScoreNextBatch scores up to the batch limit of jobs absent from scored,
// preserving their original order. Groups run strictly one after another; the
// calls inside a group run concurrently and results are attributed by job id.
// A failed job is logged, left out of the delta and stays eligible for the
// next invocation. The caller owns merging the returned delta.
func (o *Orchestrator) ScoreNextBatch(ctx context.Context, jobs adzuna.Jobs, resume string, scored ScoreMap) (ScoreMap, error) {
	pending := make(adzuna.Jobs, 0, o.batchLimit)
	for _, job := range jobs {
		if _, done := scored[job.ID]; done {
			continue
		}
		pending = append(pending, job)
		if len(pending) == o.batchLimit {
			break
		}
	}

	if len(pending) == 0 {
		return ScoreMap{}, ErrNothingToScore
	}

	delta := make(ScoreMap, len(pending))
	results := make([]*ai.MatchScore, len(pending))

	for start := 0; start < len(pending); start += o.groupSize {
		if err := ctx.Err(); err != nil {
			return delta, err
		}

		end := start + o.groupSize
		if end > len(pending) {
			end = len(pending)
		}

		// Group boundary: the next group never starts before every call in
		// this one has finished.
		group, groupCtx := errgroup.WithContext(ctx)
		for idx := start; idx < end; idx++ {
			group.Go(func() error {
				job := pending[idx]
				score, err := o.scorer.Score(groupCtx, resume, job.Description, job.Title)
				if err != nil {
					o.logger.Warn("scoring failed, job stays unscored",
						zap.String("job_id", job.ID),
						zap.String("job_title", job.Title),
						zap.Error(err),
					)
					return nil
				}
				results[idx] = score
				return nil
			})
		}

		// Goroutines swallow per-job failures, so this only syncs the group.
		_ = group.Wait()
	}

	for idx, job := range pending {
		if results[idx] != nil {
			delta[job.ID] = results[idx]
		}
	}

	o.logger.Info("batch scoring completed",
		zap.Int("scored", len(delta)),
		zap.Int("selected", len(pending)),
		zap.Int("already_scored", len(scored)),
	)

	return delta, nil
}
