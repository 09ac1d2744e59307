package session

import (
	"context"

	"github.com/avoran/jobscout/internal/adzuna"
	"github.com/avoran/jobscout/internal/matching"
	"go.uber.org/zap"
)

// Session is the single writer of a search session's state. Every mutation is
// followed by a full re-save of the aggregate; score merges are discarded when
// their generation no longer matches the current search.
type Session struct {
	store  Store
	logger *zap.Logger

	state       *State
	generation  uint64
	sortEnabled bool
}

// Attach restores a session from the store, falling back to a fresh empty
// state when nothing usable is persisted.
func Attach(ctx context.Context, store Store, logger *zap.Logger) *Session {
	s := &Session{
		store:  store,
		logger: logger,
		state:  NewState(),
	}

	restored, err := store.Load(ctx)
	if err != nil {
		logger.Warn("loading persisted session failed, starting fresh", zap.Error(err))
		return s
	}

	if restored != nil {
		s.state = restored
		logger.Info("restored session state",
			zap.Int("jobs", restored.Jobs.Len()),
			zap.Int("scores", len(restored.Scores)),
			zap.Int("saved", len(restored.SavedJobIDs)),
		)
	}

	return s
}

// Generation identifies the current search; deltas tagged with an older value
// are stale and must be dropped on merge.
func (s *Session) Generation() uint64 { return s.generation }

func (s *Session) Filters() *adzuna.SearchFilters { return s.state.Filters }

func (s *Session) Jobs() adzuna.Jobs { return s.state.Jobs }

func (s *Session) Scores() matching.ScoreMap { return s.state.Scores }

// StartSearch replaces the job list for a new search, resets the score map and
// returns the generation tag the caller must present when merging scores. The
// saved set survives: archived applications exist regardless of the search
// that found them.
func (s *Session) StartSearch(ctx context.Context, filters *adzuna.SearchFilters, jobs adzuna.Jobs) uint64 {
	s.generation++
	s.state.Filters = filters
	s.state.Jobs = jobs
	s.state.Scores = matching.ScoreMap{}
	s.persist(ctx)

	return s.generation
}

// MergeScores folds a batch delta into the score map. The merge builds a
// replacement map so readers never observe a half-applied delta. Returns false
// when the delta belongs to a superseded search.
func (s *Session) MergeScores(ctx context.Context, generation uint64, delta matching.ScoreMap) bool {
	if generation != s.generation {
		s.logger.Warn("discarding stale score delta",
			zap.Uint64("delta_generation", generation),
			zap.Uint64("current_generation", s.generation),
			zap.Int("dropped_scores", len(delta)),
		)
		return false
	}

	if len(delta) == 0 {
		return true
	}

	merged := make(matching.ScoreMap, len(s.state.Scores)+len(delta))
	for id, score := range s.state.Scores {
		merged[id] = score
	}
	for id, score := range delta {
		merged[id] = score
	}
	s.state.Scores = merged
	s.persist(ctx)

	return true
}

// MarkSaved records a successfully archived job.
func (s *Session) MarkSaved(ctx context.Context, jobID string) {
	s.state.SavedJobIDs[jobID] = struct{}{}
	s.persist(ctx)
}

func (s *Session) IsSaved(jobID string) bool {
	_, saved := s.state.SavedJobIDs[jobID]
	return saved
}

// SetSorted toggles the ranked view. View preference is per run and not
// persisted with the state.
func (s *Session) SetSorted(enabled bool) { s.sortEnabled = enabled }

func (s *Session) Sorted() bool { return s.sortEnabled }

// View returns the jobs in presentation order without mutating the canonical
// list.
func (s *Session) View() adzuna.Jobs {
	return matching.Rank(s.state.Jobs, s.state.Scores, s.sortEnabled)
}

// persist is best-effort: the session store is a cache, losing it costs a
// re-search, not data.
func (s *Session) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.state); err != nil {
		s.logger.Warn("persisting session state failed", zap.Error(err))
	}
}
