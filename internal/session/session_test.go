package session

import (
	"context"
	"testing"

	"github.com/avoran/jobscout/internal/adzuna"
	"github.com/avoran/jobscout/internal/ai"
	"github.com/avoran/jobscout/internal/matching"
	"go.uber.org/zap"
)

func newTestSession(t *testing.T) (*Session, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return Attach(context.Background(), store, zap.NewNop()), store
}

func TestStartSearchResetsScores(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	gen := s.StartSearch(ctx, &adzuna.SearchFilters{What: "developer"}, adzuna.Jobs{{ID: "j1"}})
	s.MergeScores(ctx, gen, matching.ScoreMap{"j1": ai.NewMatchScore(60, nil, nil)})
	s.MarkSaved(ctx, "j1")

	next := s.StartSearch(ctx, &adzuna.SearchFilters{What: "engineer"}, adzuna.Jobs{{ID: "j1"}, {ID: "j2"}})
	if next != gen+1 {
		t.Fatalf("expected generation to increment, got %d after %d", next, gen)
	}

	if len(s.Scores()) != 0 {
		t.Fatalf("expected score map reset on new search, got %d entries", len(s.Scores()))
	}

	// Archived applications outlive the search that found them.
	if !s.IsSaved("j1") {
		t.Fatalf("expected saved set to survive a new search")
	}
}

func TestMergeScoresDropsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	stale := s.StartSearch(ctx, &adzuna.SearchFilters{}, adzuna.Jobs{{ID: "j1"}})
	s.StartSearch(ctx, &adzuna.SearchFilters{}, adzuna.Jobs{{ID: "j1"}})

	merged := s.MergeScores(ctx, stale, matching.ScoreMap{"j1": ai.NewMatchScore(99, nil, nil)})
	if merged {
		t.Fatalf("expected stale delta to be dropped")
	}

	if len(s.Scores()) != 0 {
		t.Fatalf("stale scores leaked into the map")
	}
}

func TestMergeScoresAccumulates(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	gen := s.StartSearch(ctx, &adzuna.SearchFilters{}, adzuna.Jobs{{ID: "j1"}, {ID: "j2"}})

	if !s.MergeScores(ctx, gen, matching.ScoreMap{"j1": ai.NewMatchScore(40, nil, nil)}) {
		t.Fatalf("expected merge to apply")
	}
	if !s.MergeScores(ctx, gen, matching.ScoreMap{"j2": ai.NewMatchScore(70, nil, nil)}) {
		t.Fatalf("expected merge to apply")
	}

	if len(s.Scores()) != 2 {
		t.Fatalf("expected both deltas merged, got %d", len(s.Scores()))
	}
}

func TestSessionPersistsAcrossAttach(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := Attach(ctx, store, zap.NewNop())
	gen := first.StartSearch(ctx, &adzuna.SearchFilters{What: "developer"}, adzuna.Jobs{{ID: "j1", Title: "Dev"}})
	first.MergeScores(ctx, gen, matching.ScoreMap{"j1": ai.NewMatchScore(81, []string{"Go"}, nil)})
	first.MarkSaved(ctx, "j1")

	second := Attach(ctx, store, zap.NewNop())
	if second.Jobs().Len() != 1 {
		t.Fatalf("expected restored job list")
	}

	if second.Scores()["j1"] == nil || second.Scores()["j1"].Score != 81 {
		t.Fatalf("expected restored score map, got %+v", second.Scores())
	}

	if !second.IsSaved("j1") {
		t.Fatalf("expected restored saved set")
	}

	if second.Filters().What != "developer" {
		t.Fatalf("expected restored filters, got %+v", second.Filters())
	}
}

func TestViewRanksWithoutMutating(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	gen := s.StartSearch(ctx, &adzuna.SearchFilters{}, adzuna.Jobs{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	s.MergeScores(ctx, gen, matching.ScoreMap{
		"a": ai.NewMatchScore(50, nil, nil),
		"c": ai.NewMatchScore(80, nil, nil),
	})

	if got := s.View(); got[0].ID != "a" {
		t.Fatalf("unsorted view must keep source order, got %s first", got[0].ID)
	}

	s.SetSorted(true)
	got := s.View()
	if got[0].ID != "c" || got[1].ID != "a" || got[2].ID != "b" {
		t.Fatalf("unexpected ranked view order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}

	if s.Jobs()[0].ID != "a" {
		t.Fatalf("canonical job list was mutated")
	}
}
