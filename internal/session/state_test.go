package session

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/avoran/jobscout/internal/adzuna"
	"github.com/avoran/jobscout/internal/ai"
	"github.com/avoran/jobscout/internal/matching"
)

func sampleState() *State {
	state := NewState()
	state.Filters = &adzuna.SearchFilters{
		What:       "developer",
		Where:      "Montreal",
		Country:    "ca",
		MaxDaysOld: 14,
		Page:       2,
	}
	state.Jobs = adzuna.Jobs{
		{ID: "j1", Title: "Backend Developer", Company: "Initech", DatePosted: time.Date(2026, 7, 14, 9, 30, 0, 0, time.UTC)},
		{ID: "j2", Title: "Platform Engineer", Company: "Globex"},
	}
	state.Scores = matching.ScoreMap{
		"j1": ai.NewMatchScore(72, []string{"Go"}, []string{"Kafka"}),
	}
	state.SavedJobIDs = map[string]struct{}{"j2": {}}
	return state
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := sampleState()

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored := Decode(data)
	if restored == nil {
		t.Fatalf("expected state, got nil")
	}

	if !reflect.DeepEqual(restored.Filters, original.Filters) {
		t.Fatalf("filters mismatch: %+v vs %+v", restored.Filters, original.Filters)
	}

	if !reflect.DeepEqual(restored.Jobs, original.Jobs) {
		t.Fatalf("jobs mismatch")
	}

	if !reflect.DeepEqual(restored.Scores, original.Scores) {
		t.Fatalf("scores mismatch: %+v vs %+v", restored.Scores, original.Scores)
	}

	if !reflect.DeepEqual(restored.SavedJobIDs, original.SavedJobIDs) {
		t.Fatalf("saved set mismatch")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if Decode([]byte("{not json")) != nil {
		t.Fatalf("expected nil for unparseable blob")
	}
}

func TestDecodeToleratesPartialCorruption(t *testing.T) {
	// jobs present, scores corrupt, saved list missing entirely.
	blob := `{
		"jobs": [{"id": "j1", "title": "Backend Developer"}],
		"scores": {"this": "is not a pair list"}
	}`

	state := Decode([]byte(blob))
	if state == nil {
		t.Fatalf("expected state, got nil")
	}

	if state.Jobs.Len() != 1 || state.Jobs[0].ID != "j1" {
		t.Fatalf("expected intact jobs field, got %+v", state.Jobs)
	}

	if len(state.Scores) != 0 {
		t.Fatalf("expected empty scores for corrupt field, got %+v", state.Scores)
	}

	if len(state.SavedJobIDs) != 0 {
		t.Fatalf("expected empty saved set, got %+v", state.SavedJobIDs)
	}
}

func TestDecodeSkipsBrokenScoreEntries(t *testing.T) {
	blob := `{
		"scores": [
			{"jobId": "j1", "score": {"matchingScore": 50, "matchingSkills": [], "lackingSkills": []}},
			{"jobId": "", "score": {"matchingScore": 10}},
			{"jobId": "j3"}
		]
	}`

	state := Decode([]byte(blob))
	if len(state.Scores) != 1 {
		t.Fatalf("expected exactly one usable entry, got %d", len(state.Scores))
	}

	if state.Scores["j1"].Score != 50 {
		t.Fatalf("unexpected score: %d", state.Scores["j1"].Score)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil state from empty store")
	}

	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loaded == nil || loaded.Jobs.Len() != 2 {
		t.Fatalf("expected restored jobs, got %+v", loaded)
	}
}
