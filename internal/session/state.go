// Package session holds one user's search state and persists it across
// restarts within the session window.
package session

import (
	"encoding/json"
	"sort"

	"github.com/avoran/jobscout/internal/adzuna"
	"github.com/avoran/jobscout/internal/ai"
	"github.com/avoran/jobscout/internal/matching"
)

// State aggregates everything a search session accumulates. It is owned by a
// single writer; stores only serialize and deserialize it.
type State struct {
	Filters     *adzuna.SearchFilters
	Jobs        adzuna.Jobs
	Scores      matching.ScoreMap
	SavedJobIDs map[string]struct{}
}

// NewState returns empty defaults safe to mutate.
func NewState() *State {
	return &State{
		Filters:     &adzuna.SearchFilters{},
		Jobs:        adzuna.Jobs{},
		Scores:      matching.ScoreMap{},
		SavedJobIDs: map[string]struct{}{},
	}
}

// scoreEntry flattens the score map for JSON, which has no non-trivial map
// keys worth trusting across serializers.
type scoreEntry struct {
	JobID string         `json:"jobId"`
	Score *ai.MatchScore `json:"score"`
}

type stateBlob struct {
	Filters     json.RawMessage `json:"filters,omitempty"`
	Jobs        json.RawMessage `json:"jobs,omitempty"`
	Scores      json.RawMessage `json:"scores,omitempty"`
	SavedJobIDs json.RawMessage `json:"savedJobIds,omitempty"`
}

// Encode serializes the state with the score map as explicit pairs and the
// saved set as a sorted array.
func Encode(state *State) ([]byte, error) {
	if state == nil {
		state = NewState()
	}

	scores := make([]scoreEntry, 0, len(state.Scores))
	for _, job := range state.Jobs {
		if score, ok := state.Scores[job.ID]; ok {
			scores = append(scores, scoreEntry{JobID: job.ID, Score: score})
		}
	}
	// Stale entries whose job left the list are still persisted; the
	// generation counter, not serialization, guards against their reuse.
	for id, score := range state.Scores {
		if state.Jobs.FindByID(id) == nil {
			scores = append(scores, scoreEntry{JobID: id, Score: score})
		}
	}

	saved := make([]string, 0, len(state.SavedJobIDs))
	for id := range state.SavedJobIDs {
		saved = append(saved, id)
	}
	sort.Strings(saved)

	return json.Marshal(map[string]any{
		"filters":     state.Filters,
		"jobs":        state.Jobs,
		"scores":      scores,
		"savedJobIds": saved,
	})
}

// Decode rebuilds a State from a serialized blob. Decoding is tolerant field
// by field: a corrupt or missing field falls back to its empty default
// instead of discarding the whole state. A blob that is not a JSON object at
// all yields nil.
func Decode(data []byte) *State {
	var blob stateBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil
	}

	state := NewState()

	if len(blob.Filters) > 0 {
		var filters adzuna.SearchFilters
		if err := json.Unmarshal(blob.Filters, &filters); err == nil {
			state.Filters = &filters
		}
	}

	if len(blob.Jobs) > 0 {
		var jobs adzuna.Jobs
		if err := json.Unmarshal(blob.Jobs, &jobs); err == nil && jobs != nil {
			state.Jobs = jobs
		}
	}

	if len(blob.Scores) > 0 {
		var entries []scoreEntry
		if err := json.Unmarshal(blob.Scores, &entries); err == nil {
			for _, entry := range entries {
				if entry.JobID == "" || entry.Score == nil {
					continue
				}
				state.Scores[entry.JobID] = entry.Score
			}
		}
	}

	if len(blob.SavedJobIDs) > 0 {
		var saved []string
		if err := json.Unmarshal(blob.SavedJobIDs, &saved); err == nil {
			for _, id := range saved {
				if id != "" {
					state.SavedJobIDs[id] = struct{}{}
				}
			}
		}
	}

	return state
}
