package matching

import (
	"reflect"
	"testing"

	"github.com/avoran/jobscout/internal/adzuna"
	"github.com/avoran/jobscout/internal/ai"
)

func rankedIDs(jobs adzuna.Jobs) []string {
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	return ids
}

func TestRankDisabledIsIdentity(t *testing.T) {
	jobs := adzuna.Jobs{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	scores := ScoreMap{"b": ai.NewMatchScore(99, nil, nil)}

	ranked := Rank(jobs, scores, false)
	if !reflect.DeepEqual(rankedIDs(ranked), []string{"a", "b", "c"}) {
		t.Fatalf("expected identity, got %v", rankedIDs(ranked))
	}
}

func TestRankSortsDescendingUnscoredLast(t *testing.T) {
	jobs := adzuna.Jobs{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	scores := ScoreMap{
		"a": ai.NewMatchScore(50, nil, nil),
		"c": ai.NewMatchScore(80, nil, nil),
	}

	ranked := Rank(jobs, scores, true)
	if !reflect.DeepEqual(rankedIDs(ranked), []string{"c", "a", "b"}) {
		t.Fatalf("expected [c a b], got %v", rankedIDs(ranked))
	}

	// Input order untouched.
	if !reflect.DeepEqual(rankedIDs(jobs), []string{"a", "b", "c"}) {
		t.Fatalf("input was mutated: %v", rankedIDs(jobs))
	}
}

func TestRankIsStable(t *testing.T) {
	jobs := adzuna.Jobs{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	scores := ScoreMap{
		"a": ai.NewMatchScore(40, nil, nil),
		"c": ai.NewMatchScore(40, nil, nil),
	}

	ranked := Rank(jobs, scores, true)
	// Equal scores and both-unscored pairs keep their input order.
	if !reflect.DeepEqual(rankedIDs(ranked), []string{"a", "c", "b", "d"}) {
		t.Fatalf("expected stable order [a c b d], got %v", rankedIDs(ranked))
	}
}

func TestRankIsIdempotentPermutation(t *testing.T) {
	jobs := adzuna.Jobs{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	scores := ScoreMap{
		"b": ai.NewMatchScore(10, nil, nil),
		"d": ai.NewMatchScore(90, nil, nil),
	}

	once := Rank(jobs, scores, true)
	twice := Rank(once, scores, true)

	if !reflect.DeepEqual(rankedIDs(once), rankedIDs(twice)) {
		t.Fatalf("ranking is not idempotent: %v vs %v", rankedIDs(once), rankedIDs(twice))
	}

	// Same multiset of ids as the input.
	seen := map[string]bool{}
	for _, id := range rankedIDs(once) {
		seen[id] = true
	}
	if len(seen) != len(jobs) {
		t.Fatalf("ranked output is not a permutation of the input")
	}
}
