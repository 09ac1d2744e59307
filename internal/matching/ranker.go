package matching

import (
	"sort"

	"github.com/avoran/jobscout/internal/adzuna"
)

// unscoredRank sorts jobs without a score after every scored job.
const unscoredRank = -1

// Rank returns a view of jobs ordered by descending match score. With
// sortEnabled false the input is returned as-is, preserving the board's own
// relevance order. Ties and unscored jobs keep their original relative order;
// neither input is ever mutated.
func Rank(jobs adzuna.Jobs, scores ScoreMap, sortEnabled bool) adzuna.Jobs {
	if !sortEnabled {
		return jobs
	}

	ranked := make(adzuna.Jobs, len(jobs))
	copy(ranked, jobs)

	sort.SliceStable(ranked, func(i, j int) bool {
		return scoreOf(ranked[i], scores) > scoreOf(ranked[j], scores)
	})

	return ranked
}

func scoreOf(job *adzuna.Job, scores ScoreMap) int {
	if score, ok := scores[job.ID]; ok {
		return score.Score
	}
	return unscoredRank
}
