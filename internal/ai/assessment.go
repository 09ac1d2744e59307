package ai

import (
	"context"
	"strings"
)

// MatchScore is the oracle's verdict for one resume/job pair. Construct it
// through NewMatchScore only; instances are treated as immutable afterwards.
type MatchScore struct {
	Score          int      `json:"matchingScore"`
	MatchingSkills []string `json:"matchingSkills"`
	LackingSkills  []string `json:"lackingSkills"`
}

// NewMatchScore clamps the score into [0,100] and dedupes both skill lists
// case-insensitively, keeping the first spelling and the order of first
// appearance.
func NewMatchScore(score int, matching, lacking []string) *MatchScore {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &MatchScore{
		Score:          score,
		MatchingSkills: dedupeSkills(matching),
		LackingSkills:  dedupeSkills(lacking),
	}
}

func dedupeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	deduped := make([]string, 0, len(skills))

	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}

		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		deduped = append(deduped, skill)
	}

	return deduped
}

// Scorer rates how well a resume fits one job posting.
type Scorer interface {
	Score(ctx context.Context, resume, jobDescription, jobTitle string) (*MatchScore, error)
}

// TailoredApplication is the tailoring oracle's output for one job.
type TailoredApplication struct {
	JobTitle       string   `json:"jobTitle"`
	Resume         string   `json:"resume"`
	CoverLetter    string   `json:"coverLetter"`
	MatchingScore  int      `json:"matchingScore"`
	MatchingSkills []string `json:"matchingSkills"`
	LackingSkills  []string `json:"lackingSkills"`
}

// Tailor rewrites a resume for one job posting and drafts a cover letter.
type Tailor interface {
	Tailor(ctx context.Context, resume, jobDescription, language string) (*TailoredApplication, error)
}
