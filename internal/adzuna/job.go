package adzuna

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Job is the canonical, source-agnostic record produced by a search. It is
// never mutated after construction; a new search replaces the whole list.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	DatePosted  time.Time `json:"datePosted"`
	Category    string    `json:"category,omitempty"`
	Salary      string    `json:"salary,omitempty"`
}

type Jobs []*Job

// tagPattern removes anything that looks like markup. The source mixes plain
// text and HTML fragments, so the pass must tolerate broken tags.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

func newJob(record searchRecord) *Job {
	return &Job{
		ID:          record.ID,
		Title:       StripTags(record.Title),
		Company:     record.Company.DisplayName,
		Location:    record.Location.DisplayName,
		Description: StripTags(record.Description),
		URL:         record.RedirectURL,
		DatePosted:  parseCreated(record.Created),
		Category:    record.Category.Label,
		Salary:      formatSalary(record.SalaryMin, record.SalaryMax),
	}
}

// StripTags strips markup and collapses the whitespace left behind.
func StripTags(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(tagPattern.ReplaceAllString(s, " ")), " "))
}

// formatSalary renders "{min} - {max}". Empty when no minimum is present; the
// max part stays blank when the source omits it.
func formatSalary(min, max float64) string {
	if min <= 0 {
		return ""
	}

	formatted := strconv.FormatFloat(min, 'f', -1, 64) + " -"
	if max > 0 {
		formatted += " " + strconv.FormatFloat(max, 'f', -1, 64)
	}

	return formatted
}

func parseCreated(created string) time.Time {
	if created == "" {
		return time.Time{}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, created); err == nil {
			return ts
		}
	}

	return time.Time{}
}

func (j Jobs) Len() int {
	return len(j)
}

func (j Jobs) FindByID(id string) *Job {
	for _, job := range j {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (j Jobs) IDs() []string {
	ids := make([]string, 0, len(j))
	for _, job := range j {
		ids = append(ids, job.ID)
	}
	return ids
}
