package adzuna

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avoran/jobscout/internal/faults"
	"github.com/avoran/jobscout/internal/logger"
	"go.uber.org/zap"
)

// SearchFilters drives one search request. Zero values mean "not set" and the
// corresponding parameter is omitted from the outbound query.
type SearchFilters struct {
	What       string `json:"what,omitempty" mapstructure:"what"`
	Where      string `json:"where,omitempty" mapstructure:"where"`
	MaxDaysOld int    `json:"maxDaysOld,omitempty" mapstructure:"max-days-old"`
	Category   string `json:"category,omitempty" mapstructure:"category"`
	Country    string `json:"country,omitempty" mapstructure:"country"`
	Page       int    `json:"page,omitempty" mapstructure:"page"`
}

// SearchResult is one page of canonical jobs plus the board's total hit count.
type SearchResult struct {
	Jobs  Jobs
	Count int
}

// searchResponse mirrors the top-level Adzuna JSON response.
type searchResponse struct {
	Results []searchRecord `json:"results"`
	Count   int            `json:"count"`
}

// searchRecord mirrors a single Adzuna job listing.
type searchRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Created     string  `json:"created"`
	RedirectURL string  `json:"redirect_url"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Category struct {
		Label string `json:"label"`
	} `json:"category"`
}

// Search runs one page of a job-board search and normalizes the results.
func (c *Client) Search(filters *SearchFilters) (*SearchResult, error) {
	if filters == nil {
		filters = &SearchFilters{}
	}

	country := filters.Country
	if country == "" {
		country = c.Country
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}

	endpoint := fmt.Sprintf("%s/%s/search/%d", c.APIURL, country, page)

	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, faults.Wrap(faults.Transport, "building search request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.URL.RawQuery = c.buildQuery(filters).Encode()

	// Credentials live in the query string; log the bare endpoint only.
	c.logger.Debug("make request", zap.String("url", endpoint))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, faults.Wrap(faults.Transport, "search request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Wrap(faults.Transport, "reading search response", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("search request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", logger.TruncateForLog(string(body), 500)),
		)
		return nil, faults.Errorf(faults.Transport, "bad status: %s", resp.Status)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, faults.Wrap(faults.Transport, "decoding search response", err)
	}

	jobs := make(Jobs, 0, len(decoded.Results))
	for _, record := range decoded.Results {
		jobs = append(jobs, newJob(record))
	}

	c.logger.Debug("got response from adzuna",
		zap.Int("page_results", len(jobs)),
		zap.Int("total_count", decoded.Count),
	)

	return &SearchResult{Jobs: jobs, Count: decoded.Count}, nil
}

// buildQuery maps filters to outbound parameters. Optional filters are added
// only when set; an empty-string parameter is never sent.
func (c *Client) buildQuery(filters *SearchFilters) url.Values {
	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	q.Set("results_per_page", strconv.Itoa(perPage))

	if filters.What != "" {
		q.Set("what", filters.What)
	}
	if filters.Where != "" {
		q.Set("where", filters.Where)
	}
	if filters.MaxDaysOld > 0 {
		q.Set("max_days_old", strconv.Itoa(filters.MaxDaysOld))
	}
	if filters.Category != "" {
		q.Set("category", filters.Category)
	}

	return q
}
