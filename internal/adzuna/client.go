package adzuna

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/avoran/jobscout/internal/faults"
	"go.uber.org/zap"
)

const (
	apiURL = "https://api.adzuna.com/v1/api/jobs"
	// Fixed page size for every search request.
	perPage = 20

	defaultCountry = "ca"
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	appID      string
	appKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
	Country    string
}

// New builds a search client. Both credentials are required; a missing one is a
// configuration fault so callers can surface it before any search is attempted.
func New(ctx context.Context, logger *zap.Logger, appID, appKey, country string) (*Client, error) {
	appID = strings.TrimSpace(appID)
	appKey = strings.TrimSpace(appKey)

	if appID == "" || appKey == "" {
		return nil, faults.New(faults.Configuration, "adzuna app id and app key are required")
	}

	if country = strings.TrimSpace(country); country == "" {
		country = defaultCountry
	}

	return &Client{
		ctx:    ctx,
		appID:  appID,
		appKey: appKey,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:  logger,
		Country: country,
	}, nil
}
