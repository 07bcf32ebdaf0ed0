package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/domain"
	"github.com/steam-tracker/internal/search"
)

// maxGuideResults is the hard cap on results scanned per lookup.
const maxGuideResults = 5

// Searcher runs a web search. *search.Client implements it.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]search.Result, error)
}

// GuideLocator finds a strategy guide for a game on a single guide site
type GuideLocator struct {
	searcher      Searcher
	domain        string
	queryTemplate string
	maxResults    int
	logger        *slog.Logger
}

// NewGuideLocator creates a new guide locator
func NewGuideLocator(searcher Searcher, cfg *config.GuideConfig, logger *slog.Logger) *GuideLocator {
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > maxGuideResults {
		maxResults = maxGuideResults
	}
	return &GuideLocator{
		searcher:      searcher,
		domain:        strings.ToLower(strings.TrimPrefix(cfg.Domain, "www.")),
		queryTemplate: cfg.QueryTemplate,
		maxResults:    maxResults,
		logger:        logger,
	}
}

// FindGuideURL returns the first result hosted on the guide domain. Any
// search failure or a miss is reported as domain.ErrGuideNotFound.
func (l *GuideLocator) FindGuideURL(ctx context.Context, titleName string) (string, error) {
	titleName = strings.TrimSpace(titleName)
	if titleName == "" {
		return "", domain.ErrInvalidRequest
	}
	if l.searcher == nil {
		return "", domain.ErrSearchNotConfigured
	}

	query := fmt.Sprintf(l.queryTemplate, titleName, l.domain)
	results, err := l.searcher.Search(ctx, query, l.maxResults)
	if err != nil {
		if errors.Is(err, domain.ErrSearchNotConfigured) {
			return "", err
		}
		l.logger.Warn("guide search failed", "title", titleName, "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrGuideNotFound, err)
	}

	for i, r := range results {
		if i >= l.maxResults {
			break
		}
		if l.onGuideDomain(r.Link) {
			return r.Link, nil
		}
	}

	return "", domain.ErrGuideNotFound
}

func (l *GuideLocator) onGuideDomain(link string) bool {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == l.domain || strings.HasSuffix(host, "."+l.domain)
}
