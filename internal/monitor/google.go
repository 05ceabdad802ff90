package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
)

const (
	googleTrendsBaseURL = "https://trends.google.com"
	googleTrendsRSS     = "/trending/rss"
	googleDefaultGeo    = "US"
)

// GoogleTrendsMonitor reads the daily trending searches RSS feed for one region.
type GoogleTrendsMonitor struct {
	httpClient *http.Client
	baseURL    string
	geo        string
}

// GoogleTrendsConfig holds configuration for the Google Trends monitor.
type GoogleTrendsConfig struct {
	Geo     string // ISO region code, e.g. "US"
	BaseURL string // Overrides https://trends.google.com, used by tests
}

// NewGoogleTrendsMonitor creates a new Google Trends monitor.
func NewGoogleTrendsMonitor(cfg GoogleTrendsConfig) *GoogleTrendsMonitor {
	geo := strings.ToUpper(strings.TrimSpace(cfg.Geo))
	if geo == "" {
		geo = googleDefaultGeo
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = googleTrendsBaseURL
	}

	return &GoogleTrendsMonitor{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		geo:     geo,
	}
}

// Name returns the monitor name.
func (g *GoogleTrendsMonitor) Name() string {
	return "google"
}

// FetchTrends retrieves the trending searches feed in rank order.
func (g *GoogleTrendsMonitor) FetchTrends(ctx context.Context) ([]Trend, error) {
	feedURL := g.baseURL + googleTrendsRSS + "?geo=" + url.QueryEscape(g.geo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Google Trends returned status %d: %s", resp.StatusCode, string(body))
	}

	trends, err := parseTrendsFeed(resp.Body, g.geo)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	slog.Debug("fetched Google trends", "geo", g.geo, "count", len(trends))
	return trends, nil
}

// parseTrendsFeed extracts items from a trending searches RSS document.
func parseTrendsFeed(r io.Reader, geo string) ([]Trend, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, err
	}

	items, err := xmlquery.QueryAll(doc, "//channel/item")
	if err != nil {
		return nil, err
	}

	trends := make([]Trend, 0, len(items))
	for _, item := range items {
		titleNode := xmlquery.FindOne(item, "title")
		if titleNode == nil {
			continue
		}
		title := strings.TrimSpace(titleNode.InnerText())
		if title == "" {
			continue
		}

		trend := Trend{
			Source:     "google",
			ExternalID: geo + ":" + strings.ToLower(title),
			Title:      title,
			Rank:       len(trends) + 1,
		}
		if link := xmlquery.FindOne(item, "link"); link != nil {
			trend.URL = strings.TrimSpace(link.InnerText())
		}

		// ht:approx_traffic lives in the feed's own namespace
		for c := item.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode && c.Data == "approx_traffic" {
				trend.Traffic = strings.TrimSpace(c.InnerText())
				break
			}
		}

		trends = append(trends, trend)
	}

	return trends, nil
}
