package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	hnBaseURL    = "https://hacker-news.firebaseio.com/v0"
	hnTopStories = "/topstories.json"
	hnItem       = "/item/%d.json"
	hnDefaultMax = 30
)

// HackerNewsMonitor reads the Hacker News front page.
type HackerNewsMonitor struct {
	httpClient *http.Client
	baseURL    string
	maxStories int
}

// HackerNewsConfig holds configuration for the HN monitor.
type HackerNewsConfig struct {
	MaxStories int
	BaseURL    string
}

// NewHackerNewsMonitor creates a new Hacker News monitor.
func NewHackerNewsMonitor(cfg HackerNewsConfig) *HackerNewsMonitor {
	maxStories := cfg.MaxStories
	if maxStories <= 0 {
		maxStories = hnDefaultMax
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = hnBaseURL
	}

	return &HackerNewsMonitor{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:    baseURL,
		maxStories: maxStories,
	}
}

// Name returns the monitor name.
func (h *HackerNewsMonitor) Name() string {
	return "hackernews"
}

type hnStory struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Type  string `json:"type"`
}

// FetchTrends retrieves top stories, keeping front page order.
func (h *HackerNewsMonitor) FetchTrends(ctx context.Context) ([]Trend, error) {
	var ids []int
	if err := h.getJSON(ctx, h.baseURL+hnTopStories, &ids); err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}

	if len(ids) > h.maxStories {
		ids = ids[:h.maxStories]
	}

	// Slots are indexed by position so concurrent fetches keep rank order
	stories := make([]*hnStory, len(ids))
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i, id := range ids {
		wg.Add(1)
		go func(idx, storyID int) {
			defer wg.Done()

			var story hnStory
			if err := h.getJSON(ctx, h.baseURL+fmt.Sprintf(hnItem, storyID), &story); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			stories[idx] = &story
		}(i, id)
	}

	wg.Wait()

	if failed > 0 {
		slog.Warn("some HN stories failed to fetch", "errors", failed)
	}
	if failed == len(ids) && len(ids) > 0 {
		return nil, fmt.Errorf("all %d HN story fetches failed", failed)
	}

	trends := make([]Trend, 0, len(stories))
	for _, story := range stories {
		if story == nil || story.Type != "story" || story.Title == "" {
			continue
		}

		trends = append(trends, Trend{
			Source:     "hackernews",
			ExternalID: strconv.Itoa(story.ID),
			Title:      story.Title,
			URL:        story.URL,
			Score:      story.Score,
			Rank:       len(trends) + 1,
		})
	}

	slog.Debug("fetched HN trends", "count", len(trends))
	return trends, nil
}

func (h *HackerNewsMonitor) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HN API returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
