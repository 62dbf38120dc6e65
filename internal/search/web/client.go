package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/nirmaan-ai/backend/pkg/logger"
)

// Client answers out-of-domain questions through a live search backend.
// With a SerpAPI key it uses the JSON API; without one it falls back to
// scraping a Google results page.
type Client struct {
	serpAPIKey string
	serpAPIURL string
	httpClient *http.Client
}

type SearchResult struct {
	Title   string
	URL     string
	Snippet string
	Content string
}

func NewClient(serpAPIKey string, timeoutSec int) *Client {
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &Client{
		serpAPIKey: serpAPIKey,
		serpAPIURL: "https://serpapi.com/search",
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	logger.Info("Performing web search", zap.String("query", query))

	if c.serpAPIKey != "" {
		return c.searchWithSerpAPI(ctx, query, maxResults)
	}

	return c.searchWithGoogle(ctx, query, maxResults)
}

func (c *Client) searchWithSerpAPI(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("api_key", c.serpAPIKey)
	params.Add("num", fmt.Sprintf("%d", maxResults))

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s?%s", c.serpAPIURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var searchResp struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}

	err = json.Unmarshal(body, &searchResp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]SearchResult, 0, maxResults)
	for _, r := range searchResp.OrganicResults {
		if len(results) >= maxResults {
			break
		}

		content, err := c.scrapeContent(r.Link)
		if err != nil {
			logger.Warn("Failed to scrape content", zap.String("url", r.Link), zap.Error(err))
			content = r.Snippet
		}

		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
			Content: content,
		})
	}

	logger.Info("Web search completed", zap.Int("results", len(results)))

	return results, nil
}

func (c *Client) searchWithGoogle(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	searchURL := fmt.Sprintf("https://www.google.com/search?q=%s&num=%d", url.QueryEscape(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	results := make([]SearchResult, 0)
	doc.Find("div.g").Each(func(i int, s *goquery.Selection) {
		if i >= maxResults {
			return
		}

		title := s.Find("h3").Text()
		link, _ := s.Find("a").Attr("href")
		snippet := s.Find("div.VwiC3b").Text()

		if title != "" && link != "" {
			content, err := c.scrapeContent(link)
			if err != nil {
				content = snippet
			}

			results = append(results, SearchResult{
				Title:   title,
				URL:     link,
				Snippet: snippet,
				Content: content,
			})
		}
	})

	logger.Info("Google search completed", zap.Int("results", len(results)))

	return results, nil
}

func (c *Client) scrapeContent(urlStr string) (string, error) {
	resp, err := c.httpClient.Get(urlStr)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, header").Remove()
	text := doc.Find("body").Text()
	text = strings.TrimSpace(text)

	if len(text) > 5000 {
		text = text[:5000]
	}

	return text, nil
}
