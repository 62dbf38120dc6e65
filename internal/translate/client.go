package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nirmaan-ai/backend/pkg/logger"
)

// Client calls the Google Translate v2 REST endpoint. Construction fails
// when no API key is configured; callers treat a missing client as a
// permanently unavailable backend and fall back to a placeholder, so a dead
// translator never blocks the English answer.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

var ErrNoAPIKey = fmt.Errorf("translate: no API key configured")

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	logger.Info("Translate client initialized")

	return &Client{
		apiKey:     apiKey,
		endpoint:   "https://translation.googleapis.com/language/translate/v2",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	form := url.Values{}
	form.Add("q", text)
	form.Add("target", targetLanguage)
	form.Add("format", "text")

	reqURL := fmt.Sprintf("%s?key=%s", c.endpoint, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call translate API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("translate API returned status %d", resp.StatusCode)
	}

	var translateResp struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}

	err = json.Unmarshal(body, &translateResp)
	if err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(translateResp.Data.Translations) == 0 {
		return "", fmt.Errorf("translate API returned no translations")
	}

	translated := translateResp.Data.Translations[0].TranslatedText

	logger.Debug("Text translated",
		zap.String("target", targetLanguage),
		zap.Int("length", len(translated)),
	)

	return translated, nil
}
