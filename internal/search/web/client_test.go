package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchWithSerpAPI(t *testing.T) {
	content := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><p>Full page text about zoning.</p></body></html>`))
	}))
	defer content.Close()

	serp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "zoning rules", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		fmt.Fprintf(w, `{"organic_results":[
			{"title":"Zoning 101","link":"%s","snippet":"zoning basics"},
			{"title":"Zoning 202","link":"%s","snippet":"more zoning"},
			{"title":"Zoning 303","link":"%s","snippet":"extra"},
			{"title":"Zoning 404","link":"%s","snippet":"too many"}
		]}`, content.URL, content.URL, content.URL, content.URL)
	}))
	defer serp.Close()

	client := &Client{
		serpAPIKey: "test-key",
		serpAPIURL: serp.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	results, err := client.Search(context.Background(), "zoning rules", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Zoning 101", results[0].Title)
	assert.Equal(t, "zoning basics", results[0].Snippet)
	assert.Contains(t, results[0].Content, "Full page text about zoning.")
}

func TestSearchWithSerpAPIScrapeFailureFallsBackToSnippet(t *testing.T) {
	serp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"organic_results":[{"title":"T","link":"http://127.0.0.1:1/dead","snippet":"the snippet"}]}`))
	}))
	defer serp.Close()

	client := &Client{
		serpAPIKey: "test-key",
		serpAPIURL: serp.URL,
		httpClient: &http.Client{Timeout: 2 * time.Second},
	}

	results, err := client.Search(context.Background(), "q", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "the snippet", results[0].Content)
}

func TestSearchWithSerpAPIErrorStatus(t *testing.T) {
	serp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer serp.Close()

	client := &Client{
		serpAPIKey: "test-key",
		serpAPIURL: serp.URL,
		httpClient: &http.Client{Timeout: 2 * time.Second},
	}

	_, err := client.Search(context.Background(), "q", 3)
	assert.Error(t, err)
}
