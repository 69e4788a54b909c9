// Package search wraps the DuckDuckGo Instant Answer API.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
)

// DefaultBaseURL is the DuckDuckGo Instant Answer API root
const DefaultBaseURL = "https://api.duckduckgo.com"

// Client queries the DuckDuckGo Instant Answer API. No key required.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with production defaults
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type instantAnswer struct {
	AbstractText  string `json:"AbstractText"`
	Heading       string `json:"Heading"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Search returns a short spoken-style answer for the query. When no
// instant answer exists it falls back through related topics, then the
// heading, then a refine-your-query message.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("duckduckgo: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("duckduckgo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("duckduckgo: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("duckduckgo: status %d", resp.StatusCode)
	}

	var answer instantAnswer
	if err := sonic.Unmarshal(body, &answer); err != nil {
		return "", fmt.Errorf("duckduckgo: %w", err)
	}

	if answer.AbstractText != "" {
		return answer.AbstractText, nil
	}
	if len(answer.RelatedTopics) > 0 {
		first := answer.RelatedTopics[0]
		if first.Text != "" {
			return first.Text, nil
		}
		if first.FirstURL != "" {
			return fmt.Sprintf("Here's a link: %s", first.FirstURL), nil
		}
	}
	if answer.Heading != "" {
		return fmt.Sprintf("I found something about %s, but details are limited.", answer.Heading), nil
	}
	return "No direct answer found, try refining your query.", nil
}
