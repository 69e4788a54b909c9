// Package news wraps the NewsAPI top-headlines endpoint.
package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
)

// DefaultBaseURL is the NewsAPI root
const DefaultBaseURL = "https://newsapi.org"

const pageSize = 5

// Article is a single headline entry
type Article struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Client is a pass-through client for NewsAPI
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

type headlinesResponse struct {
	Status   string    `json:"status"`
	Articles []Article `json:"articles"`
}

// TopHeadlines returns up to five English headlines matching topic
func (c *Client) TopHeadlines(ctx context.Context, apiKey, topic string) ([]Article, error) {
	query := url.Values{}
	query.Set("q", topic)
	query.Set("language", "en")
	query.Set("pageSize", fmt.Sprintf("%d", pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/v2/top-headlines?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	req.Header.Set("X-Api-Key", apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi: status %d: %s", resp.StatusCode, body)
	}

	var out headlinesResponse
	if err := sonic.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	return out.Articles, nil
}
