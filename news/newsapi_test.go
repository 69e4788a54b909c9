package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	return &Client{
		BaseURL:    url,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestTopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/top-headlines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "news-key" {
			t.Errorf("X-Api-Key = %q", r.Header.Get("X-Api-Key"))
		}
		q := r.URL.Query()
		if q.Get("q") != "technology" {
			t.Errorf("q = %q, want technology", q.Get("q"))
		}
		if q.Get("language") != "en" {
			t.Errorf("language = %q, want en", q.Get("language"))
		}
		if q.Get("pageSize") != "5" {
			t.Errorf("pageSize = %q, want 5", q.Get("pageSize"))
		}
		fmt.Fprint(w, `{"status":"ok","articles":[
			{"title":"Chips get smaller","url":"https://news.example/1"},
			{"title":"Phones get bigger","url":"https://news.example/2"}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	articles, err := client.TopHeadlines(context.Background(), "news-key", "technology")
	if err != nil {
		t.Fatalf("TopHeadlines: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].Title != "Chips get smaller" {
		t.Errorf("articles[0].Title = %q", articles[0].Title)
	}
	if articles[1].URL != "https://news.example/2" {
		t.Errorf("articles[1].URL = %q", articles[1].URL)
	}
}

func TestTopHeadlinesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","articles":[]}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	articles, err := client.TopHeadlines(context.Background(), "news-key", "nothing-matches")
	if err != nil {
		t.Fatalf("TopHeadlines: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("got %d articles, want 0", len(articles))
	}
}

func TestTopHeadlinesRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error","code":"apiKeyInvalid"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, err := client.TopHeadlines(context.Background(), "bad-key", "tech"); err == nil {
		t.Fatal("expected error for rejected key")
	}
}
