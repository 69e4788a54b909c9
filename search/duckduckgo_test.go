package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(body string) (*Client, *httptest.Server) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("no_html") != "1" {
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, body)
	}))
	return &Client{
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}, srv
}

func TestSearchAbstract(t *testing.T) {
	client, srv := newTestClient(`{"AbstractText":"Go is a programming language.","Heading":"Go"}`)
	defer srv.Close()

	answer, err := client.Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if answer != "Go is a programming language." {
		t.Errorf("answer = %q", answer)
	}
}

func TestSearchRelatedTopicText(t *testing.T) {
	client, srv := newTestClient(`{"AbstractText":"","RelatedTopics":[
		{"Text":"Gopher - a burrowing rodent","FirstURL":"https://ddg.example/gopher"}
	]}`)
	defer srv.Close()

	answer, err := client.Search(context.Background(), "gopher")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if answer != "Gopher - a burrowing rodent" {
		t.Errorf("answer = %q", answer)
	}
}

func TestSearchRelatedTopicLinkOnly(t *testing.T) {
	client, srv := newTestClient(`{"RelatedTopics":[{"Text":"","FirstURL":"https://ddg.example/only-link"}]}`)
	defer srv.Close()

	answer, err := client.Search(context.Background(), "something")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if answer != "Here's a link: https://ddg.example/only-link" {
		t.Errorf("answer = %q", answer)
	}
}

func TestSearchHeadingOnly(t *testing.T) {
	client, srv := newTestClient(`{"Heading":"Obscure Topic"}`)
	defer srv.Close()

	answer, err := client.Search(context.Background(), "obscure")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if answer != "I found something about Obscure Topic, but details are limited." {
		t.Errorf("answer = %q", answer)
	}
}

func TestSearchNoAnswer(t *testing.T) {
	client, srv := newTestClient(`{}`)
	defer srv.Close()

	answer, err := client.Search(context.Background(), "gibberish")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if answer != "No direct answer found, try refining your query." {
		t.Errorf("answer = %q", answer)
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, HTTPClient: &http.Client{Timeout: 5 * time.Second}}
	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}
