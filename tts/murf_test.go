package tts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"
)

func newTestClient(url string) *Murf {
	return &Murf{
		BaseURL:    url,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Voice:      "en-US-marcus",
	}
}

func TestSynthesizeSingleChunk(t *testing.T) {
	var gotReq map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speech/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "murf-key" {
			t.Errorf("api-key header = %q", r.Header.Get("api-key"))
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, `{"audioFile":"https://cdn.murf.ai/one.mp3"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	urls, err := client.Synthesize(context.Background(), "murf-key", "hello there")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://cdn.murf.ai/one.mp3" {
		t.Errorf("urls = %v", urls)
	}
	if gotReq["voice_id"] != "en-US-marcus" {
		t.Errorf("voice_id = %q", gotReq["voice_id"])
	}
	if gotReq["audio_format"] != "mp3" {
		t.Errorf("audio_format = %q", gotReq["audio_format"])
	}
	if gotReq["text"] != "hello there" {
		t.Errorf("text = %q", gotReq["text"])
	}
}

func TestSynthesizeLongTextPreservesOrder(t *testing.T) {
	var mu sync.Mutex
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)

		mu.Lock()
		requests++
		mu.Unlock()

		// Derive the URL from the chunk's first character so order is checkable
		fmt.Fprintf(w, `{"audioFile":"https://cdn.murf.ai/%s.mp3"}`, req["text"][:1])
	}))
	defer srv.Close()

	text := strings.Repeat("a", MaxChunkChars) +
		strings.Repeat("b", MaxChunkChars) +
		strings.Repeat("c", 10)

	client := newTestClient(srv.URL)
	urls, err := client.Synthesize(context.Background(), "murf-key", text)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	mu.Lock()
	if requests != 3 {
		t.Errorf("made %d requests, want 3", requests)
	}
	mu.Unlock()
	want := []string{
		"https://cdn.murf.ai/a.mp3",
		"https://cdn.murf.ai/b.mp3",
		"https://cdn.murf.ai/c.mp3",
	}
	if len(urls) != 3 {
		t.Fatalf("got %d urls, want 3", len(urls))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestSynthesizeSnakeCaseURLField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"audio_url":"https://cdn.murf.ai/alt.mp3"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	urls, err := client.Synthesize(context.Background(), "murf-key", "hi")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if urls[0] != "https://cdn.murf.ai/alt.mp3" {
		t.Errorf("urls[0] = %q", urls[0])
	}
}

func TestSynthesizeMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, err := client.Synthesize(context.Background(), "murf-key", "hi"); err == nil {
		t.Fatal("expected error when the response carries no audio url")
	}
}

func TestSynthesizeUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Synthesize(context.Background(), "bad-key", "hi")
	if err == nil {
		t.Fatal("expected error for upstream failure")
	}
	if !strings.Contains(err.Error(), "status 403") {
		t.Errorf("error %q does not carry status", err)
	}
}

func TestSplitChunksMultiByteBoundary(t *testing.T) {
	// 1 ASCII byte then 1200 three-byte runes: the 3000-byte cut lands
	// mid-rune and must back up to the rune start
	text := "a" + strings.Repeat("世", 1200)

	chunks := SplitChunks(text, MaxChunkChars)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	var rebuilt strings.Builder
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is invalid UTF-8 (len %d bytes)", i, len(chunk))
		}
		if len(chunk) > MaxChunkChars {
			t.Errorf("chunk %d is %d bytes, over the limit", i, len(chunk))
		}
		rebuilt.WriteString(chunk)
	}
	if rebuilt.String() != text {
		t.Error("chunks do not reassemble into the input")
	}
}

func TestSplitChunksOversizedRune(t *testing.T) {
	// A limit below the rune width emits the rune whole rather than torn
	chunks := SplitChunks("世界", 2)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks %q, want 2", len(chunks), chunks)
	}
	if chunks[0] != "世" || chunks[1] != "界" {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestSplitChunks(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{"under limit", "short", 10, []string{"short"}},
		{"exactly limit", "12345", 5, []string{"12345"}},
		{"over limit", "123456789", 4, []string{"1234", "5678", "9"}},
		{"empty", "", 10, []string{""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitChunks(tc.text, tc.maxChars)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d chunks %v, want %d", len(got), got, len(tc.want))
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("chunk[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}
