// leo-cli drives a conversation turn against a running Leo server from
// the terminal: send a recorded audio file or a typed message and print
// each piece of the response as it comes back.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

type turnResult struct {
	SessionID string   `json:"session_id"`
	UserText  string   `json:"user_text"`
	ReplyText string   `json:"llm_text"`
	AudioURL  string   `json:"audio_url"`
	AudioURLs []string `json:"audio_urls,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Leo server URL")
	session := flag.String("session", "", "session id (minted from the server when empty)")
	audioFile := flag.String("file", "", "audio file to send (WAV/WebM)")
	text := flag.String("text", "", "text message to send instead of audio")
	flag.Parse()

	if *audioFile == "" && *text == "" {
		log.Fatal("provide -file or -text")
	}

	client := &http.Client{Timeout: 120 * time.Second}

	sessionID := *session
	if sessionID == "" {
		var err error
		sessionID, err = newSession(client, *serverURL)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("session: %s", sessionID)
	}

	var (
		resp *http.Response
		err  error
	)
	if *audioFile != "" {
		resp, err = sendAudio(client, *serverURL, sessionID, *audioFile)
	} else {
		resp, err = sendText(client, *serverURL, sessionID, *text)
	}
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var ep errorPayload
		if json.Unmarshal(body, &ep) == nil && ep.Code != "" {
			log.Fatalf("Turn failed (%s): %s", ep.Code, ep.Message)
		}
		log.Fatalf("Turn failed: status %d: %s", resp.StatusCode, body)
	}

	var result turnResult
	if err := json.Unmarshal(body, &result); err != nil {
		log.Fatalf("Parsing response: %v", err)
	}

	fmt.Printf("you:  %s\n", result.UserText)
	fmt.Printf("leo:  %s\n", result.ReplyText)
	if result.AudioURL != "" {
		fmt.Printf("audio: %s\n", result.AudioURL)
		for i, url := range extraChunks(result.AudioURLs) {
			fmt.Printf("audio (chunk %d): %s\n", i+2, url)
		}
	}
}

// extraChunks returns the chunk URLs beyond the first. Servers may send
// audio_url alone with no audio_urls list.
func extraChunks(urls []string) []string {
	if len(urls) < 2 {
		return nil
	}
	return urls[1:]
}

func newSession(client *http.Client, serverURL string) (string, error) {
	resp, err := client.Get(serverURL + "/agent/session")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

func sendAudio(client *http.Client, serverURL, sessionID, path string) (*http.Response, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "recording.wav")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/agent/chat/"+sessionID, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return client.Do(req)
}

func sendText(client *http.Client, serverURL, sessionID, text string) (*http.Response, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/agent/text/"+sessionID, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req)
}
