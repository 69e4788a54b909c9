package llm

import (
	"testing"

	"google.golang.org/genai"

	"leo-agent/history"
)

func TestBuildContents(t *testing.T) {
	msgs := []history.Message{
		{Role: history.RoleUser, Text: "hello"},
		{Role: history.RoleModel, Text: "hi there"},
		{Role: history.RoleUser, Text: "how are you"},
	}

	contents := buildContents(msgs)
	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(contents))
	}
	if contents[0].Role != "user" || contents[0].Parts[0].Text != "hello" {
		t.Errorf("contents[0] = %+v", contents[0])
	}
	if contents[1].Role != "model" || contents[1].Parts[0].Text != "hi there" {
		t.Errorf("contents[1] = %+v", contents[1])
	}
}

func TestExtractReply(t *testing.T) {
	cases := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			"nil content",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			"",
		},
		{
			"text reply",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "  hello there  "}}},
			}}},
			"hello there",
		},
		{
			"skips empty parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: ""}, {Text: "second"}}},
			}}},
			"second",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractReply(tc.resp); got != tc.want {
				t.Errorf("extractReply = %q, want %q", got, tc.want)
			}
		})
	}
}
