package main

import "testing"

func TestExtraChunks(t *testing.T) {
	cases := []struct {
		name string
		urls []string
		want int
	}{
		{"nil list", nil, 0},
		{"single url", []string{"https://cdn.murf.ai/1.mp3"}, 0},
		{"two urls", []string{"https://cdn.murf.ai/1.mp3", "https://cdn.murf.ai/2.mp3"}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extraChunks(tc.urls)
			if len(got) != tc.want {
				t.Fatalf("got %d extra chunks %v, want %d", len(got), got, tc.want)
			}
			if tc.want > 0 && got[0] != tc.urls[1] {
				t.Errorf("got[0] = %q, want %q", got[0], tc.urls[1])
			}
		})
	}
}
