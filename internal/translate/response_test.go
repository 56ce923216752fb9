package translate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractResults(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "plain valid array",
			input: `[
				{"id": "line-1", "text": "こんにちは"},
				{"id": "line-2", "text": "さようなら"}
			]`,
			wantCount: 2,
		},
		{
			name: "preamble with valid array",
			input: `Here is the translation:
			[
				{"id": "line-1", "text": "Bonjour"},
				{"id": "line-2", "text": "Au revoir"}
			]`,
			wantCount: 2,
		},
		{
			name: "valid array with trailing text",
			input: `[
				{"id": "line-1", "text": "Hola"}
			]
			I hope this helps!`,
			wantCount: 1,
		},
		{
			name: "wrapper object with translations key",
			input: `{"translations": [
				{"id": "line-1", "text": "Übersetzt"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with lines key",
			input: `{"lines": [
				{"id": "line-1", "text": "Переведено"}
			]}`,
			wantCount: 1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   `This is just plain text.`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `[{"id": "line-1", "text": "incomplete"`,
			wantErr: true,
		},
		{
			name:    "array with empty text",
			input:   `[{"id": "line-1", "text": ""}]`,
			wantErr: true,
		},
		{
			name: "ASS newline escape in text",
			input: `[
				{"id": "line-1", "text": "first half\Nsecond half"}
			]`,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := extractResults(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(results), tt.wantCount)
			}
		})
	}
}

func TestExtractResultsKeepsLiteralASSBreak(t *testing.T) {
	results, err := extractResults(`[{"id": "line-1", "text": "a\Nb"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Text != `a\Nb` {
		t.Errorf("text = %q, want %q", results[0].Text, `a\Nb`)
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON",
			input: `[{"id": "a", "text": "hello"}]`,
			want:  `[{"id": "a", "text": "hello"}]`,
		},
		{
			name:  "json code fence",
			input: "```json\n[{\"id\": \"a\", \"text\": \"hello\"}]\n```",
			want:  `[{"id": "a", "text": "hello"}]`,
		},
		{
			name:  "plain code fence",
			input: "```\n[{\"id\": \"a\"}]\n```",
			want:  `[{"id": "a"}]`,
		},
		{
			name:  "surrounding whitespace",
			input: "  \n\n```json\n[{\"id\": \"a\"}]\n```\n\n  ",
			want:  `[{"id": "a"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateResults(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    bool
	}{
		{"empty slice", []Result{}, false},
		{"nil slice", nil, false},
		{"result with text", []Result{{ID: "a", Text: "hello"}}, true},
		{"result with empty text", []Result{{ID: "a", Text: ""}}, false},
		{"result without id", []Result{{Text: "hello"}}, false},
		{
			"multiple results one valid",
			[]Result{{ID: "a", Text: ""}, {ID: "b", Text: "valid"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateResults(tt.results); got != tt.want {
				t.Errorf("validateResults() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseResponseReordersToBatch(t *testing.T) {
	batch := []Item{{ID: "x", Text: "one"}, {ID: "y", Text: "two"}}
	reply := "```json\n[{\"id\": \"y\", \"text\": \"deux\"}, {\"id\": \"x\", \"text\": \"un\"}, {\"id\": \"z\", \"text\": \"extra\"}]\n```"

	got, err := parseResponse("test", reply, batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Result{{ID: "x", Text: "un"}, {ID: "y", Text: "deux"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseResponse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResponseMissingID(t *testing.T) {
	batch := []Item{{ID: "x", Text: "one"}, {ID: "y", Text: "two"}}
	_, err := parseResponse("test", `[{"id": "x", "text": "un"}]`, batch)
	if err == nil || !strings.Contains(err.Error(), "missing id y") {
		t.Errorf("expected missing id error, got %v", err)
	}
}

func TestParseResponseEmpty(t *testing.T) {
	if _, err := parseResponse("test", "", []Item{{ID: "x"}}); err == nil {
		t.Error("expected error for empty response")
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("abcdef", 3); got != "abc..." {
		t.Errorf("truncateString() = %q", got)
	}
	if got := truncateString("abc", 3); got != "abc" {
		t.Errorf("truncateString() = %q", got)
	}
}
