package council

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"llm-quorum/internal/openrouter"
)

func newTestSummarizer(gateway Gateway) *Summarizer {
	return NewSummarizer(gateway, "title/model", 0, nil)
}

func TestSummarizerTitle(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"plain title", "Go Error Handling", "Go Error Handling"},
		{"surrounding whitespace", "  Go Error Handling \n", "Go Error Handling"},
		{"double quotes stripped", `"Go Error Handling"`, "Go Error Handling"},
		{"single quotes stripped", "'Go Error Handling'", "Go Error Handling"},
		{"quotes then whitespace", `" Go Error Handling "`, "Go Error Handling"},
		{"empty response", "", DefaultTitle},
		{"whitespace only", "   \n", DefaultTitle},
		{"quotes only", `""`, DefaultTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{
				answerFor: func(model, prompt string) *openrouter.Completion { return nil },
				chairman:  respond(tt.response),
			}
			got := newTestSummarizer(gateway).Title(context.Background(), "first message")
			if got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.response, got, tt.want)
			}
		})
	}
}

func TestSummarizerTitleTruncation(t *testing.T) {
	long := strings.Repeat("abcde", 11) // 55 chars
	gateway := &fakeGateway{chairman: respond(long)}

	got := newTestSummarizer(gateway).Title(context.Background(), "msg")
	if utf8.RuneCountInString(got) != 50 {
		t.Errorf("truncated title is %d runes, want 50: %q", utf8.RuneCountInString(got), got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title missing ellipsis: %q", got)
	}
	if got[:47] != long[:47] {
		t.Errorf("truncated title body = %q, want prefix of source", got[:47])
	}

	// Exactly at the cap passes through untouched.
	exact := strings.Repeat("x", 50)
	gateway = &fakeGateway{chairman: respond(exact)}
	if got := newTestSummarizer(gateway).Title(context.Background(), "msg"); got != exact {
		t.Errorf("50-rune title modified: %q", got)
	}
}

func TestSummarizerTitleMultibyteTruncation(t *testing.T) {
	long := strings.Repeat("日", 60)
	gateway := &fakeGateway{chairman: respond(long)}

	got := newTestSummarizer(gateway).Title(context.Background(), "msg")
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) != 50 {
		t.Errorf("truncated title is %d runes, want 50", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title missing ellipsis: %q", got)
	}
}

func TestSummarizerTitleGatewayFailure(t *testing.T) {
	gateway := &fakeGateway{chairman: nil} // Complete errors
	got := newTestSummarizer(gateway).Title(context.Background(), "msg")
	if got != DefaultTitle {
		t.Errorf("Title on gateway failure = %q, want %q", got, DefaultTitle)
	}
}

func TestSummarizerPromptContainsMessage(t *testing.T) {
	gateway := &fakeGateway{chairman: respond("A Title")}
	newTestSummarizer(gateway).Title(context.Background(), "how do goroutines work?")

	if len(gateway.prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(gateway.prompts))
	}
	if !strings.Contains(gateway.prompts[0], "how do goroutines work?") {
		t.Errorf("title prompt missing the first message:\n%s", gateway.prompts[0])
	}
}
