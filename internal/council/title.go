package council

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"llm-quorum/internal/openrouter"
)

// DefaultTitle is used whenever title generation fails or returns nothing.
const DefaultTitle = "New Conversation"

const titleMaxLen = 50

const titlePromptTemplate = `Generate a very short title (3-5 words maximum) that summarizes the following question.
The title should be concise and descriptive. Do not use quotes or punctuation in the title.

Question: %s

Title:`

// Summarizer produces a short conversation title from the first user message,
// using a fast lightweight model on a short leash so it can overlap the main
// pipeline without ever holding it up for long.
type Summarizer struct {
	gateway Gateway
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSummarizer returns a Summarizer bound to the given title model. A zero
// timeout falls back to 30 seconds.
func NewSummarizer(gateway Gateway, model string, timeout time.Duration, logger *slog.Logger) *Summarizer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{gateway: gateway, model: model, timeout: timeout, logger: logger}
}

// Title generates a title for the given first message. It never fails: any
// gateway error or empty result degrades to DefaultTitle. The result is
// stripped of surrounding quotes and whitespace and capped at 50 display
// characters, ellipsized when truncated.
func (s *Summarizer) Title(ctx context.Context, firstMessage string) string {
	prompt := fmt.Sprintf(titlePromptTemplate, firstMessage)
	messages := []openrouter.Message{{Role: "user", Content: prompt}}

	completion, err := s.gateway.Complete(ctx, s.model, messages, s.timeout)
	if err != nil {
		s.logger.Warn("title generation failed", "model", s.model, "error", err)
		return DefaultTitle
	}

	title := strings.TrimSpace(completion.Content)
	title = strings.Trim(title, `"'`)
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return truncateTitle(title, titleMaxLen)
}

// truncateTitle caps s at maxLen display characters, replacing the tail with
// "..." when it does not fit. Counting is rune-based so multibyte titles are
// never cut mid-character.
func truncateTitle(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
