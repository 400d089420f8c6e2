package council

import (
	"regexp"
	"strings"
)

// RankingParser extracts an ordered label sequence from an evaluator's raw
// text. Implementations are best-effort: malformed input degrades to a partial
// or empty sequence, never an error, and no label absent from the source text
// is ever fabricated.
type RankingParser interface {
	Parse(text string) []string
}

const rankingMarker = "FINAL RANKING:"

var (
	numberedEntryPattern = regexp.MustCompile(`\d+\.\s*Response [A-Z]`)
	responseLabelPattern = regexp.MustCompile(`Response [A-Z]`)
)

// RegexParser is the default RankingParser. It looks for the literal
// "FINAL RANKING:" marker and scans everything after its first occurrence,
// preferring numbered entries ("1. Response A") over bare "Response A"
// mentions; with no marker at all it falls back to bare mentions anywhere in
// the text.
type RegexParser struct{}

// Parse implements RankingParser.
func (RegexParser) Parse(text string) []string {
	idx := strings.Index(text, rankingMarker)
	if idx < 0 {
		return bareLabels(text)
	}

	section := text[idx+len(rankingMarker):]

	if numbered := numberedEntryPattern.FindAllString(section, -1); len(numbered) > 0 {
		labels := make([]string, 0, len(numbered))
		for _, entry := range numbered {
			labels = append(labels, responseLabelPattern.FindString(entry))
		}
		return labels
	}

	return bareLabels(section)
}

func bareLabels(text string) []string {
	labels := responseLabelPattern.FindAllString(text, -1)
	if labels == nil {
		return []string{}
	}
	return labels
}
