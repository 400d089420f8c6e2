// Package council implements the three-stage deliberation pipeline: every
// roster model answers the query independently, the answers are anonymized and
// cross-ranked by the same roster, and a designated chairman model synthesizes
// the final reply from everything collected along the way.
package council

import (
	"context"
	"time"

	"llm-quorum/internal/openrouter"
)

// Gateway is the slice of the model transport the pipeline depends on.
// *openrouter.Client satisfies it; tests substitute an in-process fake.
type Gateway interface {
	Complete(ctx context.Context, model string, messages []openrouter.Message, timeout time.Duration) (*openrouter.Completion, error)
	FanOut(ctx context.Context, models []string, messages []openrouter.Message) map[string]*openrouter.Completion
}

// Answer is one model's stage-1 response. Models that failed stage 1 produce
// no Answer at all; absence is the failure signal.
type Answer struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// Ranking is one evaluator's stage-2 output: the full commentary it wrote and
// the label sequence extracted from it. ParsedRanking may be shorter than the
// number of labels when the evaluator omitted or mangled entries.
type Ranking struct {
	Model         string   `json:"model"`
	Ranking       string   `json:"ranking"`
	ParsedRanking []string `json:"parsed_ranking"`
}

// Synthesis is the chairman's stage-3 answer. Exactly one is produced per run;
// on chairman failure it carries a fixed sentinel text instead of generated
// content.
type Synthesis struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// AggregateRank is one model's consensus position across all evaluators.
type AggregateRank struct {
	Model         string  `json:"model"`
	AverageRank   float64 `json:"average_rank"`
	RankingsCount int     `json:"rankings_count"`
}

// Metadata carries the de-anonymization map and the consensus ordering for one
// run, for display alongside the stage outputs.
type Metadata struct {
	LabelToModel   map[string]string `json:"label_to_model"`
	AggregateRanks []AggregateRank   `json:"aggregate_rankings"`
}

// Outcome bundles everything one pipeline run produces.
type Outcome struct {
	Stage1   []Answer  `json:"stage1"`
	Stage2   []Ranking `json:"stage2"`
	Stage3   Synthesis `json:"stage3"`
	Metadata Metadata  `json:"metadata"`
}
