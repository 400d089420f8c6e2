package council

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"llm-quorum/internal/openrouter"
)

// Sentinel texts substituted for failed computations so callers never branch
// on exceptional control flow.
const (
	// AllFailedResponse is the stage-3 text when every roster model failed
	// stage 1 and the run terminated early.
	AllFailedResponse = "All council models failed to respond. Please try again."

	// SynthesisFailedResponse is the stage-3 text when the chairman call
	// itself failed.
	SynthesisFailedResponse = "Error: unable to generate the final synthesized answer."

	// allFailedModel marks the sentinel synthesis of a fully failed run.
	allFailedModel = "error"
)

const rankingPromptTemplate = `You are evaluating different responses to the following question:

Question: %s

Here are the responses from different models (anonymized):

%s

Your task:
1. First, evaluate each response individually. For each response, explain what it does well and what it does poorly.
2. Then, at the very end of your response, provide a final ranking.

IMPORTANT: Your final ranking MUST be formatted EXACTLY as follows:
- Start with the line "FINAL RANKING:" (all caps, with colon)
- Then list the responses from best to worst as a numbered list
- Each line should be: number, period, space, then ONLY the response label (e.g., "1. Response A")
- Do not add any other text or explanations in the ranking section

Example of the correct format for your ENTIRE response:

Response A provides good detail on X but misses Y...
Response B is accurate but lacks depth on Z...
Response C offers the most comprehensive answer...

FINAL RANKING:
1. Response C
2. Response A
3. Response B

Now provide your evaluation and ranking:`

const chairmanPromptTemplate = `You are the Chairman of an LLM Council. Multiple AI models have provided responses to a user's question, and then ranked each other's responses.

Original Question: %s

STAGE 1 - Individual Responses:
%s

STAGE 2 - Peer Rankings:
%s

Your task as Chairman is to synthesize all of this information into a single, comprehensive, accurate answer to the user's original question. Consider:
- The individual responses and their insights
- The peer rankings and what they reveal about response quality
- Any patterns of agreement or disagreement

Provide a clear, well-reasoned final answer that represents the council's collective wisdom:`

// Pipeline runs the three-stage council over a fixed roster. It is immutable
// after construction; every Run is independent and stateless with respect to
// prior runs.
type Pipeline struct {
	gateway  Gateway
	parser   RankingParser
	roster   []string
	chairman string
	timeout  time.Duration
	logger   *slog.Logger
}

// PipelineOptions configures NewPipeline. Roster and Chairman are required;
// the chairman may or may not also be a roster member. Parser defaults to
// RegexParser, QueryTimeout to the gateway default, Logger to slog.Default.
type PipelineOptions struct {
	Roster       []string
	Chairman     string
	QueryTimeout time.Duration
	Parser       RankingParser
	Logger       *slog.Logger
}

// NewPipeline validates the roster and returns a ready pipeline.
func NewPipeline(gateway Gateway, opts PipelineOptions) (*Pipeline, error) {
	if len(opts.Roster) == 0 {
		return nil, fmt.Errorf("council roster is empty")
	}
	if len(opts.Roster) > MaxCouncilSize {
		return nil, fmt.Errorf("council roster has %d models, maximum is %d", len(opts.Roster), MaxCouncilSize)
	}
	seen := make(map[string]bool, len(opts.Roster))
	for _, model := range opts.Roster {
		if model == "" {
			return nil, fmt.Errorf("council roster contains an empty model identifier")
		}
		if seen[model] {
			return nil, fmt.Errorf("council roster contains %q more than once", model)
		}
		seen[model] = true
	}
	if opts.Chairman == "" {
		return nil, fmt.Errorf("chairman model is required")
	}

	parser := opts.Parser
	if parser == nil {
		parser = RegexParser{}
	}
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = openrouter.DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	roster := make([]string, len(opts.Roster))
	copy(roster, opts.Roster)

	return &Pipeline{
		gateway:  gateway,
		parser:   parser,
		roster:   roster,
		chairman: opts.Chairman,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// CollectAnswers is stage 1: the query goes to every roster model in parallel
// and the surviving responses come back in roster order. Models that failed
// are simply absent from the result.
func (p *Pipeline) CollectAnswers(ctx context.Context, query string) []Answer {
	messages := []openrouter.Message{{Role: "user", Content: query}}
	results := p.gateway.FanOut(ctx, p.roster, messages)

	answers := make([]Answer, 0, len(p.roster))
	for _, model := range p.roster {
		completion := results[model]
		if completion == nil {
			continue
		}
		answers = append(answers, Answer{Model: model, Response: completion.Content})
	}
	return answers
}

// CollectRankings is stage 2: the stage-1 answers are anonymized and the whole
// roster is asked to rank them. Models that failed stage 1 still participate
// as evaluators; stage-1 failure and stage-2 participation are independent.
func (p *Pipeline) CollectRankings(ctx context.Context, query string, answers []Answer) ([]Ranking, *LabelMap, error) {
	block, labels, err := Anonymize(answers)
	if err != nil {
		return nil, nil, err
	}

	prompt := fmt.Sprintf(rankingPromptTemplate, query, block)
	messages := []openrouter.Message{{Role: "user", Content: prompt}}
	results := p.gateway.FanOut(ctx, p.roster, messages)

	rankings := make([]Ranking, 0, len(p.roster))
	for _, model := range p.roster {
		completion := results[model]
		if completion == nil {
			continue
		}
		rankings = append(rankings, Ranking{
			Model:         model,
			Ranking:       completion.Content,
			ParsedRanking: p.parser.Parse(completion.Content),
		})
	}
	return rankings, labels, nil
}

// Synthesize is stage 3: one chairman call over the raw (de-anonymized)
// stage-1 and stage-2 material. The chairman sees true model identities.
// Chairman failure yields a sentinel synthesis, not an error; the run still
// completes.
func (p *Pipeline) Synthesize(ctx context.Context, query string, answers []Answer, rankings []Ranking) Synthesis {
	var stage1Text strings.Builder
	for _, answer := range answers {
		fmt.Fprintf(&stage1Text, "Model: %s\nResponse: %s\n\n", answer.Model, answer.Response)
	}
	var stage2Text strings.Builder
	for _, ranking := range rankings {
		fmt.Fprintf(&stage2Text, "Model: %s\nRanking: %s\n\n", ranking.Model, ranking.Ranking)
	}

	prompt := fmt.Sprintf(chairmanPromptTemplate, query, stage1Text.String(), stage2Text.String())
	messages := []openrouter.Message{{Role: "user", Content: prompt}}

	completion, err := p.gateway.Complete(ctx, p.chairman, messages, p.timeout)
	if err != nil {
		p.logger.Error("chairman synthesis failed", "model", p.chairman, "error", err)
		return Synthesis{Model: p.chairman, Response: SynthesisFailedResponse}
	}
	return Synthesis{Model: p.chairman, Response: completion.Content}
}

// Run executes the full three-stage process. Model-level failures never
// surface as errors: a run where every model failed stage 1 returns a
// structurally complete outcome carrying a sentinel synthesis, and a failed
// chairman call yields a sentinel stage-3 text. The only error is an internal
// invariant violation (which a validated pipeline cannot hit).
func (p *Pipeline) Run(ctx context.Context, query string) (Outcome, error) {
	return p.run(ctx, query, func(Event) {})
}

// Stream is Run with per-stage progress events. It emits the six stage
// boundary events in order; the caller owns the final complete/error (and any
// title_complete) notifications.
func (p *Pipeline) Stream(ctx context.Context, query string, emit EmitFunc) (Outcome, error) {
	return p.run(ctx, query, emit)
}

func (p *Pipeline) run(ctx context.Context, query string, emit EmitFunc) (Outcome, error) {
	emit(Event{Type: EventStage1Start})
	answers := p.CollectAnswers(ctx, query)
	emit(Event{Type: EventStage1Complete, Data: answers})

	if len(answers) == 0 {
		p.logger.Error("all council models failed to respond", "roster_size", len(p.roster))
		return Outcome{
			Stage1:   []Answer{},
			Stage2:   []Ranking{},
			Stage3:   Synthesis{Model: allFailedModel, Response: AllFailedResponse},
			Metadata: Metadata{LabelToModel: map[string]string{}, AggregateRanks: []AggregateRank{}},
		}, nil
	}

	emit(Event{Type: EventStage2Start})
	rankings, labels, err := p.CollectRankings(ctx, query, answers)
	if err != nil {
		return Outcome{}, fmt.Errorf("collect rankings: %w", err)
	}
	metadata := Metadata{
		LabelToModel:   labels.AsMap(),
		AggregateRanks: AggregateRankings(rankings, labels),
	}
	emit(Event{Type: EventStage2Complete, Data: rankings, Metadata: &metadata})

	emit(Event{Type: EventStage3Start})
	synthesis := p.Synthesize(ctx, query, answers, rankings)
	emit(Event{Type: EventStage3Complete, Data: synthesis})

	return Outcome{
		Stage1:   answers,
		Stage2:   rankings,
		Stage3:   synthesis,
		Metadata: metadata,
	}, nil
}
