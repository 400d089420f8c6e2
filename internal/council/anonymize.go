package council

import (
	"fmt"
	"strings"
)

// MaxCouncilSize is the largest roster a single run supports: labels are
// single uppercase letters, so 26 answers is a hard ceiling.
const MaxCouncilSize = 26

// LabelMap is the bijective mapping between "Response X" display tokens and
// model identifiers for one run. It remembers assignment order so downstream
// consumers can walk labels deterministically.
type LabelMap struct {
	labels []string
	models map[string]string
}

// Model resolves a display token ("Response A") to its model identifier.
func (m *LabelMap) Model(label string) (string, bool) {
	model, ok := m.models[label]
	return model, ok
}

// Len reports how many labels were assigned.
func (m *LabelMap) Len() int { return len(m.labels) }

// Labels returns the display tokens in assignment order.
func (m *LabelMap) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// AsMap returns a plain map view for serialization.
func (m *LabelMap) AsMap() map[string]string {
	out := make(map[string]string, len(m.models))
	for label, model := range m.models {
		out[label] = model
	}
	return out
}

// Anonymize assigns positional letter labels to the answers and renders the
// anonymized block shown to evaluators: one "Response X:" entry per answer,
// blank-line separated, in input order. The i-th answer always gets the i-th
// letter starting at 'A'.
func Anonymize(answers []Answer) (string, *LabelMap, error) {
	if len(answers) > MaxCouncilSize {
		return "", nil, fmt.Errorf("cannot anonymize %d answers: single-letter labels cap at %d", len(answers), MaxCouncilSize)
	}

	lm := &LabelMap{
		labels: make([]string, 0, len(answers)),
		models: make(map[string]string, len(answers)),
	}

	entries := make([]string, 0, len(answers))
	for i, answer := range answers {
		label := fmt.Sprintf("Response %c", rune('A'+i))
		lm.labels = append(lm.labels, label)
		lm.models[label] = answer.Model
		entries = append(entries, fmt.Sprintf("%s:\n%s", label, answer.Response))
	}

	return strings.Join(entries, "\n\n"), lm, nil
}
