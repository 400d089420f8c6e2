package council

import (
	"reflect"
	"testing"
)

func labelMapFor(t *testing.T, models ...string) *LabelMap {
	t.Helper()
	answers := make([]Answer, len(models))
	for i, m := range models {
		answers[i] = Answer{Model: m, Response: "x"}
	}
	_, labels, err := Anonymize(answers)
	if err != nil {
		t.Fatalf("Anonymize failed: %v", err)
	}
	return labels
}

func TestAggregateRankingsConsensus(t *testing.T) {
	labels := labelMapFor(t, "model/a", "model/b")
	rankings := []Ranking{
		{Model: "ranker/1", ParsedRanking: []string{"Response A", "Response B"}},
		{Model: "ranker/2", ParsedRanking: []string{"Response A", "Response B"}},
	}

	result := AggregateRankings(rankings, labels)
	if len(result) != 2 {
		t.Fatalf("got %d entries, want 2", len(result))
	}
	if result[0].Model != "model/a" || result[0].AverageRank != 1.0 || result[0].RankingsCount != 2 {
		t.Errorf("first entry = %+v, want model/a avg 1.0 count 2", result[0])
	}
	if result[1].Model != "model/b" || result[1].AverageRank != 2.0 {
		t.Errorf("second entry = %+v, want model/b avg 2.0", result[1])
	}
}

func TestAggregateRankingsTieIsDeterministic(t *testing.T) {
	labels := labelMapFor(t, "model/1", "model/2")
	// [B, A] and [A, B]: both models average 1.5.
	rankings := []Ranking{
		{Model: "ranker/1", ParsedRanking: []string{"Response B", "Response A"}},
		{Model: "ranker/2", ParsedRanking: []string{"Response A", "Response B"}},
	}

	first := AggregateRankings(rankings, labels)
	if len(first) != 2 {
		t.Fatalf("got %d entries, want 2", len(first))
	}
	for _, entry := range first {
		if entry.AverageRank != 1.5 {
			t.Errorf("model %s average = %v, want 1.5", entry.Model, entry.AverageRank)
		}
		if entry.RankingsCount != 2 {
			t.Errorf("model %s count = %d, want 2", entry.Model, entry.RankingsCount)
		}
	}

	// Identical input must produce an identical ordering every time.
	for i := 0; i < 10; i++ {
		again := AggregateRankings(rankings, labels)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("tie ordering not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestAggregateRankingsRoundsToTwoDecimals(t *testing.T) {
	labels := labelMapFor(t, "model/a", "model/b")
	// model/a gets positions 1, 2, 2 -> mean 1.666... -> 1.67.
	rankings := []Ranking{
		{Model: "r1", ParsedRanking: []string{"Response A", "Response B"}},
		{Model: "r2", ParsedRanking: []string{"Response B", "Response A"}},
		{Model: "r3", ParsedRanking: []string{"Response B", "Response A"}},
	}

	result := AggregateRankings(rankings, labels)
	for _, entry := range result {
		if entry.Model == "model/a" && entry.AverageRank != 1.67 {
			t.Errorf("model/a average = %v, want 1.67", entry.AverageRank)
		}
		if entry.Model == "model/b" && entry.AverageRank != 1.33 {
			t.Errorf("model/b average = %v, want 1.33", entry.AverageRank)
		}
	}
}

func TestAggregateRankingsSkipsUnknownLabels(t *testing.T) {
	labels := labelMapFor(t, "model/a")
	rankings := []Ranking{
		{Model: "r1", ParsedRanking: []string{"Response Q", "Response A"}},
	}

	result := AggregateRankings(rankings, labels)
	if len(result) != 1 {
		t.Fatalf("got %d entries, want 1", len(result))
	}
	// "Response Q" is skipped but "Response A" still sits at position 2.
	if result[0].Model != "model/a" || result[0].AverageRank != 2.0 || result[0].RankingsCount != 1 {
		t.Errorf("entry = %+v, want model/a avg 2.0 count 1", result[0])
	}
}

func TestAggregateRankingsDoubleMentionCountsTwice(t *testing.T) {
	labels := labelMapFor(t, "model/a", "model/b")
	rankings := []Ranking{
		{Model: "r1", ParsedRanking: []string{"Response A", "Response B", "Response A"}},
	}

	result := AggregateRankings(rankings, labels)
	for _, entry := range result {
		if entry.Model == "model/a" {
			// Positions 1 and 3 both count: mean 2.0, two votes.
			if entry.AverageRank != 2.0 || entry.RankingsCount != 2 {
				t.Errorf("model/a entry = %+v, want avg 2.0 count 2", entry)
			}
		}
	}
}

func TestAggregateRankingsOmitsUnrankedModels(t *testing.T) {
	labels := labelMapFor(t, "model/a", "model/b", "model/c")
	rankings := []Ranking{
		{Model: "r1", ParsedRanking: []string{"Response A"}},
	}

	result := AggregateRankings(rankings, labels)
	if len(result) != 1 {
		t.Fatalf("got %d entries, want 1 (unranked models omitted)", len(result))
	}
	if result[0].Model != "model/a" {
		t.Errorf("entry = %+v, want model/a", result[0])
	}
}

func TestAggregateRankingsEmpty(t *testing.T) {
	labels := labelMapFor(t, "model/a")

	result := AggregateRankings(nil, labels)
	if len(result) != 0 {
		t.Errorf("got %d entries for zero rankings, want 0", len(result))
	}
}
