package council

import (
	"math"
	"sort"
)

// AggregateRankings folds every evaluator's parsed ordering into one consensus
// ranking. Each parsed list assigns positions 1..n in list order; positions
// accumulate per model and the arithmetic mean (rounded to two decimals)
// decides the final order, lower being better. Labels not present in the label
// map are skipped. A label mentioned twice by one evaluator contributes both
// positions to that model's average rather than being deduplicated. Models
// nobody ranked are omitted.
//
// Entries are assembled in label order and stable-sorted, so ties resolve the
// same way for identical input.
func AggregateRankings(rankings []Ranking, labels *LabelMap) []AggregateRank {
	positions := make(map[string][]int)
	for _, ranking := range rankings {
		for i, label := range ranking.ParsedRanking {
			model, ok := labels.Model(label)
			if !ok {
				continue
			}
			positions[model] = append(positions[model], i+1)
		}
	}

	aggregate := make([]AggregateRank, 0, labels.Len())
	for _, label := range labels.Labels() {
		model, _ := labels.Model(label)
		ps := positions[model]
		if len(ps) == 0 {
			continue
		}
		sum := 0
		for _, p := range ps {
			sum += p
		}
		avg := float64(sum) / float64(len(ps))
		aggregate = append(aggregate, AggregateRank{
			Model:         model,
			AverageRank:   math.Round(avg*100) / 100,
			RankingsCount: len(ps),
		})
	}

	sort.SliceStable(aggregate, func(i, j int) bool {
		return aggregate[i].AverageRank < aggregate[j].AverageRank
	})

	return aggregate
}
