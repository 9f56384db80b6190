package shannon

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// RankRow is one line of the rank histogram
type RankRow struct {
	Rank       int     `json:"rank"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Report summarizes one evaluation run
type Report struct {
	RunID              string    `json:"run_id"`
	Total              int64     `json:"total"`
	Skipped            int64     `json:"skipped"`
	TopRanks           []RankRow `json:"top_ranks"`
	FirstGuessAccuracy float64   `json:"first_guess_accuracy"`
	Entropy            float64   `json:"entropy"`
	Perplexity         float64   `json:"perplexity"`
	Redundancy         float64   `json:"redundancy"`
	MaxEntropy         float64   `json:"max_entropy"`
}

// Report builds the summary and moves the evaluator to Reported. Rank rows are
// the most frequent ranks, ties broken by the smaller rank.
func (e *Evaluator) Report() Report {
	total := e.Total()

	rows := make([]RankRow, 0, len(e.counts))
	for _, r := range e.sortedRanks() {
		rows = append(rows, RankRow{
			Rank:       r,
			Count:      e.counts[r],
			Percentage: percentage(e.counts[r], total),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	if len(rows) > e.topRanks {
		rows = rows[:e.topRanks]
	}

	entropy := e.EstimateEntropy()
	if e.state == Played {
		e.state = Reported
	}

	return Report{
		RunID:              e.id,
		Total:              total,
		Skipped:            e.skipped,
		TopRanks:           rows,
		FirstGuessAccuracy: e.FirstGuessAccuracy(),
		Entropy:            entropy,
		Perplexity:         e.EstimatePerplexity(),
		Redundancy:         e.EstimateRedundancy(entropy),
		MaxEntropy:         e.maxEntropy,
	}
}

// WriteTo prints the report in a human-readable form
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total predictions evaluated: %d (skipped %d without prediction)\n\n", r.Total, r.Skipped)
	for _, row := range r.TopRanks {
		fmt.Fprintf(&sb, "Guess %d: %d times (%.2f%%)\n", row.Rank, row.Count, row.Percentage)
	}
	fmt.Fprintf(&sb, "\nFirst-guess accuracy: %.2f%%\n", r.FirstGuessAccuracy)
	fmt.Fprintf(&sb, "Estimated entropy: %.4f bits/token\n", r.Entropy)
	fmt.Fprintf(&sb, "Estimated redundancy: %.2f%%\n", 100*r.Redundancy)
	fmt.Fprintf(&sb, "Estimated perplexity: %.2f\n", r.Perplexity)

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
