package validate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/storm-forecast-skill/internal/domain"
)

// StormSummary aggregates the scored records of one storm.
type StormSummary struct {
	Storm      string
	MeanBCI    float64
	StdBCI     float64 // sample std; 0 for a single-record storm
	MeanSpread float64
	MeanError  float64
	Count      int
}

// SummarizeByStorm groups records by storm and aggregates each group.
// Groups form in first-encounter order, then sort by descending record
// count; the stable sort keeps encounter order among equal counts.
func SummarizeByStorm(records []domain.ScoredRecord) []StormSummary {
	var order []string
	groups := make(map[string][]domain.ScoredRecord, 16)
	for _, r := range records {
		if _, ok := groups[r.Storm]; !ok {
			order = append(order, r.Storm)
		}
		groups[r.Storm] = append(groups[r.Storm], r)
	}

	summaries := make([]StormSummary, 0, len(order))
	for _, storm := range order {
		group := groups[storm]
		bcis := make([]float64, len(group))
		spreads := make([]float64, len(group))
		errors := make([]float64, len(group))
		for i, r := range group {
			bcis[i] = r.BCI
			spreads[i] = r.ModelStd
			errors[i] = r.MeanError
		}

		summaries = append(summaries, StormSummary{
			Storm:      storm,
			MeanBCI:    stat.Mean(bcis, nil),
			StdBCI:     sampleStd(bcis),
			MeanSpread: stat.Mean(spreads, nil),
			MeanError:  stat.Mean(errors, nil),
			Count:      len(group),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Count > summaries[j].Count
	})
	return summaries
}

func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}
