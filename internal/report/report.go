// Package report renders human-readable summaries of scoring,
// validation, and baseline runs. Rendering happens only here;
// computation packages return data and never print.
package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/couchcryptid/storm-forecast-skill/internal/baseline"
	"github.com/couchcryptid/storm-forecast-skill/internal/domain"
	"github.com/couchcryptid/storm-forecast-skill/internal/stats"
	"github.com/couchcryptid/storm-forecast-skill/internal/validate"
)

const bannerWidth = 80

func banner(w io.Writer, title string) {
	line := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(w, "%s\n%s\n%s\n", line, title, line)
}

// WriteScoringSummary prints the score distribution of one scoring run.
func WriteScoringSummary(w io.Writer, records []domain.ScoredRecord) {
	fmt.Fprintf(w, "✓ BCI calculated for %d timesteps\n", len(records))
	if len(records) == 0 {
		return
	}

	bcis := make([]float64, len(records))
	phis := make([]float64, len(records))
	rhos := make([]float64, len(records))
	for i, r := range records {
		bcis[i] = r.BCI
		phis[i] = r.Phi
		rhos[i] = r.Rho
	}

	// The empty case returned above, so these cannot fail.
	bciMean, _ := stats.Mean(bcis)
	bciStd, _ := stats.StdDev(bcis)
	phiMean, _ := stats.Mean(phis)
	rhoMean, _ := stats.Mean(rhos)

	fmt.Fprintf(w, "\nBCI Statistics:\n")
	fmt.Fprintf(w, "  Mean: %.3f\n", bciMean)
	fmt.Fprintf(w, "  Std: %.3f\n", bciStd)
	fmt.Fprintf(w, "  Range: %.3f - %.3f\n", slices.Min(bcis), slices.Max(bcis))

	fmt.Fprintf(w, "\nPhi Statistics:\n")
	fmt.Fprintf(w, "  Mean: %.3f\n", phiMean)

	fmt.Fprintf(w, "\nRho Statistics:\n")
	fmt.Fprintf(w, "  Mean: %.3f\n", rhoMean)
}

// WriteValidationReport prints correlation diagnostics and per-storm
// statistics for one validation run.
func WriteValidationReport(w io.Writer, rep validate.Report) {
	banner(w, "BCI STATISTICAL VALIDATION")

	fmt.Fprintf(w, "\nDataset: n=%d timesteps\n", rep.N)
	fmt.Fprintf(w, "Storms: %d\n", rep.Storms)
	fmt.Fprintf(w, "Date range: %s to %s\n",
		rep.Start.Format(time.RFC3339), rep.End.Format(time.RFC3339))

	fmt.Fprintln(w)
	banner(w, "CORRELATION ANALYSIS")

	fmt.Fprintf(w, "\nCorrelation with forecast error:\n")
	fmt.Fprintf(w, "  Ensemble spread: r = %.3f, p = %.6f\n", rep.SpreadError.R, rep.SpreadError.P)
	fmt.Fprintf(w, "  BCI: r = %.3f, p = %.6f\n", rep.BCIError.R, rep.BCIError.P)

	fmt.Fprintf(w, "\nPartial correlation (controlling for spread):\n")
	fmt.Fprintf(w, "  r = %.3f, p = %.6f\n", rep.PartialBCI.R, rep.PartialBCI.P)
	fmt.Fprintf(w, "  %s\n", validate.Significance(rep.PartialBCI.P))

	fmt.Fprintln(w)
	banner(w, "PER-STORM STATISTICS")
	fmt.Fprintln(w)
	stormTable(w, rep.ByStorm)
}

// WriteBaselineReport prints the classifier comparison: which feature
// set best detects high-error forecasts.
func WriteBaselineReport(w io.Writer, cmp baseline.Comparison) {
	banner(w, "BASELINE COMPARISON")

	fmt.Fprintf(w, "\nHigh-error threshold: %.2f°C\n", cmp.Threshold)
	share := 0.0
	if cmp.Total > 0 {
		share = float64(cmp.HighErrorCount) / float64(cmp.Total) * 100
	}
	fmt.Fprintf(w, "High-error events: %d / %d (%.1f%%)\n", cmp.HighErrorCount, cmp.Total, share)

	fmt.Fprintf(w, "\nModel Performance (AUC for high-error detection):\n")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, r := range cmp.Results {
		fmt.Fprintf(w, "  %-26sAUC = %.3f\n", r.Model+":", r.AUC)
		if r.Model == baseline.ModelLearned && len(r.Coefficients) == 2 {
			fmt.Fprintf(w, "    Learned weights: Spread=%.2f, BCI=%.2f\n",
				r.Coefficients[0], r.Coefficients[1])
		}
	}

	fmt.Fprintln(w)
	banner(w, "SUMMARY")
	fmt.Fprintln(w)
	resultTable(w, cmp.Results)
}

func stormTable(w io.Writer, summaries []validate.StormSummary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Storm", "BCI_mean", "BCI_std", "Spread", "Error", "N"})
	for _, s := range summaries {
		tw.AppendRow(table.Row{
			s.Storm,
			fmt.Sprintf("%.3f", s.MeanBCI),
			fmt.Sprintf("%.3f", s.StdBCI),
			fmt.Sprintf("%.3f", s.MeanSpread),
			fmt.Sprintf("%.3f", s.MeanError),
			s.Count,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	tw.Render()
}

func resultTable(w io.Writer, results []baseline.ClassifierResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Model", "AUC"})
	for _, r := range results {
		tw.AppendRow(table.Row{r.Model, fmt.Sprintf("%.3f", r.AUC)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	tw.Render()
}
