// Command validate runs the statistical validation and baseline
// comparison over a scored dataset: does the Bias-Coherence Index
// explain forecast error, and does it add information beyond raw
// ensemble spread?
//
// Usage:
//
//	go run ./cmd/validate \
//	  -scored results/bci_scored.csv \
//	  -baseline-out results/baseline_comparison.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/storm-forecast-skill/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-forecast-skill/internal/baseline"
	"github.com/couchcryptid/storm-forecast-skill/internal/report"
	"github.com/couchcryptid/storm-forecast-skill/internal/validate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	scored := flag.String("scored", "", "scored CSV to validate")
	baselineOut := flag.String("baseline-out", "", "optional output path for the baseline comparison CSV")
	flag.Parse()

	if *scored == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -scored")
	}

	records, err := csvfile.LoadScored(*scored)
	if err != nil {
		return err
	}

	rep, err := validate.Run(records)
	if err != nil {
		return err
	}
	report.WriteValidationReport(os.Stdout, rep)

	cmp, err := baseline.Compare(records)
	if err != nil {
		return err
	}
	fmt.Println()
	report.WriteBaselineReport(os.Stdout, cmp)

	if *baselineOut != "" {
		results := make([]csvfile.ModelAUC, 0, len(cmp.Results))
		for _, r := range cmp.Results {
			results = append(results, csvfile.ModelAUC{Model: r.Model, AUC: r.AUC})
		}
		if err := csvfile.WriteBaseline(*baselineOut, results); err != nil {
			return err
		}
		fmt.Printf("\n✓ Saved: %s\n", *baselineOut)
	}
	return nil
}
