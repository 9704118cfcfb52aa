// Package csvfile reads and writes the flat tabular datasets the
// commands exchange: matched forecasts, ensemble members, scored
// records, and baseline comparison results.
//
// Readers validate headers up front and fail fast with the offending
// row and column; they never skip malformed rows silently. valid_time
// is written as RFC 3339 UTC and accepted back in RFC 3339 or the
// space-separated "2006-01-02 15:04:05" form the tabulation step emits.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-forecast-skill/internal/domain"
)

var matchedHeader = []string{"storm", "valid_time", "obs_temperature", "model_mean", "model_std", "mean_error"}

var ensembleHeader = []string{"storm", "valid_time", "temperature"}

var scoredHeader = []string{"storm", "valid_time", "obs_temperature", "model_mean", "model_std", "mean_error", "phi", "rho", "BCI", "n_members"}

// LoadMatched reads the matched forecast dataset in file order.
func LoadMatched(path string) ([]domain.MatchedRecord, error) {
	rows, colIdx, err := readTable(path, "matched dataset", matchedHeader)
	if err != nil {
		return nil, err
	}

	records := make([]domain.MatchedRecord, 0, len(rows))
	for i, row := range rows {
		p := rowParser{name: "matched dataset", row: row, line: i + 2, colIdx: colIdx}
		rec := domain.MatchedRecord{
			Storm:          p.text("storm"),
			ValidTime:      p.validTime(),
			ObsTemperature: p.number("obs_temperature"),
			ModelMean:      p.number("model_mean"),
			ModelStd:       p.number("model_std"),
			MeanError:      p.number("mean_error"),
		}
		if p.err != nil {
			return nil, p.err
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadEnsemble reads the ensemble dataset in file order.
func LoadEnsemble(path string) ([]domain.EnsembleRow, error) {
	rows, colIdx, err := readTable(path, "ensemble dataset", ensembleHeader)
	if err != nil {
		return nil, err
	}

	out := make([]domain.EnsembleRow, 0, len(rows))
	for i, row := range rows {
		p := rowParser{name: "ensemble dataset", row: row, line: i + 2, colIdx: colIdx}
		r := domain.EnsembleRow{
			Storm:       p.text("storm"),
			ValidTime:   p.validTime(),
			Temperature: p.number("temperature"),
		}
		if p.err != nil {
			return nil, p.err
		}
		out = append(out, r)
	}
	return out, nil
}

// LoadScored reads a scored dataset produced by WriteScored.
func LoadScored(path string) ([]domain.ScoredRecord, error) {
	rows, colIdx, err := readTable(path, "scored dataset", scoredHeader)
	if err != nil {
		return nil, err
	}

	records := make([]domain.ScoredRecord, 0, len(rows))
	for i, row := range rows {
		p := rowParser{name: "scored dataset", row: row, line: i + 2, colIdx: colIdx}
		rec := domain.ScoredRecord{
			MatchedRecord: domain.MatchedRecord{
				Storm:          p.text("storm"),
				ValidTime:      p.validTime(),
				ObsTemperature: p.number("obs_temperature"),
				ModelMean:      p.number("model_mean"),
				ModelStd:       p.number("model_std"),
				MeanError:      p.number("mean_error"),
			},
			Phi:         p.number("phi"),
			Rho:         p.number("rho"),
			BCI:         p.number("BCI"),
			MemberCount: p.count("n_members"),
		}
		if p.err != nil {
			return nil, p.err
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteMatched writes the matched forecast dataset.
func WriteMatched(path string, records []domain.MatchedRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Storm,
			formatValidTime(r.ValidTime),
			formatNumber(r.ObsTemperature),
			formatNumber(r.ModelMean),
			formatNumber(r.ModelStd),
			formatNumber(r.MeanError),
		})
	}
	return writeTable(path, matchedHeader, rows)
}

// WriteEnsemble writes the ensemble dataset.
func WriteEnsemble(path string, rows []domain.EnsembleRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Storm,
			formatValidTime(r.ValidTime),
			formatNumber(r.Temperature),
		})
	}
	return writeTable(path, ensembleHeader, out)
}

// WriteScored writes the scored dataset in record order.
func WriteScored(path string, records []domain.ScoredRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Storm,
			formatValidTime(r.ValidTime),
			formatNumber(r.ObsTemperature),
			formatNumber(r.ModelMean),
			formatNumber(r.ModelStd),
			formatNumber(r.MeanError),
			formatNumber(r.Phi),
			formatNumber(r.Rho),
			formatNumber(r.BCI),
			strconv.Itoa(r.MemberCount),
		})
	}
	return writeTable(path, scoredHeader, rows)
}

// ModelAUC is one row of the baseline comparison output.
type ModelAUC struct {
	Model string
	AUC   float64
}

// WriteBaseline writes the baseline comparison results.
func WriteBaseline(path string, results []ModelAUC) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Model, formatNumber(r.AUC)})
	}
	return writeTable(path, []string{"Model", "AUC"}, rows)
}

// readTable loads a CSV file, validates that every required column is
// present, and returns the data rows plus a name-to-index map.
func readTable(path, name string, required []string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s %s: missing header row", name, path)
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		colIdx[h] = i
	}
	for _, col := range required {
		if _, ok := colIdx[col]; !ok {
			return nil, nil, fmt.Errorf("%s %s: missing column %q", name, path, col)
		}
	}

	return rows[1:], colIdx, nil
}

func writeTable(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// rowParser accumulates the first parse error for a row so record
// construction can stay declarative.
type rowParser struct {
	name   string
	row    []string
	line   int
	colIdx map[string]int
	err    error
}

func (p *rowParser) field(col string) string {
	i, ok := p.colIdx[col]
	if !ok || i >= len(p.row) {
		p.fail(col, fmt.Errorf("missing value"))
		return ""
	}
	return p.row[i]
}

func (p *rowParser) text(col string) string {
	v := p.field(col)
	if v == "" && p.err == nil {
		p.fail(col, fmt.Errorf("empty value"))
	}
	return v
}

func (p *rowParser) number(col string) float64 {
	s := p.field(col)
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(col, err)
		return 0
	}
	return v
}

func (p *rowParser) count(col string) int {
	s := p.field(col)
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.fail(col, err)
		return 0
	}
	return v
}

func (p *rowParser) validTime() time.Time {
	s := p.field("valid_time")
	if p.err != nil {
		return time.Time{}
	}
	t, err := parseValidTime(s)
	if err != nil {
		p.fail("valid_time", err)
		return time.Time{}
	}
	return t
}

func (p *rowParser) fail(col string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s row %d: column %q: %w", p.name, p.line, col, err)
	}
}

// validTimeLayouts are the accepted input forms, tried in order. Forms
// without a zone are read as UTC.
var validTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseValidTime(s string) (time.Time, error) {
	for _, layout := range validTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func formatValidTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
