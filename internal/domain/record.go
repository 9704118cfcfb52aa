package domain

import "time"

// MinMembers is the smallest ensemble that can be scored. Directional
// agreement over fewer than four members is dominated by single-member
// noise, so the pipeline skips those instances rather than emitting a
// meaningless index.
const MinMembers = 4

// MatchedRecord is one row of the matched forecast dataset: an ensemble
// forecast instance paired with its verifying observation and the
// aggregates computed during tabulation. Records are read-only inputs
// to the scoring pipeline.
type MatchedRecord struct {
	Storm          string
	ValidTime      time.Time
	ObsTemperature float64 // verifying observation, Kelvin
	ModelMean      float64 // ensemble mean forecast
	ModelStd       float64 // ensemble spread (population std of members)
	MeanError      float64 // |ensemble mean - observation|
}

// Key returns the record's instance key.
func (r MatchedRecord) Key() InstanceKey {
	return NewInstanceKey(r.Storm, r.ValidTime)
}

// InstanceKey identifies one scoring instance: a named storm and an
// exact forecast valid time. The time is normalized to UTC text so keys
// compare reliably regardless of the source's location or monotonic
// clock readings.
type InstanceKey struct {
	Storm     string
	ValidTime string
}

// NewInstanceKey builds the key for a storm and valid time.
func NewInstanceKey(storm string, validTime time.Time) InstanceKey {
	return InstanceKey{
		Storm:     storm,
		ValidTime: validTime.UTC().Format(time.RFC3339Nano),
	}
}

// EnsembleRow is one row of the ensemble dataset: a single member's
// temperature forecast for an instance.
type EnsembleRow struct {
	Storm       string
	ValidTime   time.Time
	Temperature float64
}

// MemberTable maps scoring instances to their ensemble member
// temperatures. Members keep the order they appeared in the source
// file.
type MemberTable map[InstanceKey][]float64

// BuildMemberTable groups ensemble rows into a member table, keeping
// row order within each instance.
func BuildMemberTable(rows []EnsembleRow) MemberTable {
	table := make(MemberTable, len(rows))
	for _, r := range rows {
		table.Add(r.Storm, r.ValidTime, r.Temperature)
	}
	return table
}

// Add appends one member temperature to the instance's member set.
func (t MemberTable) Add(storm string, validTime time.Time, temperature float64) {
	key := NewInstanceKey(storm, validTime)
	t[key] = append(t[key], temperature)
}

// Members returns the member set for an instance, or nil if the
// ensemble file had no rows for it.
func (t MemberTable) Members(storm string, validTime time.Time) []float64 {
	return t[NewInstanceKey(storm, validTime)]
}

// ScoredRecord is a MatchedRecord with its reliability scores attached.
// The pipeline creates each scored record exactly once; nothing mutates
// one afterwards.
type ScoredRecord struct {
	MatchedRecord
	Phi         float64
	Rho         float64
	BCI         float64
	MemberCount int
}
