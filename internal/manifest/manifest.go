// Package manifest loads the storm manifest: the named-storm date
// ranges and shared dataset parameters that drive archive retrieval and
// fixture generation.
package manifest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// dateRangeSep joins the two ends of an archive date range, as in
// "2022-02-17/to/2022-02-19".
const dateRangeSep = "/to/"

const dayLayout = "2006-01-02"

// Manifest pairs the storms to retrieve with the dataset parameters
// shared by every request.
type Manifest struct {
	Dataset Dataset `yaml:"dataset"`
	Storms  []Storm `yaml:"storms"`
}

// Dataset holds retrieval parameters. Grid and area keep the archive's
// own slash-delimited encoding; omitted fields fall back to the
// operational defaults (2 m temperature over the UK box, ten perturbed
// members from the ECMWF and CMC models).
type Dataset struct {
	Origins   []string `yaml:"origins"`
	Param     string   `yaml:"param"`
	Steps     []int    `yaml:"steps"`
	InitTimes []string `yaml:"init_times"`
	Members   int      `yaml:"members"`
	Grid      string   `yaml:"grid"`
	Area      string   `yaml:"area"`
}

// Storm names one storm and its archive date range.
type Storm struct {
	Name  string `yaml:"name"`
	Dates string `yaml:"dates"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.Dataset.applyDefaults()
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

func (d *Dataset) applyDefaults() {
	if len(d.Origins) == 0 {
		d.Origins = []string{"ecmf", "cwao"}
	}
	if d.Param == "" {
		d.Param = "2t"
	}
	if len(d.Steps) == 0 {
		d.Steps = []int{0, 6, 12, 18, 24}
	}
	if len(d.InitTimes) == 0 {
		d.InitTimes = []string{"00:00:00", "06:00:00", "12:00:00", "18:00:00"}
	}
	if d.Members == 0 {
		d.Members = 10
	}
	if d.Grid == "" {
		d.Grid = "0.25/0.25"
	}
	if d.Area == "" {
		d.Area = "53/-2/52/-1"
	}
}

func (m *Manifest) validate() error {
	if len(m.Storms) == 0 {
		return fmt.Errorf("no storms defined")
	}
	for i, s := range m.Storms {
		if s.Name == "" {
			return fmt.Errorf("storm %d: missing name", i)
		}
		if _, _, err := s.Range(); err != nil {
			return fmt.Errorf("storm %q: %w", s.Name, err)
		}
	}

	d := m.Dataset
	for _, origin := range d.Origins {
		if origin == "" {
			return fmt.Errorf("invalid origins: empty origin code")
		}
	}
	for _, step := range d.Steps {
		if step < 0 {
			return fmt.Errorf("invalid step %d: must not be negative", step)
		}
	}
	for _, it := range d.InitTimes {
		if _, err := time.Parse("15:04:05", it); err != nil {
			return fmt.Errorf("invalid init time %q: must be HH:MM:SS", it)
		}
	}
	if d.Members < 1 || d.Members > 50 {
		return fmt.Errorf("invalid members %d: must be between 1 and 50", d.Members)
	}
	return nil
}

// Range parses the storm's date range. A bare date is a single-day
// range. Both ends are midnight UTC.
func (s Storm) Range() (start, end time.Time, err error) {
	from, to, found := strings.Cut(s.Dates, dateRangeSep)
	if !found {
		to = from
	}
	start, err = time.Parse(dayLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %q: %w", s.Dates, err)
	}
	end, err = time.Parse(dayLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %q: %w", s.Dates, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %q: end before start", s.Dates)
	}
	return start, end, nil
}
