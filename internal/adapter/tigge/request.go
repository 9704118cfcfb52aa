package tigge

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-forecast-skill/internal/manifest"
)

// Request is one archive retrieval in the archive's own keyword
// vocabulary. Multi-valued fields are slash-delimited.
type Request struct {
	Class   string `json:"class"`
	Dataset string `json:"dataset"`
	Date    string `json:"date"`
	Expver  string `json:"expver"`
	Levtype string `json:"levtype"`
	Origin  string `json:"origin"`
	Param   string `json:"param"`
	Step    string `json:"step"`
	Time    string `json:"time"`
	Type    string `json:"type"`
	Number  string `json:"number"`
	Grid    string `json:"grid"`
	Area    string `json:"area"`
	Expect  string `json:"expect"`
}

// BuildRequest assembles the retrieval request for one storm and model
// origin: perturbed surface forecasts from the operational TIGGE
// stream. Expect "any" accepts partial field counts, since not every
// origin archives every init time.
func BuildRequest(d manifest.Dataset, storm manifest.Storm, origin string) Request {
	return Request{
		Class:   "ti",
		Dataset: "tigge",
		Date:    storm.Dates,
		Expver:  "prod",
		Levtype: "sfc",
		Origin:  origin,
		Param:   d.Param,
		Step:    joinInts(d.Steps),
		Time:    strings.Join(d.InitTimes, "/"),
		Type:    "pf",
		Number:  memberList(d.Members),
		Grid:    d.Grid,
		Area:    d.Area,
		Expect:  "any",
	}
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "/")
}

// memberList enumerates perturbed member numbers 1..n.
func memberList(n int) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = strconv.Itoa(i + 1)
	}
	return strings.Join(parts, "/")
}
