package tigge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/storm-forecast-skill/internal/manifest"
)

func TestBuildRequest(t *testing.T) {
	ds := manifest.Dataset{
		Origins:   []string{"ecmf", "cwao"},
		Param:     "2t",
		Steps:     []int{0, 6, 12, 18, 24},
		InitTimes: []string{"00:00:00", "06:00:00", "12:00:00", "18:00:00"},
		Members:   10,
		Grid:      "0.25/0.25",
		Area:      "53/-2/52/-1",
	}
	storm := manifest.Storm{Name: "Eunice", Dates: "2022-02-17/to/2022-02-19"}

	got := BuildRequest(ds, storm, "cwao")

	want := Request{
		Class:   "ti",
		Dataset: "tigge",
		Date:    "2022-02-17/to/2022-02-19",
		Expver:  "prod",
		Levtype: "sfc",
		Origin:  "cwao",
		Param:   "2t",
		Step:    "0/6/12/18/24",
		Time:    "00:00:00/06:00:00/12:00:00/18:00:00",
		Type:    "pf",
		Number:  "1/2/3/4/5/6/7/8/9/10",
		Grid:    "0.25/0.25",
		Area:    "53/-2/52/-1",
		Expect:  "any",
	}
	assert.Equal(t, want, got)
}

func TestMemberList(t *testing.T) {
	assert.Equal(t, "1", memberList(1))
	assert.Equal(t, "1/2/3", memberList(3))
}
