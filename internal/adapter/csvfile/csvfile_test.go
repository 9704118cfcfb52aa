package csvfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-forecast-skill/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMatched(t *testing.T) {
	t.Run("reads tabulation output in file order", func(t *testing.T) {
		path := writeFile(t, "matched.csv",
			"storm,valid_time,obs_temperature,model_mean,model_std,mean_error\n"+
				"Eunice,2022-02-18 06:00:00,281.4,282.1,0.9,0.7\n"+
				"Eunice,2022-02-18 12:00:00,282.0,281.6,1.1,0.4\n")

		records, err := LoadMatched(path)
		require.NoError(t, err)

		want := []domain.MatchedRecord{
			{
				Storm:          "Eunice",
				ValidTime:      time.Date(2022, 2, 18, 6, 0, 0, 0, time.UTC),
				ObsTemperature: 281.4,
				ModelMean:      282.1,
				ModelStd:       0.9,
				MeanError:      0.7,
			},
			{
				Storm:          "Eunice",
				ValidTime:      time.Date(2022, 2, 18, 12, 0, 0, 0, time.UTC),
				ObsTemperature: 282.0,
				ModelMean:      281.6,
				ModelStd:       1.1,
				MeanError:      0.4,
			},
		}
		if diff := cmp.Diff(want, records); diff != "" {
			t.Errorf("records mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("accepts extra columns in any order", func(t *testing.T) {
		path := writeFile(t, "matched.csv",
			"origin,mean_error,model_std,model_mean,obs_temperature,valid_time,storm\n"+
				"ecmf,0.7,0.9,282.1,281.4,2022-02-18T06:00:00Z,Eunice\n")

		records, err := LoadMatched(path)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Eunice", records[0].Storm)
		assert.Equal(t, 0.7, records[0].MeanError)
	})

	t.Run("missing column", func(t *testing.T) {
		path := writeFile(t, "matched.csv", "storm,valid_time,obs_temperature\nEunice,2022-02-18 06:00:00,281.4\n")

		_, err := LoadMatched(path)
		assert.ErrorContains(t, err, `missing column "model_mean"`)
	})

	t.Run("malformed value names the row and column", func(t *testing.T) {
		path := writeFile(t, "matched.csv",
			"storm,valid_time,obs_temperature,model_mean,model_std,mean_error\n"+
				"Eunice,2022-02-18 06:00:00,281.4,282.1,0.9,0.7\n"+
				"Eunice,2022-02-18 12:00:00,not-a-number,281.6,1.1,0.4\n")

		_, err := LoadMatched(path)
		require.Error(t, err)
		assert.ErrorContains(t, err, "row 3")
		assert.ErrorContains(t, err, `"obs_temperature"`)
	})

	t.Run("unparsable valid_time", func(t *testing.T) {
		path := writeFile(t, "matched.csv",
			"storm,valid_time,obs_temperature,model_mean,model_std,mean_error\n"+
				"Eunice,18/02/2022,281.4,282.1,0.9,0.7\n")

		_, err := LoadMatched(path)
		assert.ErrorContains(t, err, `unrecognized time "18/02/2022"`)
	})

	t.Run("missing file names the dataset", func(t *testing.T) {
		_, err := LoadMatched(filepath.Join(t.TempDir(), "absent.csv"))
		assert.ErrorContains(t, err, "matched dataset")
	})
}

func TestLoadEnsemble(t *testing.T) {
	path := writeFile(t, "ensemble.csv",
		"storm,valid_time,temperature\n"+
			"Eunice,2022-02-18 06:00:00,281.2\n"+
			"Eunice,2022-02-18 06:00:00,280.9\n"+
			"Franklin,2022-02-20 00:00:00,278.5\n"+
			"Eunice,2022-02-18 06:00:00,281.5\n")

	rows, err := LoadEnsemble(path)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	table := domain.BuildMemberTable(rows)
	at := time.Date(2022, 2, 18, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, []float64{281.2, 280.9, 281.5}, table.Members("Eunice", at))
	assert.Equal(t, []float64{278.5}, table.Members("Franklin", time.Date(2022, 2, 20, 0, 0, 0, 0, time.UTC)))
}

func TestScoredRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scored.csv")
	records := []domain.ScoredRecord{
		{
			MatchedRecord: domain.MatchedRecord{
				Storm:          "Eunice",
				ValidTime:      time.Date(2022, 2, 18, 6, 0, 0, 0, time.UTC),
				ObsTemperature: 281.4,
				ModelMean:      282.1,
				ModelStd:       0.9,
				MeanError:      0.7,
			},
			Phi:         0.65,
			Rho:         1,
			BCI:         0.8062257748298549,
			MemberCount: 10,
		},
		{
			MatchedRecord: domain.MatchedRecord{
				Storm:          "Franklin",
				ValidTime:      time.Date(2022, 2, 20, 18, 0, 0, 0, time.UTC),
				ObsTemperature: 278.0,
				ModelMean:      278.2,
				ModelStd:       0.4,
				MeanError:      0.2,
			},
			Phi:         0.9,
			Rho:         1,
			BCI:         0.9486832980505138,
			MemberCount: 9,
		},
	}

	require.NoError(t, WriteScored(path, records))

	got, err := LoadScored(path)
	require.NoError(t, err)
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.csv")
	require.NoError(t, WriteBaseline(path, []ModelAUC{
		{Model: "Spread only", AUC: 0.741},
		{Model: "BCI only", AUC: 0.699},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Model,AUC\nSpread only,0.741\nBCI only,0.699\n", string(data))
}

func TestParseValidTimeForms(t *testing.T) {
	want := time.Date(2022, 2, 18, 6, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2022-02-18T06:00:00Z",
		"2022-02-18T07:00:00+01:00",
		"2022-02-18 06:00:00",
		"2022-02-18T06:00:00",
	} {
		got, err := parseValidTime(s)
		require.NoError(t, err, s)
		assert.True(t, got.Equal(want), "%s parsed as %s", s, got)
	}
}
