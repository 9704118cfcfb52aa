package tigge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/storm-forecast-skill/internal/manifest"
)

// BatchSummary counts the outcome of one manifest run.
type BatchSummary struct {
	Completed int
	Skipped   int
	Failed    int
	Bytes     int64
}

// RunBatch retrieves every storm/origin pair in the manifest into
// outDir, one file per pair named <storm>_<origin>.grib. A pair whose
// file is already on disk is skipped, so a partially failed batch can
// be re-run without re-queueing hours of archive waits. Failures are
// isolated: a quota error or a missing field combination is logged and
// counted, and the batch moves on. Cancelling the context stops the
// batch after the in-flight retrieval.
func (c *Client) RunBatch(ctx context.Context, m *manifest.Manifest, outDir string) BatchSummary {
	var summary BatchSummary
	total := len(m.Storms) * len(m.Dataset.Origins)
	done := 0

	for _, storm := range m.Storms {
		for _, origin := range m.Dataset.Origins {
			done++
			target := filepath.Join(outDir, fmt.Sprintf("%s_%s.grib", strings.ToLower(storm.Name), origin))

			if info, err := os.Stat(target); err == nil && info.Size() > 0 {
				summary.Skipped++
				c.completed.Add(1)
				c.logger.Info("already on disk, skipping",
					"storm", storm.Name, "origin", origin, "target", target)
				continue
			}

			c.logger.Info("retrieving",
				"storm", storm.Name,
				"origin", origin,
				"dates", storm.Dates,
				"progress", fmt.Sprintf("%d/%d", done, total))

			n, err := c.Retrieve(ctx, BuildRequest(m.Dataset, storm, origin), target)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Info("fetch cancelled",
						"completed", summary.Completed, "failed", summary.Failed)
					return summary
				}
				summary.Failed++
				c.logger.Error("retrieval failed",
					"storm", storm.Name, "origin", origin, "error", err)
				continue
			}

			summary.Completed++
			summary.Bytes += n
			c.logger.Info("retrieval complete",
				"storm", storm.Name, "origin", origin, "bytes", n, "target", target)
		}
	}
	return summary
}

// CheckReadiness reports ready once at least one retrieval has landed
// on disk.
func (c *Client) CheckReadiness(_ context.Context) error {
	if c.completed.Load() == 0 {
		return errors.New("no retrieval completed yet")
	}
	return nil
}
