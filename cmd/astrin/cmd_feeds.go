package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"astrin/internal/feeds"
)

var feedsTimeout time.Duration

// feedsCmd fetches every feed once
var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Fetch every feed once and print a summary",
	Long: `Feeds fetches all five feeds concurrently from the Astrin backend and
prints one line per feed. It exits non-zero if any feed failed, which makes
it usable as a health check.`,
	Args: cobra.NoArgs,
	RunE: runFeeds,
}

type feedResult struct {
	info    feeds.Info
	summary string
	err     error
	elapsed time.Duration
}

func runFeeds(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if feedsTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, feedsTimeout)
		defer cancel()
	}

	results, err := fetchAll(ctx, feeds.NewClient(newAPIClient()))
	printFeedSummary(cmd.OutOrStdout(), results)
	return err
}

// fetchAll fetches every catalog feed concurrently. All feeds are attempted
// even when one fails; the returned error is the first failure.
func fetchAll(ctx context.Context, c *feeds.Client) ([]feedResult, error) {
	results := make([]feedResult, len(feeds.Catalog))
	var g errgroup.Group

	for i, info := range feeds.Catalog {
		g.Go(func() error {
			start := time.Now()
			summary, err := summarizeFeed(ctx, c, info.ID)
			results[i] = feedResult{info: info, summary: summary, err: err, elapsed: time.Since(start)}
			if err != nil {
				logger.Debug("feed failed", zap.String("feed", string(info.ID)), zap.Error(err))
				return fmt.Errorf("%s: %w", info.Name, err)
			}
			return nil
		})
	}

	return results, g.Wait()
}

func summarizeFeed(ctx context.Context, c *feeds.Client, id feeds.ID) (string, error) {
	switch id {
	case feeds.NearEarthObjects:
		neos, err := c.NearEarthObjects(ctx)
		if err != nil {
			return "", err
		}
		hazardous := 0
		for _, n := range neos {
			if n.Severity == feeds.SeverityHigh {
				hazardous++
			}
		}
		return fmt.Sprintf("%d objects, %d high severity", len(neos), hazardous), nil
	case feeds.PictureOfTheDay:
		p, err := c.PictureOfDay(ctx)
		if err != nil {
			return "", err
		}
		if p.Title == "" {
			return "no picture", nil
		}
		return fmt.Sprintf("%q (%s)", p.Title, p.Date), nil
	case feeds.MarsWeather:
		sols, err := c.MarsWeather(ctx)
		if err != nil {
			return "", err
		}
		if len(sols) == 0 {
			return "no sols", nil
		}
		return fmt.Sprintf("sol %s, %s to %s °C", sols[0].Sol, orDash(sols[0].MinTemp.String()), orDash(sols[0].MaxTemp.String())), nil
	case feeds.StationLocation:
		pos, err := c.StationPosition(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("lat %s, lon %s", pos.Position.Latitude, pos.Position.Longitude), nil
	case feeds.Launches:
		launches, err := c.Launches(ctx)
		if err != nil {
			return "", err
		}
		if len(launches) == 0 {
			return "no upcoming launches", nil
		}
		return fmt.Sprintf("%d upcoming, next %s", len(launches), launches[0].Name), nil
	}
	return "", fmt.Errorf("unknown feed %q", id)
}

func printFeedSummary(w io.Writer, results []feedResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range results {
		status, detail := "ok", r.summary
		if r.err != nil {
			status, detail = "FAIL", r.err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.info.Name, status, r.elapsed.Round(time.Millisecond), detail)
	}
	tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
