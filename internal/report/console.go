// Package report renders backtest output as console tables.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/hooplytics/courtline/internal/backtest"
	"github.com/hooplytics/courtline/internal/confidence"
	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/tracking"
)

// Console writes formatted reports to a writer.
type Console struct {
	out io.Writer
}

// NewConsole creates a reporter writing to stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter creates a reporter for tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintSummary prints the run-level accuracy summary.
func (c *Console) PrintSummary(result *backtest.Result) {
	s := result.Summary
	fmt.Fprintf(c.out, "\n=== BACKTEST %s ===\n", result.RunID)
	fmt.Fprintf(c.out, "  Predictions:   %d (ties skipped: %d, gated: %d)\n",
		s.Count, result.SkippedTies, result.SkippedGate)
	if s.Count == 0 {
		fmt.Fprintln(c.out, "  No predictions recorded.")
		return
	}

	fmt.Fprintf(c.out, "  MAE:           %.2f points\n", s.MAE)
	fmt.Fprintf(c.out, "  RMSE:          %.2f points\n", s.RMSE)
	fmt.Fprintf(c.out, "  Mean bias:     %+.2f points\n", s.MeanBias)
	fmt.Fprintf(c.out, "  Straight up:   %.1f%%\n", s.StraightUp*100)
	if s.ATSAccuracy != nil {
		fmt.Fprintf(c.out, "  ATS:           %.1f%% over %d games (%d pushes)\n",
			*s.ATSAccuracy*100, s.ATSGames, s.Pushes)
	} else {
		fmt.Fprintln(c.out, "  ATS:           no games with lines")
	}
}

// PrintBuckets prints the situational error partition.
func (c *Console) PrintBuckets(buckets []models.BucketStats) {
	if len(buckets) == 0 {
		return
	}

	fmt.Fprintln(c.out, "\n=== BUCKET ANALYSIS ===")
	table := tablewriter.NewWriter(c.out)
	table.Header("Bucket", "Games", "MAE", "Pred", "Actual", "Bias", "Flag")

	for _, b := range buckets {
		flag := ""
		if b.Flagged {
			flag = "BIAS"
		}
		table.Append(
			b.Name,
			fmt.Sprintf("%d", b.Count),
			fmt.Sprintf("%.2f", b.MAE),
			fmt.Sprintf("%+.2f", b.MeanPredicted),
			fmt.Sprintf("%+.2f", b.MeanActual),
			fmt.Sprintf("%+.2f", b.Bias),
			flag,
		)
	}
	table.Render()
}

// PrintTracker prints the forward-testing ledger: pending count,
// accuracy over settled games, and the most recent results.
func (c *Console) PrintTracker(ledger *tracking.Ledger) {
	settled := ledger.Settled()
	s := tracking.Summarize(ledger)

	fmt.Fprintln(c.out, "\n=== PREDICTION TRACKER ===")
	fmt.Fprintf(c.out, "  Tracked:       %d (%d pending)\n",
		len(ledger.Predictions), len(ledger.Predictions)-len(settled))
	if s.Count == 0 {
		fmt.Fprintln(c.out, "  No settled predictions yet.")
		return
	}

	fmt.Fprintf(c.out, "  MAE:           %.2f points\n", s.MAE)
	fmt.Fprintf(c.out, "  Straight up:   %.1f%% over %d games\n", s.StraightUp*100, s.Count)
	if s.ATSAccuracy != nil {
		fmt.Fprintf(c.out, "  ATS:           %.1f%% over %d games (%d pushes), break-even 52.4%%\n",
			*s.ATSAccuracy*100, s.ATSGames, s.Pushes)
	} else {
		fmt.Fprintln(c.out, "  ATS:           no games with lines")
	}

	sort.Slice(settled, func(i, j int) bool { return settled[i].Date.After(settled[j].Date) })
	if len(settled) > 10 {
		settled = settled[:10]
	}

	fmt.Fprintln(c.out, "\n=== RECENT RESULTS ===")
	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Matchup", "Pred", "Actual", "SU", "ATS")

	for _, p := range settled {
		table.Append(
			p.Date.Format("2006-01-02"),
			fmt.Sprintf("%s @ %s", p.AwayTeam, p.HomeTeam),
			fmt.Sprintf("%+.1f", p.Predicted),
			fmt.Sprintf("%+d", p.ActualMargin),
			mark(p.SUCorrect),
			mark(p.ATSCorrect),
		)
	}
	table.Render()
}

func mark(outcome *bool) string {
	switch {
	case outcome == nil:
		return "n/a"
	case *outcome:
		return "WIN"
	default:
		return "LOSS"
	}
}

// PrintWorst prints the n predictions the model missed by the most.
func (c *Console) PrintWorst(records []models.PredictionRecord, n int) {
	if len(records) == 0 || n <= 0 {
		return
	}

	sorted := make([]models.PredictionRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AbsError > sorted[j].AbsError
	})
	if n > len(sorted) {
		n = len(sorted)
	}

	fmt.Fprintf(c.out, "\n=== WORST %d PREDICTIONS ===\n", n)
	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Matchup", "Pred", "Actual", "Error")

	for _, r := range sorted[:n] {
		table.Append(
			r.Date.Format("2006-01-02"),
			fmt.Sprintf("%s @ %s", r.AwayTeam, r.HomeTeam),
			fmt.Sprintf("%+.1f", r.Predicted),
			fmt.Sprintf("%+d", r.ActualMargin),
			fmt.Sprintf("%.1f", r.AbsError),
		)
	}
	table.Render()
}

// PrintSegments prints the cover-rate segments with their stake
// recommendations. Stake fractions are shown as percentages of
// bankroll, rounded to basis points.
func (c *Console) PrintSegments(segments []models.SegmentStats, engine *confidence.Engine) {
	if len(segments) == 0 {
		return
	}

	fmt.Fprintln(c.out, "\n=== CONFIDENCE SEGMENTS ===")
	table := tablewriter.NewWriter(c.out)
	table.Header("Segment", "Record", "Rate", "95% CI", "Stake", "Kelly%")

	for _, s := range segments {
		rec := engine.ClassifySegment(s)
		stakePct := decimal.NewFromFloat(rec.Kelly).Mul(decimal.NewFromInt(100)).Round(2)
		table.Append(
			s.Name,
			s.Record(),
			fmt.Sprintf("%.3f", s.Rate),
			fmt.Sprintf("(%.3f, %.3f)", s.CILower, s.CIUpper),
			rec.Tier,
			stakePct.String(),
		)
	}
	table.Render()

	for _, s := range segments {
		rec := engine.ClassifySegment(s)
		if rec.Tier != confidence.TierPass {
			fmt.Fprintf(c.out, "  %s: %s\n", s.Name, rec.Reasoning)
		}
	}
}
