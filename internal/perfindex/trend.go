package perfindex

import (
	"context"
	"math"
	"time"

	"github.com/2beens/perfindex/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

const (
	trendWindowDays      = 14
	trendMinEntries      = 3
	trendRecentPoints    = 5
	trendChangeThreshold = 5.0

	WeeklyPeriodDays  = 7
	MonthlyPeriodDays = 30
)

// Analyzer derives trends and period comparisons from the stored history.
type Analyzer struct {
	history *HistoryManager
	now     func() time.Time
}

func NewAnalyzer(history *HistoryManager, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		history: history,
		now:     now,
	}
}

// ComputeTrend classifies the direction of the user's score over the last two weeks.
// Entries of the current UTC day are ignored, the current score replaces them.
func (a *Analyzer) ComputeTrend(ctx context.Context, userID string, currentScore int) Trend {
	ctx, span := tracing.GlobalTracer.Start(ctx, "perfindex.trend.compute")
	defer span.End()

	now := a.now().UTC()
	today := now.Format(time.DateOnly)

	var scores []float64
	for _, e := range a.history.LoadHistory(ctx, userID, trendWindowDays) {
		if e.Timestamp.UTC().Format(time.DateOnly) == today {
			continue
		}
		scores = append(scores, float64(e.Score))
	}
	span.SetAttributes(attribute.Int("history.entries", len(scores)))

	if len(scores) < trendMinEntries {
		return TrendStable
	}

	series := append(scores, float64(currentScore))
	recentCount := min(trendRecentPoints, len(series)-1)
	split := len(series) - recentCount
	diff := mean(series[split:]) - mean(series[:split])

	trend := trendFromDelta(diff, trendChangeThreshold)
	span.SetAttributes(attribute.String("trend", string(trend)))
	return trend
}

// CompareWithPrevious compares the latest score with the latest one recorded before
// the last `days` days. Returns nil when either period has no entries.
func (a *Analyzer) CompareWithPrevious(ctx context.Context, userID string, days int) *ComparisonResult {
	ctx, span := tracing.GlobalTracer.Start(ctx, "perfindex.trend.compare")
	defer span.End()
	span.SetAttributes(attribute.Int("days", days))

	if days <= 0 {
		return nil
	}

	entries := a.history.LoadHistory(ctx, userID, 2*days)
	cutoff := a.now().UTC().Add(-time.Duration(days) * day)

	var previous, current []HistoryEntry
	for _, e := range entries {
		if e.Timestamp.Before(cutoff) {
			previous = append(previous, e)
		} else {
			current = append(current, e)
		}
	}
	if len(previous) == 0 || len(current) == 0 {
		return nil
	}

	latest := current[len(current)-1]
	latestPrevious := previous[len(previous)-1]
	difference := latest.Score - latestPrevious.Score

	var percentChange float64
	if latestPrevious.Score != 0 {
		percentChange = math.Round(float64(difference)/float64(latestPrevious.Score)*100*10) / 10
	}

	return &ComparisonResult{
		Current:       latest.Score,
		Previous:      latestPrevious.Score,
		Difference:    difference,
		PercentChange: percentChange,
		Trend:         trendFromDelta(float64(difference), 0),
		PeriodDays:    days,
	}
}

func trendFromDelta(delta, threshold float64) Trend {
	switch {
	case delta > threshold:
		return TrendImproving
	case delta < -threshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
