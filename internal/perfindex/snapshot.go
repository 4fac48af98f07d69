package perfindex

import "time"

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// IndexSnapshot is one computed index, stored as the user's current index.
type IndexSnapshot struct {
	Score        int             `json:"score"`
	Level        string          `json:"level"`
	Components   ComponentScores `json:"components"`
	Trend        Trend           `json:"trend"`
	Timestamp    time.Time       `json:"timestamp"`
	WorkoutCount int             `json:"workoutCount"`
}

// HistoryEntry is the retained daily view of a snapshot.
type HistoryEntry struct {
	Score        int             `json:"score"`
	Level        string          `json:"level"`
	Components   ComponentScores `json:"components"`
	Trend        Trend           `json:"trend"`
	Timestamp    time.Time       `json:"timestamp"`
	WorkoutCount int             `json:"workoutCount"`
}

func (s IndexSnapshot) historyEntry() HistoryEntry {
	return HistoryEntry{
		Score:        s.Score,
		Level:        s.Level,
		Components:   s.Components,
		Trend:        s.Trend,
		Timestamp:    s.Timestamp,
		WorkoutCount: s.WorkoutCount,
	}
}

type ComparisonResult struct {
	Current       int     `json:"current"`
	Previous      int     `json:"previous"`
	Difference    int     `json:"difference"`
	PercentChange float64 `json:"percentChange"`
	Trend         Trend   `json:"trend"`
	PeriodDays    int     `json:"periodDays"`
}

type PeriodData struct {
	Weekly  *ComparisonResult `json:"weekly"`
	Monthly *ComparisonResult `json:"monthly"`
}

// IndexResult is the outcome of a calculation.
type IndexResult struct {
	Score           int             `json:"score"`
	Level           string          `json:"level"`
	Components      ComponentScores `json:"components"`
	Trend           Trend           `json:"trend"`
	LastUpdated     time.Time       `json:"lastUpdated"`
	WorkoutCount    int             `json:"workoutCount"`
	AverageCalories float64         `json:"averageCalories"`
	Insights        []string        `json:"insights"`
	PeriodData      PeriodData      `json:"periodData"`
}

type HistoryExport struct {
	UserID     string         `json:"userId"`
	ExportedAt time.Time      `json:"exportedAt"`
	Current    *IndexSnapshot `json:"current"`
	History    []HistoryEntry `json:"history"`
}

// DefaultIndex is returned when a calculation cannot run at all.
func DefaultIndex(now time.Time) *IndexResult {
	return &IndexResult{
		Score: 0,
		Level: LevelGettingStarted,
		Components: ComponentScores{
			Improvement: neutralScore,
		},
		Trend:       TrendStable,
		LastUpdated: now,
		Insights:    []string{},
	}
}
