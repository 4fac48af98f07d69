package perfindex

import "math"

const (
	insightFirstWorkout = "Start your first workout to begin tracking!"
	insightConsistency  = "Try to workout more regularly for better results"
	insightPerformance  = "Excellent workout intensity! Keep it up"
	insightVariety      = "Consider mixing different types of workouts"
	insightKeepGoing    = "Keep up the great work!"
)

func insightsFor(c ComponentScores, workoutCount int) []string {
	if workoutCount == 0 {
		return []string{insightFirstWorkout}
	}

	var insights []string
	if c.Consistency < 50 {
		insights = append(insights, insightConsistency)
	}
	if c.Performance > 80 {
		insights = append(insights, insightPerformance)
	}
	if c.Variety < 40 {
		insights = append(insights, insightVariety)
	}
	if len(insights) == 0 {
		insights = append(insights, insightKeepGoing)
	}
	return insights
}

// averageCalories is the mean burned calories over all records, to one decimal.
func averageCalories(records []record) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.calories
	}
	return math.Round(sum/float64(len(records))*10) / 10
}
