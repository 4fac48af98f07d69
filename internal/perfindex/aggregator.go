package perfindex

const (
	LevelEliteAthlete   = "Elite Athlete"
	LevelAdvanced       = "Advanced"
	LevelIntermediate   = "Intermediate"
	LevelDeveloping     = "Developing"
	LevelBeginner       = "Beginner"
	LevelGettingStarted = "Getting Started"
	LevelNewUser        = "New User"
)

const (
	weightConsistency = 0.25
	weightPerformance = 0.25
	weightImprovement = 0.20
	weightVariety     = 0.15
	weightIntensity   = 0.15
)

var levels = []struct {
	min   int
	label string
}{
	{90, LevelEliteAthlete},
	{75, LevelAdvanced},
	{60, LevelIntermediate},
	{45, LevelDeveloping},
	{30, LevelBeginner},
	{15, LevelGettingStarted},
	{0, LevelNewUser},
}

// Aggregate combines the components into the 0-100 index score.
func Aggregate(c ComponentScores) int {
	weighted := weightConsistency*float64(c.Consistency) +
		weightPerformance*float64(c.Performance) +
		weightImprovement*float64(c.Improvement) +
		weightVariety*float64(c.Variety) +
		weightIntensity*float64(c.Intensity)
	return roundScore(weighted)
}

// LevelFor maps a score to its label. Out of range scores are clamped first.
func LevelFor(score int) string {
	if score > 100 {
		score = 100
	}
	for _, l := range levels {
		if score >= l.min {
			return l.label
		}
	}
	return LevelNewUser
}
