package perfindex

import (
	"math"
	"time"
)

const (
	day = 24 * time.Hour

	recentWindowDays    = 30
	recentRecordsLimit  = 10
	minimumViableCount  = 3
	neutralScore        = 50
	improvementFullGain = 5.0 // percent month over month that maps to 100
)

// ComponentScores are the five sub-scores of the index, each in [0, 100].
type ComponentScores struct {
	Consistency int `json:"consistency"`
	Performance int `json:"performance"`
	Improvement int `json:"improvement"`
	Variety     int `json:"variety"`
	Intensity   int `json:"intensity"`
}

// computeComponents scores records sorted most recent first. An empty history
// scores zero on every component.
func computeComponents(records []record, now time.Time) ComponentScores {
	if len(records) == 0 {
		return ComponentScores{}
	}
	return ComponentScores{
		Consistency: consistencyScore(records, now),
		Performance: performanceScore(records),
		Improvement: improvementScore(records, now),
		Variety:     varietyScore(records, now),
		Intensity:   intensityScore(records),
	}
}

func consistencyScore(records []record, now time.Time) int {
	w := float64(len(recentRecords(records, now)))
	raw := w / recentWindowDays * 100
	if w < minimumViableCount {
		raw = w / minimumViableCount * 10
	}
	return roundScore(raw)
}

func performanceScore(records []record) int {
	latest := mostRecent(records, recentRecordsLimit)
	if len(latest) == 0 {
		return neutralScore
	}

	var actualSum, targetSum float64
	for _, r := range latest {
		actualSum += r.calories
		targetSum += targetCalories(r)
	}
	if targetSum <= 0 {
		return neutralScore
	}
	return roundScore(actualSum / targetSum * 100)
}

// targetCalories is the expected energy expenditure of a record for its subject.
func targetCalories(r record) float64 {
	return activityMET(r.activityType) * r.weightKg * (r.durationMinutes / 60) * ageAdjust(r.age) * genderAdjust(r.male)
}

func ageAdjust(age int) float64 {
	switch {
	case age > 65:
		return 0.8
	case age > 50:
		return 0.9
	case age < 20:
		return 1.1
	default:
		return 1.0
	}
}

func genderAdjust(male bool) float64 {
	if male {
		return 1.1
	}
	return 1.0
}

// improvementScore compares the average calories of the current calendar month (UTC)
// with the previous one.
func improvementScore(records []record, now time.Time) int {
	if len(records) < 2 {
		return neutralScore
	}

	currentMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	previousMonthStart := currentMonthStart.AddDate(0, -1, 0)

	var currentSum, previousSum float64
	var currentCount, previousCount int
	for _, r := range records {
		switch {
		case !r.occurredAt.Before(currentMonthStart):
			currentSum += r.calories
			currentCount++
		case !r.occurredAt.Before(previousMonthStart):
			previousSum += r.calories
			previousCount++
		}
	}
	if previousCount == 0 {
		return neutralScore
	}
	previousAvg := previousSum / float64(previousCount)
	if previousAvg == 0 {
		return neutralScore
	}

	var currentAvg float64
	if currentCount > 0 {
		currentAvg = currentSum / float64(currentCount)
	}
	percentChange := (currentAvg - previousAvg) / previousAvg * 100
	return roundScore(neutralScore + percentChange/improvementFullGain*100)
}

func varietyScore(records []record, now time.Time) int {
	recent := recentRecords(records, now)
	if len(recent) == 0 {
		return 0
	}

	distinct := make(map[string]struct{})
	for _, r := range recent {
		if r.activityType == "" {
			continue
		}
		distinct[r.activityType] = struct{}{}
	}
	return roundScore(float64(len(distinct)) / float64(CanonicalActivityCount) * 100)
}

func intensityScore(records []record) int {
	var zoneSum float64
	var usable int
	for _, r := range mostRecent(records, recentRecordsLimit) {
		maxHR := r.maxHeartRate()
		if maxHR <= 0 {
			continue
		}
		hr := r.heartRate
		if hr <= 0 {
			hr = maxHR * activityIntensityFraction(r.activityType, r.durationMinutes)
		}
		zoneSum += zoneScore(hr / maxHR)
		usable++
	}
	if usable == 0 {
		return neutralScore
	}
	return roundScore(zoneSum / float64(usable))
}

func zoneScore(ratio float64) float64 {
	switch {
	case ratio < 0.5:
		return 10
	case ratio < 0.6:
		return 20
	case ratio < 0.7:
		return 40
	case ratio < 0.8:
		return 70
	case ratio < 0.9:
		return 90
	default:
		return 100
	}
}

// recentRecords returns the records of the last 30 days.
func recentRecords(records []record, now time.Time) []record {
	cutoff := now.Add(-recentWindowDays * day)
	var recent []record
	for _, r := range records {
		if !r.occurredAt.Before(cutoff) {
			recent = append(recent, r)
		}
	}
	return recent
}

func mostRecent(records []record, n int) []record {
	if len(records) > n {
		return records[:n]
	}
	return records
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(clamp(v, 0, 100)))
}
