package perfindex

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/2beens/perfindex/internal/workouts"
)

// BiometricDefaults fill in the subject data a workout record does not carry.
type BiometricDefaults struct {
	Age      int
	WeightKg float64
	Gender   string
}

func DefaultBiometrics() BiometricDefaults {
	return BiometricDefaults{
		Age:      25,
		WeightKg: 70,
		Gender:   "male",
	}
}

func (b BiometricDefaults) withFallbacks() BiometricDefaults {
	d := DefaultBiometrics()
	if b.Age > 0 {
		d.Age = b.Age
	}
	if b.WeightKg > 0 {
		d.WeightKg = b.WeightKg
	}
	if strings.TrimSpace(b.Gender) != "" {
		d.Gender = b.Gender
	}
	return d
}

// record is a workout with every optional field resolved, ready for scoring.
type record struct {
	activityType    string
	occurredAt      time.Time
	durationMinutes float64
	calories        float64
	heartRate       float64 // 0 when not measured
	age             int
	weightKg        float64
	male            bool
}

func (r record) maxHeartRate() float64 {
	return float64(220 - r.age)
}

// normalize resolves optional fields against the defaults and returns the records
// sorted most recent first.
func normalize(ws []workouts.Workout, defaults BiometricDefaults) []record {
	defaults = defaults.withFallbacks()

	records := make([]record, 0, len(ws))
	for _, w := range ws {
		r := record{
			activityType:    canonicalActivityType(w.ActivityType),
			occurredAt:      w.OccurredAt.UTC(),
			durationMinutes: nonNegative(w.DurationMinutes),
			calories:        nonNegative(w.CaloriesBurned),
			age:             defaults.Age,
			weightKg:        defaults.WeightKg,
		}
		if w.HeartRate != nil && *w.HeartRate > 0 && !math.IsInf(*w.HeartRate, 0) {
			r.heartRate = *w.HeartRate
		}
		if w.SubjectAge != nil && *w.SubjectAge > 0 {
			r.age = *w.SubjectAge
		}
		if w.SubjectWeightKg != nil && *w.SubjectWeightKg > 0 && !math.IsInf(*w.SubjectWeightKg, 0) {
			r.weightKg = *w.SubjectWeightKg
		}
		gender := defaults.Gender
		if w.SubjectGender != nil && strings.TrimSpace(*w.SubjectGender) != "" {
			gender = *w.SubjectGender
		}
		r.male = strings.EqualFold(strings.TrimSpace(gender), "male")

		records = append(records, r)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].occurredAt.After(records[j].occurredAt)
	})
	return records
}

// nonNegative maps negative, NaN and infinite values to 0.
func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
