package workouts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxSubjectAge = 130

var ErrInvalidWorkout = errors.New("invalid workout")

// Workout is a single logged training session. Optional fields are nil when the
// client did not report them.
type Workout struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"userId"`
	ActivityType    string    `json:"activityType"`
	OccurredAt      time.Time `json:"occurredAt"`
	DurationMinutes float64   `json:"durationMinutes"`
	CaloriesBurned  float64   `json:"caloriesBurned"`
	HeartRate       *float64  `json:"heartRate,omitempty"`
	SubjectAge      *int      `json:"subjectAge,omitempty"`
	SubjectWeightKg *float64  `json:"subjectWeightKg,omitempty"`
	SubjectGender   *string   `json:"subjectGender,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Validate checks a workout submitted by a client. The scoring side tolerates
// malformed records, but new ones are rejected at the door.
func (w *Workout) Validate() error {
	switch {
	case strings.TrimSpace(w.UserID) == "":
		return fmt.Errorf("%w: user id empty", ErrInvalidWorkout)
	case strings.TrimSpace(w.ActivityType) == "":
		return fmt.Errorf("%w: activity type empty", ErrInvalidWorkout)
	case w.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidWorkout)
	case w.CaloriesBurned < 0:
		return fmt.Errorf("%w: calories burned negative", ErrInvalidWorkout)
	case w.HeartRate != nil && *w.HeartRate <= 0:
		return fmt.Errorf("%w: heart rate must be positive", ErrInvalidWorkout)
	case w.SubjectAge != nil && (*w.SubjectAge <= 0 || *w.SubjectAge > maxSubjectAge):
		return fmt.Errorf("%w: subject age out of range", ErrInvalidWorkout)
	case w.SubjectWeightKg != nil && *w.SubjectWeightKg <= 0:
		return fmt.Errorf("%w: subject weight must be positive", ErrInvalidWorkout)
	}
	return nil
}
