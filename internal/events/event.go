package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/perfindex/internal/workouts"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventTypeWorkoutLogged = "workout.logged"
	DefaultTopic           = "workout.logged"

	headerEventType = "event_type"
)

var ErrInvalidEvent = errors.New("invalid event")

// WorkoutLogged is published for every stored workout and triggers a recalculation
// of the user's index.
type WorkoutLogged struct {
	EventID      uuid.UUID `json:"eventId"`
	WorkoutID    uuid.UUID `json:"workoutId"`
	UserID       string    `json:"userId"`
	ActivityType string    `json:"activityType"`
	OccurredAt   time.Time `json:"occurredAt"`
	LoggedAt     time.Time `json:"loggedAt"`
}

func NewWorkoutLogged(w workouts.Workout, loggedAt time.Time) WorkoutLogged {
	return WorkoutLogged{
		EventID:      uuid.New(),
		WorkoutID:    w.ID,
		UserID:       w.UserID,
		ActivityType: w.ActivityType,
		OccurredAt:   w.OccurredAt,
		LoggedAt:     loggedAt,
	}
}

func (e WorkoutLogged) message() (kafka.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	return kafka.Message{
		// keyed by user, so all events of a user land on the same partition in order
		Key:   []byte(e.UserID),
		Value: payload,
		Time:  e.LoggedAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(EventTypeWorkoutLogged)},
		},
	}, nil
}

func decodeWorkoutLogged(msg kafka.Message) (WorkoutLogged, error) {
	if eventType, ok := headerValue(msg, headerEventType); ok && eventType != EventTypeWorkoutLogged {
		return WorkoutLogged{}, fmt.Errorf("%w: unexpected event type [%s]", ErrInvalidEvent, eventType)
	}

	var event WorkoutLogged
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return WorkoutLogged{}, fmt.Errorf("%w: %s", ErrInvalidEvent, err)
	}
	if event.UserID == "" {
		return WorkoutLogged{}, fmt.Errorf("%w: user id empty", ErrInvalidEvent)
	}
	return event, nil
}

func headerValue(msg kafka.Message, key string) (string, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return string(header.Value), true
		}
	}
	return "", false
}
