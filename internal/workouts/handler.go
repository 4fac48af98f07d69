package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/perfindex/internal/telemetry/metrics"
	"github.com/2beens/perfindex/internal/telemetry/tracing"
	"github.com/2beens/perfindex/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	ListAll(ctx context.Context, userID string) ([]Workout, error)
}

type eventPublisher interface {
	PublishWorkoutLogged(ctx context.Context, workout Workout) error
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type Handler struct {
	repo           workoutsRepo
	publisher      eventPublisher
	metricsManager *metrics.Manager
}

// NewHandler creates the workouts handler. The publisher is optional; without it
// logged workouts only get picked up by the scheduled recalculation.
func NewHandler(repo workoutsRepo, publisher eventPublisher, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		publisher:      publisher,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/workouts", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts/{userId}", handler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var workout Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	if err := workout.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if workout.OccurredAt.IsZero() {
		workout.OccurredAt = time.Now().UTC()
	}
	span.SetAttributes(attribute.String("user.id", workout.UserID))

	added, err := handler.repo.Add(ctx, workout)
	if err != nil {
		if errors.Is(err, ErrWorkoutExists) {
			http.Error(w, "error, workout already exists", http.StatusConflict)
			return
		}
		log.Errorf("failed to add workout for user [%s]: %s", workout.UserID, err)
		http.Error(w, "error, failed to add workout", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterWorkoutsLogged.Inc()
	}

	if handler.publisher != nil {
		if err := handler.publisher.PublishWorkoutLogged(ctx, *added); err != nil {
			// the workout is stored, the scheduled sweep will catch up
			log.Errorf("failed to publish workout logged [%s]: %s", added.ID, err)
		}
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout added: %s", added.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	workouts, err := handler.repo.ListAll(ctx, userID)
	if err != nil {
		log.Errorf("list workouts for user [%s]: %s", userID, err)
		http.Error(w, "error, failed to list workouts", http.StatusInternalServerError)
		return
	}
	if workouts == nil {
		workouts = []Workout{}
	}

	respJson, err := json.Marshal(ListResponse{
		Workouts: workouts,
		Total:    len(workouts),
	})
	if err != nil {
		log.Errorf("marshal workouts: %s", err)
		http.Error(w, "error, failed to list workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}
