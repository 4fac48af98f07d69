package workouts

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/perfindex/internal/telemetry/tracing"
	"github.com/2beens/perfindex/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrWorkoutExists   = errors.New("workout already exists")
)

//go:embed schema.sql
var Schema string

const workoutColumns = `id, user_id, activity_type, occurred_at, duration_minutes, calories_burned,
	heart_rate, subject_age, subject_weight, subject_gender, created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Migrate creates the workout table if missing.
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate workouts: %w", err)
	}
	return nil
}

func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if workout.ID == uuid.Nil {
		workout.ID = uuid.New()
	}
	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = time.Now().UTC()
	}
	span.SetAttributes(
		attribute.String("workout.id", workout.ID.String()),
		attribute.String("user.id", workout.UserID),
	)

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO workout (`+workoutColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		workout.ID, workout.UserID, workout.ActivityType, workout.OccurredAt,
		workout.DurationMinutes, workout.CaloriesBurned, workout.HeartRate,
		workout.SubjectAge, workout.SubjectWeightKg, workout.SubjectGender, workout.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrWorkoutExists
		}
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	return &workout, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id.String()))

	rows, err := r.db.Query(ctx, `SELECT `+workoutColumns+` FROM workout WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}

	workout, err := pgx.CollectExactlyOneRow(rows, scanWorkout)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("collect workout: %w", err)
	}

	return &workout, nil
}

// ListAll returns every workout of the user, most recent first.
func (r *Repo) ListAll(ctx context.Context, userID string) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+` FROM workout WHERE user_id = $1 ORDER BY occurred_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	workouts, err := pgx.CollectRows(rows, scanWorkout)
	if err != nil {
		return nil, fmt.Errorf("collect workouts: %w", err)
	}
	span.SetAttributes(attribute.Int("workouts.count", len(workouts)))

	return workouts, nil
}

// ListActiveUserIDs returns the users who logged at least one workout since the given time.
func (r *Repo) ListActiveUserIDs(ctx context.Context, since time.Time) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listActiveUsers")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT DISTINCT user_id FROM workout WHERE occurred_at >= $1 ORDER BY user_id;`,
		since,
	)
	if err != nil {
		return nil, err
	}

	userIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect user ids: %w", err)
	}
	span.SetAttributes(attribute.Int("users.count", len(userIDs)))

	return userIDs, nil
}

func scanWorkout(row pgx.CollectableRow) (Workout, error) {
	var w Workout
	err := row.Scan(
		&w.ID, &w.UserID, &w.ActivityType, &w.OccurredAt,
		&w.DurationMinutes, &w.CaloriesBurned, &w.HeartRate,
		&w.SubjectAge, &w.SubjectWeightKg, &w.SubjectGender, &w.CreatedAt,
	)
	return w, err
}
