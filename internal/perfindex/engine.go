package perfindex

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/2beens/perfindex/internal/kvstore"
	"github.com/2beens/perfindex/internal/telemetry/metrics"
	"github.com/2beens/perfindex/internal/telemetry/tracing"
	"github.com/2beens/perfindex/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=engine_mocks_test.go -package=perfindex_test

type workoutsLister interface {
	ListAll(ctx context.Context, userID string) ([]workouts.Workout, error)
}

type EngineParams struct {
	Workouts       workoutsLister
	Store          kvstore.Store
	Biometrics     BiometricDefaults
	MetricsManager *metrics.Manager
	// Now defaults to time.Now
	Now func() time.Time
}

// Engine turns a user's workout log into the performance index and keeps its history.
// Calculations for the same user are serialized within the process.
type Engine struct {
	workouts       workoutsLister
	history        *HistoryManager
	analyzer       *Analyzer
	biometrics     BiometricDefaults
	metricsManager *metrics.Manager
	now            func() time.Time
	locks          *userLocks
}

func NewEngine(params EngineParams) *Engine {
	now := params.Now
	if now == nil {
		now = time.Now
	}

	var history *HistoryManager
	var analyzer *Analyzer
	if params.Store != nil {
		history = NewHistoryManager(params.Store, params.MetricsManager, now)
		analyzer = NewAnalyzer(history, now)
	}

	return &Engine{
		workouts:       params.Workouts,
		history:        history,
		analyzer:       analyzer,
		biometrics:     params.Biometrics.withFallbacks(),
		metricsManager: params.MetricsManager,
		now:            now,
		locks:          newUserLocks(),
	}
}

// CalculateIndex computes, stores and returns the user's index. It never fails:
// unreadable inputs degrade to defaults, and a calculation that cannot run at all
// yields DefaultIndex.
func (e *Engine) CalculateIndex(ctx context.Context, userID string) (result *IndexResult) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "perfindex.calculateIndex")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("calculate index for user [%s] panicked: %v\n%s", userID, r, debug.Stack())
			span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", r))
			result = DefaultIndex(time.Now().UTC())
		}
	}()

	if e == nil || e.workouts == nil || e.history == nil {
		log.Errorf("calculate index for user [%s]: engine not wired", userID)
		span.SetStatus(codes.Error, "engine not wired")
		return DefaultIndex(time.Now().UTC())
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	begin := time.Now()
	now := e.now().UTC()

	ws, err := e.workouts.ListAll(ctx, userID)
	if err != nil {
		log.Errorf("list workouts for user [%s], treating as empty: %s", userID, err)
		e.countStoreFailure("list_workouts")
		ws = nil
	}

	records := normalize(ws, e.biometrics)
	components := computeComponents(records, now)
	score := Aggregate(components)

	snapshot := IndexSnapshot{
		Score:        score,
		Level:        LevelFor(score),
		Components:   components,
		Trend:        e.analyzer.ComputeTrend(ctx, userID, score),
		Timestamp:    now,
		WorkoutCount: len(records),
	}
	span.SetAttributes(
		attribute.Int("index.score", snapshot.Score),
		attribute.String("index.level", snapshot.Level),
		attribute.Int("workouts.count", snapshot.WorkoutCount),
	)

	if err := e.history.SaveCurrent(ctx, userID, snapshot); err != nil {
		log.Errorf("save current index for user [%s]: %s", userID, err)
	}
	if err := e.history.AppendSnapshot(ctx, userID, snapshot); err != nil {
		log.Errorf("append index history for user [%s]: %s", userID, err)
	}

	result = &IndexResult{
		Score:           snapshot.Score,
		Level:           snapshot.Level,
		Components:      snapshot.Components,
		Trend:           snapshot.Trend,
		LastUpdated:     now,
		WorkoutCount:    snapshot.WorkoutCount,
		AverageCalories: averageCalories(records),
		Insights:        insightsFor(components, len(records)),
		PeriodData: PeriodData{
			Weekly:  e.analyzer.CompareWithPrevious(ctx, userID, WeeklyPeriodDays),
			Monthly: e.analyzer.CompareWithPrevious(ctx, userID, MonthlyPeriodDays),
		},
	}

	if e.metricsManager != nil {
		e.metricsManager.CounterIndexCalculations.WithLabelValues(result.Level).Inc()
		e.metricsManager.HistogramCalculationDuration.Observe(time.Since(begin).Seconds())
	}
	log.Debugf("index for user [%s]: %d (%s), trend %s", userID, result.Score, result.Level, result.Trend)

	return result
}

// GetCurrentIndex returns the last stored snapshot of the user, if any.
func (e *Engine) GetCurrentIndex(ctx context.Context, userID string) (*IndexSnapshot, bool) {
	if e.history == nil {
		return nil, false
	}
	return e.history.LoadCurrent(ctx, userID)
}

// GetIndexHistory returns the daily entries of the last `days` days, oldest first.
func (e *Engine) GetIndexHistory(ctx context.Context, userID string, days int) []HistoryEntry {
	if e.history == nil {
		return []HistoryEntry{}
	}
	return e.history.LoadHistory(ctx, userID, days)
}

func (e *Engine) CompareWithPrevious(ctx context.Context, userID string, days int) *ComparisonResult {
	if e.analyzer == nil {
		return nil
	}
	return e.analyzer.CompareWithPrevious(ctx, userID, days)
}

func (e *Engine) ExportHistory(ctx context.Context, userID string) *HistoryExport {
	export := &HistoryExport{
		UserID:     userID,
		ExportedAt: e.now().UTC(),
		History:    []HistoryEntry{},
	}
	if e.history == nil {
		return export
	}

	if current, ok := e.history.LoadCurrent(ctx, userID); ok {
		export.Current = current
	}
	export.History = e.history.Export(ctx, userID)
	return export
}

// ResetIndex deletes the stored index and history of the user. Workouts are kept.
func (e *Engine) ResetIndex(ctx context.Context, userID string) error {
	if e.history == nil {
		return fmt.Errorf("reset index: no snapshot store")
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	return e.history.Reset(ctx, userID)
}

func (e *Engine) countStoreFailure(op string) {
	if e.metricsManager != nil {
		e.metricsManager.CounterStoreFailures.WithLabelValues(op).Inc()
	}
}
