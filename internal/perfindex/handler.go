package perfindex

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/perfindex/internal/middleware"
	"github.com/2beens/perfindex/internal/telemetry/metrics"
	"github.com/2beens/perfindex/internal/telemetry/tracing"
	"github.com/2beens/perfindex/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=perfindex_test

type indexEngine interface {
	CalculateIndex(ctx context.Context, userID string) *IndexResult
	GetCurrentIndex(ctx context.Context, userID string) (*IndexSnapshot, bool)
	GetIndexHistory(ctx context.Context, userID string, days int) []HistoryEntry
	CompareWithPrevious(ctx context.Context, userID string, days int) *ComparisonResult
	ExportHistory(ctx context.Context, userID string) *HistoryExport
	ResetIndex(ctx context.Context, userID string) error
}

type HistoryResponse struct {
	UserID  string         `json:"userId"`
	Days    int            `json:"days"`
	Entries []HistoryEntry `json:"entries"`
}

type CompareResponse struct {
	UserID     string            `json:"userId"`
	Comparison *ComparisonResult `json:"comparison"`
	Message    string            `json:"message,omitempty"`
}

type Handler struct {
	engine indexEngine
}

func NewHandler(engine indexEngine) *Handler {
	return &Handler{
		engine: engine,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	calculateAllowedPerMin int,
) {
	indexRouter := mainRouter.PathPrefix("/perfindex").Subrouter()
	indexRouter.HandleFunc("/{userId}/current", handler.HandleCurrent).Methods("GET", "OPTIONS").Name("perfindex-current")
	indexRouter.HandleFunc("/{userId}/history", handler.HandleHistory).Methods("GET", "OPTIONS").Name("perfindex-history")
	indexRouter.HandleFunc("/{userId}/compare", handler.HandleCompare).Methods("GET", "OPTIONS").Name("perfindex-compare")
	indexRouter.HandleFunc("/{userId}/export", handler.HandleExport).Methods("GET", "OPTIONS").Name("perfindex-export")
	indexRouter.HandleFunc("/{userId}", handler.HandleReset).Methods("DELETE", "OPTIONS").Name("perfindex-reset")

	// calculations hit the workout log and the snapshot store, limit them per user
	calculateRouter := indexRouter.PathPrefix("/{userId}/calculate").Subrouter()
	calculateRouter.HandleFunc("", handler.HandleCalculate).Methods("POST", "OPTIONS").Name("perfindex-calculate")
	if rateLimiter != nil {
		calculateRouter.Use(middleware.RateLimit(rateLimiter, metricsManager, "perfindex-calculate", calculateAllowedPerMin))
	}
}

func (handler *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.perfindex.calculate")
	defer span.End()

	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	writeJSON(w, handler.engine.CalculateIndex(ctx, userID), http.StatusOK)
}

func (handler *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.perfindex.current")
	defer span.End()

	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	snapshot, found := handler.engine.GetCurrentIndex(ctx, userID)
	if !found {
		http.Error(w, "no index calculated yet", http.StatusNotFound)
		return
	}
	writeJSON(w, snapshot, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.perfindex.history")
	defer span.End()

	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	days, err := pkg.IntQueryParam(r, "days", DefaultHistoryWindowDays, 1, HistoryRetentionDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("user.id", userID), attribute.Int("days", days))

	writeJSON(w, HistoryResponse{
		UserID:  userID,
		Days:    days,
		Entries: handler.engine.GetIndexHistory(ctx, userID, days),
	}, http.StatusOK)
}

func (handler *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.perfindex.compare")
	defer span.End()

	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	// comparisons look back 2*days, which has to fit into the retained history
	days, err := pkg.IntQueryParam(r, "days", WeeklyPeriodDays, 1, HistoryRetentionDays/2)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("user.id", userID), attribute.Int("days", days))

	resp := CompareResponse{
		UserID:     userID,
		Comparison: handler.engine.CompareWithPrevious(ctx, userID, days),
	}
	if resp.Comparison == nil {
		resp.Message = "no comparison available"
	}
	writeJSON(w, resp, http.StatusOK)
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.perfindex.export")
	defer span.End()

	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	w.Header().Set("Content-Disposition", `attachment; filename="perfindex-`+userID+`.json"`)
	writeJSON(w, handler.engine.ExportHistory(ctx, userID), http.StatusOK)
}

func (handler *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.perfindex.reset")
	defer span.End()

	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	if err := handler.engine.ResetIndex(ctx, userID); err != nil {
		log.Errorf("reset index for user [%s]: %s", userID, err)
		http.Error(w, "error, failed to reset index", http.StatusInternalServerError)
		return
	}
	pkg.WriteTextResponseOK(w, "reset:"+userID)
}

func userIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return "", false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "error, failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}
