package perfindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/2beens/perfindex/internal/kvstore"
	"github.com/2beens/perfindex/internal/telemetry/metrics"
	"github.com/2beens/perfindex/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

const (
	HistoryRetentionDays     = 90
	DefaultHistoryWindowDays = 30

	currentKeyPrefix = "currentIndex:"
	historyKeyPrefix = "indexHistory:"
)

func currentKey(userID string) string { return currentKeyPrefix + userID }
func historyKey(userID string) string { return historyKeyPrefix + userID }

// HistoryManager owns the persisted current snapshot and the daily history of each user.
// Reads fail open: missing, unreadable or corrupt data is treated as empty. Appends
// refuse to write when the stored history could not be read.
type HistoryManager struct {
	store          kvstore.Store
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHistoryManager(store kvstore.Store, metricsManager *metrics.Manager, now func() time.Time) *HistoryManager {
	if now == nil {
		now = time.Now
	}
	return &HistoryManager{
		store:          store,
		metricsManager: metricsManager,
		now:            now,
	}
}

// AppendSnapshot adds the snapshot to the user's history, keeping one entry per UTC day
// (the latest) and dropping entries older than the retention window.
func (m *HistoryManager) AppendSnapshot(ctx context.Context, userID string, snapshot IndexSnapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "perfindex.history.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	entries, err := m.readHistory(ctx, userID)
	if err != nil {
		// never overwrite retained history we could not read
		return fmt.Errorf("load history before append: %w", err)
	}
	entries = append(entries, snapshot.historyEntry())
	entries = dedupeDaily(entries)
	entries = evictExpired(entries, m.now().UTC().Add(-HistoryRetentionDays*day))
	span.SetAttributes(attribute.Int("history.size", len(entries)))

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := m.store.Set(ctx, historyKey(userID), string(payload)); err != nil {
		m.countFailure("set")
		return fmt.Errorf("store history: %w", err)
	}
	return nil
}

// LoadHistory returns the entries of the last sinceDays days, oldest first.
// Non-positive windows fall back to the default 30 days.
func (m *HistoryManager) LoadHistory(ctx context.Context, userID string, sinceDays int) []HistoryEntry {
	ctx, span := tracing.GlobalTracer.Start(ctx, "perfindex.history.load")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("days", sinceDays),
	)

	if sinceDays <= 0 {
		sinceDays = DefaultHistoryWindowDays
	}
	cutoff := m.now().UTC().Add(-time.Duration(sinceDays) * day)

	entries, _ := m.readHistory(ctx, userID)
	filtered := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Export returns the full retained history, oldest first.
func (m *HistoryManager) Export(ctx context.Context, userID string) []HistoryEntry {
	ctx, span := tracing.GlobalTracer.Start(ctx, "perfindex.history.export")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	entries, _ := m.readHistory(ctx, userID)
	return entries
}

func (m *HistoryManager) LoadCurrent(ctx context.Context, userID string) (*IndexSnapshot, bool) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "perfindex.history.loadCurrent")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	raw, ok, _ := m.read(ctx, currentKey(userID))
	if !ok {
		return nil, false
	}

	var snapshot IndexSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		log.Warnf("corrupt current index for user [%s]: %s", userID, err)
		m.countFailure("decode")
		return nil, false
	}
	return &snapshot, true
}

func (m *HistoryManager) SaveCurrent(ctx context.Context, userID string, snapshot IndexSnapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "perfindex.history.saveCurrent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := m.store.Set(ctx, currentKey(userID), string(payload)); err != nil {
		m.countFailure("set")
		return fmt.Errorf("store current index: %w", err)
	}
	return nil
}

// Reset removes both the current snapshot and the history of the user.
func (m *HistoryManager) Reset(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "perfindex.history.reset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	for _, key := range []string{currentKey(userID), historyKey(userID)} {
		if delErr := m.store.Delete(ctx, key); delErr != nil {
			m.countFailure("delete")
			err = multierr.Append(err, delErr)
		}
	}
	if err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	return nil
}

// readHistory returns the stored history sorted by timestamp. Missing or corrupt data
// reads as empty. The error is set only when the store could not be read at all, the
// entries are empty in that case too.
func (m *HistoryManager) readHistory(ctx context.Context, userID string) ([]HistoryEntry, error) {
	raw, ok, err := m.read(ctx, historyKey(userID))
	if !ok {
		return []HistoryEntry{}, err
	}

	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Warnf("corrupt index history for user [%s]: %s", userID, err)
		m.countFailure("decode")
		return []HistoryEntry{}, nil
	}

	valid := entries[:0]
	for _, e := range entries {
		if !e.Timestamp.IsZero() {
			valid = append(valid, e)
		}
	}
	sortByTimestamp(valid)
	return valid, nil
}

// read reports found=false for missing keys. A non-nil error means the store itself failed.
func (m *HistoryManager) read(ctx context.Context, key string) (string, bool, error) {
	if m.store == nil {
		return "", false, nil
	}
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return "", false, nil
		}
		log.Errorf("read [%s] from snapshot store: %s", key, err)
		m.countFailure("get")
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return raw, true, nil
}

func (m *HistoryManager) countFailure(op string) {
	if m.metricsManager != nil {
		m.metricsManager.CounterStoreFailures.WithLabelValues(op).Inc()
	}
}

// dedupeDaily keeps the latest entry of every UTC calendar day. On equal timestamps
// the entry appended later wins. The result is sorted oldest first.
func dedupeDaily(entries []HistoryEntry) []HistoryEntry {
	latest := make(map[string]int, len(entries))
	for i, e := range entries {
		dayKey := e.Timestamp.UTC().Format(time.DateOnly)
		if j, ok := latest[dayKey]; !ok || !e.Timestamp.Before(entries[j].Timestamp) {
			latest[dayKey] = i
		}
	}

	deduped := make([]HistoryEntry, 0, len(latest))
	for _, i := range latest {
		deduped = append(deduped, entries[i])
	}
	sortByTimestamp(deduped)
	return deduped
}

func evictExpired(entries []HistoryEntry, cutoff time.Time) []HistoryEntry {
	kept := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	return kept
}

func sortByTimestamp(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}
