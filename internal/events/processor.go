package events

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/perfindex/internal/perfindex"
	"github.com/2beens/perfindex/internal/telemetry/metrics"
	"github.com/2beens/perfindex/internal/telemetry/tracing"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=processor_mocks_test.go -package=events_test

const (
	statusProcessed    = "processed"
	statusInvalid      = "invalid"
	statusCommitFailed = "commit_failed"

	defaultFetchRetryDelay = time.Second
)

// Reader is the part of kafka.Reader the processor needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type indexCalculator interface {
	CalculateIndex(ctx context.Context, userID string) *perfindex.IndexResult
}

// Processor recalculates the index of every user a consumed workout event belongs to.
type Processor struct {
	reader          Reader
	calculator      indexCalculator
	metricsManager  *metrics.Manager
	fetchRetryDelay time.Duration
}

type ProcessorOption func(*Processor)

// WithFetchRetryDelay sets the pause after a failed fetch.
func WithFetchRetryDelay(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.fetchRetryDelay = d
	}
}

func NewProcessor(reader Reader, calculator indexCalculator, metricsManager *metrics.Manager, opts ...ProcessorOption) *Processor {
	p := &Processor{
		reader:          reader,
		calculator:      calculator,
		metricsManager:  metricsManager,
		fetchRetryDelay: defaultFetchRetryDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewKafkaReader(brokers []string, groupID, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        500 * time.Millisecond,
	})
}

// Run blocks processing messages until ctx is done.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			log.Errorf("fetch workout event: %s", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.fetchRetryDelay):
			}
			continue
		}

		p.process(ctx, msg)
	}
}

func (p *Processor) process(ctx context.Context, msg kafka.Message) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "events.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("kafka.topic", msg.Topic),
		attribute.Int("kafka.partition", msg.Partition),
		attribute.Int64("kafka.offset", msg.Offset),
	)

	event, err := decodeWorkoutLogged(msg)
	if err != nil {
		// committed anyway, a poison message would block the partition forever
		log.Warnf("skip workout event (partition=%d, offset=%d): %s", msg.Partition, msg.Offset, err)
		p.commit(ctx, msg, statusInvalid)
		return
	}
	span.SetAttributes(attribute.String("user.id", event.UserID))

	if result := p.calculator.CalculateIndex(ctx, event.UserID); result != nil {
		log.Debugf("recalculated index for user [%s] after workout [%s]: %d", event.UserID, event.WorkoutID, result.Score)
	}

	p.commit(ctx, msg, statusProcessed)
}

func (p *Processor) commit(ctx context.Context, msg kafka.Message, status string) {
	if err := p.reader.CommitMessages(ctx, msg); err != nil {
		log.Errorf("commit workout event (partition=%d, offset=%d): %s", msg.Partition, msg.Offset, err)
		status = statusCommitFailed
	}
	p.count(status)
}

func (p *Processor) count(status string) {
	if p.metricsManager != nil {
		p.metricsManager.CounterEventsProcessed.WithLabelValues(status).Inc()
	}
}
