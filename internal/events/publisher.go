package events

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/perfindex/internal/telemetry/tracing"
	"github.com/2beens/perfindex/internal/workouts"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=publisher_mocks_test.go -package=events_test

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits workout events to Kafka.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewPublisher(writer messageWriter) *Publisher {
	return &Publisher{
		writer: writer,
		now:    time.Now,
	}
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		WriteTimeout: 5 * time.Second,
	}
}

func (p *Publisher) PublishWorkoutLogged(ctx context.Context, w workouts.Workout) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "events.publish.workoutLogged")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", w.UserID),
		attribute.String("workout.id", w.ID.String()),
	)

	msg, err := NewWorkoutLogged(w, p.now().UTC()).message()
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write workout logged event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
