package services

import (
	"context"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/eventbus"
	"github.com/flowboard/flowboard/pkg/otelhelper"
	"github.com/flowboard/flowboard/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Option configures the collaborators shared by the services.
type Option func(*base)

// WithEventBus publishes lifecycle events on publisher.
func WithEventBus(publisher eventbus.EventPublisher) Option {
	return func(b *base) {
		b.publisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(b *base) {
		b.tracer = tracer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

type base struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
}

func newBase(p persistence.Persistence, module string, opts []Option) base {
	b := base{
		persistence: p,
		tracer:      noop.NewTracerProvider().Tracer("flowboard"),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(&b)
	}

	b.logger = b.logger.With("module", module)

	return b
}

// publish sends event keyed by workflow id. A failed publish is logged and
// never fails the operation that already succeeded.
func (b *base) publish(ctx context.Context, workflowID string, event eventbus.Event) {
	if b.publisher == nil {
		return
	}

	if err := b.publisher.Publish(ctx, workflowID, event); err != nil {
		b.logger.WarnContext(ctx, "failed to publish event",
			"event_type", event.GetType(), "workflow_id", workflowID, "error", err)
	}
}

// traced runs fn inside a span carrying the workflow id and records its error.
func (b *base) traced(ctx context.Context, name, workflowID string, fn func(ctx context.Context) error) error {
	ctx, span := otelhelper.StartSpan(ctx, b.tracer, name, attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	if err := fn(ctx); err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	return nil
}
