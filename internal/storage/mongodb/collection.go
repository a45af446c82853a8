package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/RafexStrike/eventment-server/internal/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/RafexStrike/eventment-server/internal/storage/mongodb"

// collection wraps a driver collection with a per-call deadline, a client span
// and store metrics.
type collection struct {
	*mongo.Collection
	timeout time.Duration
}

func newCollection(c *mongo.Collection, timeout time.Duration) collection {
	return collection{Collection: c, timeout: timeout}
}

func (c collection) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	name := c.Name()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "mongodb."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.name", c.Database().Name()),
			attribute.String("db.mongodb.collection", name),
			attribute.String("db.operation", operation),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)

	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case mongo.IsDuplicateKeyError(err):
		outcome = metrics.OutcomeDuplicate
		span.SetAttributes(attribute.Bool("db.duplicate_key", true))
	case errors.Is(err, mongo.ErrNoDocuments):
		// Absence is a normal answer for single-document reads.
	default:
		outcome = metrics.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.RecordStoreOperation(name, operation, outcome, start)
	return err
}
