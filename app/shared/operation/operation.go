// Package operation holds the wrappers every application service runs its
// public operations through: tracing, metrics, logging and panic recovery in
// WithTelemetry, and the unit of work in InTx.
package operation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/Black-And-White-Club/racepack/app/shared/results"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry identifies the calling service and its sinks.
type Telemetry struct {
	Service string
	Logger  *slog.Logger
	Metrics observability.OperationMetrics
	Tracer  trace.Tracer
}

// Func is the signature of a service operation body.
type Func[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// TxFunc is an operation body that runs inside a transaction.
type TxFunc[S any, F any] func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error)

// WithTelemetry wraps op with a span, operation metrics, structured logs and
// panic recovery.
func WithTelemetry[S any, F any](
	ctx context.Context,
	t Telemetry,
	operationName string,
	identifier string,
	op Func[S, F],
) (result results.OperationResult[S, F], err error) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var span trace.Span
	if t.Tracer != nil {
		ctx, span = t.Tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if t.Metrics != nil {
		t.Metrics.RecordOperationAttempt(ctx, operationName, t.Service)
	}

	startTime := time.Now()
	defer func() {
		if t.Metrics != nil {
			t.Metrics.RecordOperationDuration(ctx, operationName, t.Service, time.Since(startTime))
		}
	}()

	logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if t.Metrics != nil {
				t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if t.Metrics != nil {
			t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if t.Metrics != nil {
		t.Metrics.RecordOperationSuccess(ctx, operationName, t.Service)
	}

	return result, nil
}

// errRollback unwinds the transaction when the body returns a domain failure,
// so nothing written before the failure was detected is committed.
var errRollback = errors.New("rollback on failure result")

// InTx runs fn as one unit of work through coord. A failure result rolls the
// transaction back and is returned as-is; infrastructure errors come back as
// the error return, with commit problems classified by txn.
func InTx[S any, F any](
	ctx context.Context,
	coord *txn.Coordinator,
	operationName string,
	fn TxFunc[S, F],
) (results.OperationResult[S, F], error) {
	var result results.OperationResult[S, F]

	err := coord.Run(ctx, operationName, func(ctx context.Context, db bun.IDB) error {
		res, err := fn(ctx, db)
		result = res
		if err != nil {
			return err
		}
		if res.IsFailure() {
			return errRollback
		}
		return nil
	})
	if errors.Is(err, errRollback) {
		return result, nil
	}
	if err != nil {
		return results.OperationResult[S, F]{}, err
	}
	return result, nil
}

// Unwrap converts an operation result into the conventional (value, error)
// pair used at module boundaries.
func Unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, errors.New("operation returned neither success nor failure")
	}
	return *result.Success, nil
}

// DomainResult routes business-rule errors (see apperr.IsDomain) to the
// failure side and everything else to the error return.
func DomainResult[S any](v S, err error) (results.OperationResult[S, error], error) {
	if err != nil {
		if apperr.IsDomain(err) {
			return results.FailureResult[S, error](err), nil
		}
		return results.OperationResult[S, error]{}, err
	}
	return results.SuccessResult[S, error](v), nil
}
