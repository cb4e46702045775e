// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// the request-context primitive and infrastructure for the adapters.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/reqctx"
	"github.com/jsamuelsen/reqctx/internal/domain"
	"github.com/jsamuelsen/reqctx/internal/platform/logging"
)

// Inspector builds reports about request-context propagation. It is the
// demo use case for the reqctx primitive: fan work out across goroutines and
// report what each worker observed in its propagated context.
type Inspector struct {
	defaultWorkers int
	maxWorkers     int
	logger         *slog.Logger
}

// InspectorConfig holds configuration for the Inspector service.
type InspectorConfig struct {
	// DefaultWorkers is used when a request does not specify a worker count.
	DefaultWorkers int

	// MaxWorkers caps the worker count a single request may ask for.
	MaxWorkers int

	Logger *slog.Logger
}

// NewInspector creates a new inspector service.
func NewInspector(cfg InspectorConfig) *Inspector {
	logger := slog.Default()
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	return &Inspector{
		defaultWorkers: cfg.DefaultWorkers,
		maxWorkers:     cfg.MaxWorkers,
		logger:         logger.With(slog.String("component", "app.Inspector")),
	}
}

// Observe reports what the calling goroutine sees in its request context.
// The context is taken from the goroutine slot; the std context is only used
// as a fallback for callers reached through context.Context plumbing.
func (s *Inspector) Observe(ctx context.Context) domain.ContextObservation {
	rc := reqctx.Save()
	installed := rc != nil

	if rc == nil {
		rc = reqctx.FromStdContext(ctx)
		installed = rc != nil
	}

	if rc == nil {
		rc = reqctx.Get()
	}

	return domain.ContextObservation{
		Installed:     installed,
		RequestID:     StringFromContext(rc, DataKeyRequestID),
		CorrelationID: StringFromContext(rc, DataKeyCorrelationID),
		Path:          StringFromContext(rc, DataKeyPath),
	}
}

// Inspect fans out the requested number of workers and reports what each
// observed in its propagated request context. workers <= 0 selects the
// configured default; a count above the configured maximum is rejected.
func (s *Inspector) Inspect(ctx context.Context, workers int) (*domain.InspectionReport, error) {
	if workers <= 0 {
		workers = s.defaultWorkers
	}

	if workers > s.maxWorkers {
		return nil, fmt.Errorf("validating worker count: %w",
			domain.NewValidationError("workers", fmt.Sprintf("must be at most %d", s.maxWorkers)))
	}

	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "inspecting context propagation", slog.Int("workers", workers))

	parent := reqctx.Get()

	fns := make([]func(context.Context) (domain.WorkerObservation, error), workers)
	for i := range workers {
		fns[i] = func(ctx context.Context) (domain.WorkerObservation, error) {
			select {
			case <-ctx.Done():
				return domain.WorkerObservation{}, ctx.Err()
			default:
			}

			return domain.WorkerObservation{
				Worker:             i,
				ContextObservation: s.Observe(ctx),
				SameContext:        reqctx.Get() == parent,
			}, nil
		}
	}

	observations, err := Parallel(ctx, fns...)
	if err != nil {
		return nil, fmt.Errorf("inspecting workers: %w", err)
	}

	return &domain.InspectionReport{
		Parent:  s.Observe(ctx),
		Workers: observations,
	}, nil
}
