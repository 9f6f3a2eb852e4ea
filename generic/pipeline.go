/*
pipeline.go - Per-command stage chains and the dispatcher

PURPOSE:
  Every command type is registered once at startup with a chain of
  stages ending in its domain handler:

    generic.Build[OpenAccountingPeriod](dispatcher).
        Log(logger).
        Measure(metrics).
        UnitOfWork(log, registry).
        Handle(handlers.OpenAccountingPeriod)

  The transport layer then calls Dispatch(ctx, cmd) with a decoded
  command value and the request's context.

STAGES:
  Log:        structured zap record of command, duration and outcome
  Measure:    prometheus counters and latency histogram
  UnitOfWork: fresh unit of work per command, committed if the handler succeeds

Stages run in the order they are added. Any stage may short-circuit by
returning without calling next.
*/
package generic

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// Next continues a stage chain.
type Next[C any] func(ctx context.Context, cmd C) error

// Stage wraps the rest of a chain.
type Stage[C any] func(ctx context.Context, cmd C, next Next[C]) error

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher routes commands to their registered chain by Go type.
// Registration is expected to finish before the first Dispatch.
type Dispatcher struct {
	handlers map[reflect.Type]func(context.Context, any) error
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[reflect.Type]func(context.Context, any) error)}
}

// Dispatch runs the chain registered for cmd's type.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd any) error {
	h, ok := d.handlers[reflect.TypeOf(cmd)]
	if !ok {
		return fmt.Errorf("%T: %w", cmd, ErrUnknownCommand)
	}
	return h(ctx, cmd)
}

// Handles reports whether a chain is registered for cmd's type.
func (d *Dispatcher) Handles(cmd any) bool {
	_, ok := d.handlers[reflect.TypeOf(cmd)]
	return ok
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder accumulates the stages for command type C.
type Builder[C any] struct {
	d       *Dispatcher
	name    string
	stages  []Stage[C]
	metrics *Metrics
}

// Build starts a chain for command type C.
func Build[C any](d *Dispatcher) *Builder[C] {
	return &Builder[C]{d: d, name: reflect.TypeOf((*C)(nil)).Elem().Name()}
}

// Use appends a custom stage.
func (b *Builder[C]) Use(stage Stage[C]) *Builder[C] {
	b.stages = append(b.stages, stage)
	return b
}

// Log records every handled command on logger.
func (b *Builder[C]) Log(logger *zap.Logger) *Builder[C] {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := b.name
	return b.Use(func(ctx context.Context, cmd C, next Next[C]) error {
		start := time.Now()
		err := next(ctx, cmd)
		fields := []zap.Field{
			zap.String("command", name),
			zap.Duration("duration", time.Since(start)),
			zap.String("outcome", Outcome(err)),
		}
		switch {
		case err == nil:
			logger.Debug("command handled", fields...)
		case IsClientError(err) || IsRetryable(err):
			logger.Info("command rejected", append(fields, zap.Error(err))...)
		default:
			logger.Error("command failed", append(fields, zap.Error(err))...)
		}
		return err
	})
}

// Measure records command outcomes and latency. A nil m adds nothing.
func (b *Builder[C]) Measure(m *Metrics) *Builder[C] {
	if m == nil {
		return b
	}
	b.metrics = m
	name := b.name
	return b.Use(func(ctx context.Context, cmd C, next Next[C]) error {
		start := time.Now()
		err := next(ctx, cmd)
		m.observe(name, Outcome(err), time.Since(start))
		return err
	})
}

// UnitOfWork makes the terminal handler receive a fresh unit of work that is
// committed when the handler returns nil.
func (b *Builder[C]) UnitOfWork(log EventLog, registry *Registry) *UnitOfWorkBuilder[C] {
	return &UnitOfWorkBuilder[C]{b: b, log: log, registry: registry}
}

// Handle terminates the chain and registers it with the dispatcher.
// Registering a command type twice panics: it is a startup wiring bug.
func (b *Builder[C]) Handle(fn func(ctx context.Context, cmd C) error) {
	chain := Next[C](fn)
	for i := len(b.stages) - 1; i >= 0; i-- {
		stage, next := b.stages[i], chain
		chain = func(ctx context.Context, cmd C) error {
			return stage(ctx, cmd, next)
		}
	}

	t := reflect.TypeOf((*C)(nil)).Elem()
	if _, dup := b.d.handlers[t]; dup {
		panic(fmt.Sprintf("generic: command %s registered twice", t))
	}
	b.d.handlers[t] = func(ctx context.Context, cmd any) error {
		return chain(ctx, cmd.(C))
	}
}

// UnitOfWorkBuilder is a Builder whose handler works inside a unit of work.
type UnitOfWorkBuilder[C any] struct {
	b        *Builder[C]
	log      EventLog
	registry *Registry
}

// Handle terminates the chain. fn records facts on aggregates loaded through
// uow; if it returns nil the changes are appended, otherwise they are dropped.
func (u *UnitOfWorkBuilder[C]) Handle(fn func(ctx context.Context, uow *UnitOfWork, cmd C) error) {
	name := u.b.name
	metrics := u.b.metrics
	u.b.Handle(func(ctx context.Context, cmd C) error {
		uow := NewUnitOfWork(u.log, u.registry)
		if metrics != nil {
			uow.OnAppend = func(_ string, n int) { metrics.appended(name, n) }
		}
		if err := fn(ctx, uow, cmd); err != nil {
			return err
		}
		if !uow.HasChanges() {
			return nil
		}
		return uow.Commit(ctx)
	})
}
