package generic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bookkeeping-engine/generic"
	"github.com/warp/bookkeeping-engine/generic/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type incrementTally struct {
	Stream string
	By     int
}

type auditTally struct{}

func handleIncrement(ctx context.Context, uow *generic.UnitOfWork, cmd incrementTally) error {
	if cmd.By == 0 {
		return nil
	}
	agg, err := generic.NewRepository(uow, newTally).Load(ctx, cmd.Stream)
	if err != nil {
		return err
	}
	agg.Increment(cmd.By)
	return nil
}

// counterValue reads one sample from a gathered registry.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

// =============================================================================
// DISPATCH
// =============================================================================

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := generic.NewDispatcher()

	err := d.Dispatch(context.Background(), auditTally{})

	assert.ErrorIs(t, err, generic.ErrUnknownCommand)
	assert.False(t, d.Handles(auditTally{}))
}

func TestDispatcher_DuplicateRegistrationPanics(t *testing.T) {
	d := generic.NewDispatcher()
	generic.Build[auditTally](d).Handle(func(context.Context, auditTally) error { return nil })

	assert.Panics(t, func() {
		generic.Build[auditTally](d).Handle(func(context.Context, auditTally) error { return nil })
	})
}

func TestBuilder_StagesRunInOrder(t *testing.T) {
	d := generic.NewDispatcher()
	var trace []string
	stage := func(name string) generic.Stage[auditTally] {
		return func(ctx context.Context, cmd auditTally, next generic.Next[auditTally]) error {
			trace = append(trace, name+">")
			err := next(ctx, cmd)
			trace = append(trace, "<"+name)
			return err
		}
	}
	generic.Build[auditTally](d).
		Use(stage("a")).
		Use(stage("b")).
		Handle(func(context.Context, auditTally) error {
			trace = append(trace, "handler")
			return nil
		})

	require.NoError(t, d.Dispatch(context.Background(), auditTally{}))
	assert.Equal(t, []string{"a>", "b>", "handler", "<b", "<a"}, trace)
	assert.True(t, d.Handles(auditTally{}))
}

func TestBuilder_StageCanShortCircuit(t *testing.T) {
	d := generic.NewDispatcher()
	called := false
	generic.Build[auditTally](d).
		Use(func(context.Context, auditTally, generic.Next[auditTally]) error {
			return generic.ErrInvalidArgument
		}).
		Handle(func(context.Context, auditTally) error {
			called = true
			return nil
		})

	assert.ErrorIs(t, d.Dispatch(context.Background(), auditTally{}), generic.ErrInvalidArgument)
	assert.False(t, called)
}

// =============================================================================
// UNIT OF WORK STAGE
// =============================================================================

func TestUnitOfWorkStage_CommitsOnSuccess(t *testing.T) {
	log := store.NewMemory()
	d := generic.NewDispatcher()
	generic.Build[incrementTally](d).UnitOfWork(log, testRegistry()).Handle(handleIncrement)

	require.NoError(t, d.Dispatch(context.Background(), incrementTally{Stream: "tally-1", By: 2}))
	require.NoError(t, d.Dispatch(context.Background(), incrementTally{Stream: "tally-1", By: 3}))

	assert.Equal(t, 2, streamVersion(t, log, "tally-1"))
}

func TestUnitOfWorkStage_NoChangesNoAppend(t *testing.T) {
	log := store.NewMemory()
	d := generic.NewDispatcher()
	generic.Build[incrementTally](d).UnitOfWork(log, testRegistry()).Handle(handleIncrement)

	require.NoError(t, d.Dispatch(context.Background(), incrementTally{Stream: "tally-1", By: 0}))

	assert.Equal(t, 0, streamVersion(t, log, "tally-1"))
}

func TestUnitOfWorkStage_DiscardsOnError(t *testing.T) {
	log := store.NewMemory()
	d := generic.NewDispatcher()
	generic.Build[incrementTally](d).UnitOfWork(log, testRegistry()).
		Handle(func(ctx context.Context, uow *generic.UnitOfWork, cmd incrementTally) error {
			if err := handleIncrement(ctx, uow, cmd); err != nil {
				return err
			}
			return generic.ErrInvalidArgument
		})

	err := d.Dispatch(context.Background(), incrementTally{Stream: "tally-1", By: 2})

	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
	assert.Equal(t, 0, streamVersion(t, log, "tally-1"))
}

// =============================================================================
// LOG AND MEASURE STAGES
// =============================================================================

func TestLogStage_RecordsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := generic.NewDispatcher()
	generic.Build[auditTally](d).
		Log(zap.New(core)).
		Handle(func(context.Context, auditTally) error {
			return &generic.NotFoundError{Kind: "tally", ID: "7"}
		})

	_ = d.Dispatch(context.Background(), auditTally{})

	entries := logs.FilterMessage("command rejected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "auditTally", fields["command"])
	assert.Equal(t, "not_found", fields["outcome"])
}

func TestLogStage_InvariantViolationIsAnError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := generic.NewDispatcher()
	generic.Build[auditTally](d).
		Log(zap.New(core)).
		Handle(func(context.Context, auditTally) error {
			return &generic.InvariantViolationError{Invariant: "balanced", Detail: "1 != 2"}
		})

	_ = d.Dispatch(context.Background(), auditTally{})

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "invariant", entries[0].ContextMap()["outcome"])
}

func TestMeasureStage_CountsCommandsAndEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := generic.NewMetrics(reg)
	require.NoError(t, err)

	log := store.NewMemory()
	d := generic.NewDispatcher()
	generic.Build[incrementTally](d).
		Measure(metrics).
		UnitOfWork(log, testRegistry()).
		Handle(handleIncrement)

	require.NoError(t, d.Dispatch(context.Background(), incrementTally{Stream: "tally-1", By: 2}))
	require.NoError(t, d.Dispatch(context.Background(), incrementTally{Stream: "tally-1", By: 0}))

	assert.Equal(t, 2.0, counterValue(t, reg, "bookkeeping_commands_total",
		map[string]string{"command": "incrementTally", "outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "bookkeeping_events_appended_total",
		map[string]string{"command": "incrementTally"}))
}

func TestNewMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := generic.NewMetrics(reg)
	require.NoError(t, err)

	_, err = generic.NewMetrics(reg)
	assert.Error(t, err)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", generic.Outcome(nil))
	assert.Equal(t, "conflict", generic.Outcome(&generic.ConcurrencyConflictError{Stream: "s"}))
	assert.Equal(t, "duplicate", generic.Outcome(&generic.DuplicateError{Kind: "account", ID: "1"}))
	assert.Equal(t, "invalid", generic.Outcome(generic.ErrInvalidArgument))
	assert.Equal(t, "error", generic.Outcome(errors.New("boom")))
}
