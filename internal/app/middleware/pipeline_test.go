package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/middleware"
	appoutbox "gearshare/internal/app/outbox"
	"gearshare/internal/app/uow"
	"gearshare/internal/infra/storage/memory"
)

var errBadPing = errors.New("ping rejected")

type pingCmd struct {
	invalid bool
}

func (c pingCmd) Key() string { return "pipeline.ping" }

func (c pingCmd) Validate() error {
	if c.invalid {
		return errBadPing
	}
	return nil
}

type bookCmd struct {
	idem string
	fail bool
}

func (c bookCmd) Key() string { return "pipeline.book" }

func (c bookCmd) IdempotencyKey() string { return c.idem }

func (c bookCmd) ResultPrototype() any { return &bookResult{} }

type bookResult struct {
	Ref string `json:"ref"`
}

func TestChainCommandsOrder(t *testing.T) {
	var trace []string

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, pingCmd{}.Key(), commands.HandlerFunc[pingCmd, any](
		func(ctx context.Context, cmd pingCmd) (any, error) {
			trace = append(trace, "handler")
			return nil, nil
		}))

	wrap := func(label string) middleware.CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return busFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				trace = append(trace, label)
				return next.Dispatch(ctx, cmd)
			})
		}
	}

	chained := middleware.ChainCommands(bus, wrap("outer"), wrap("inner"))
	_, err := chained.Dispatch(context.Background(), pingCmd{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}

type busFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f busFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

func TestValidationGuard(t *testing.T) {
	calls := 0
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, pingCmd{}.Key(), commands.HandlerFunc[pingCmd, any](
		func(ctx context.Context, cmd pingCmd) (any, error) {
			calls++
			return nil, nil
		}))
	chained := middleware.ChainCommands(bus, middleware.Validation(middleware.SelfValidator{}))

	t.Run("invalid command never reaches the handler", func(t *testing.T) {
		_, err := chained.Dispatch(context.Background(), pingCmd{invalid: true})
		assert.ErrorIs(t, err, errBadPing)
		assert.Zero(t, calls)
	})

	t.Run("valid command passes through", func(t *testing.T) {
		_, err := chained.Dispatch(context.Background(), pingCmd{})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestIdempotencyReplay(t *testing.T) {
	calls := 0
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, bookCmd{}.Key(), commands.HandlerFunc[bookCmd, *bookResult](
		func(ctx context.Context, cmd bookCmd) (*bookResult, error) {
			calls++
			if cmd.fail {
				return nil, errors.New("slot taken")
			}
			return &bookResult{Ref: "bk-1"}, nil
		}))
	chained := middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	t.Run("second dispatch with same key replays the cached result", func(t *testing.T) {
		first, err := commands.Dispatch[bookCmd, *bookResult](context.Background(), chained, bookCmd{idem: "k-1"})
		require.NoError(t, err)
		assert.Equal(t, "bk-1", first.Ref)

		second, err := commands.Dispatch[bookCmd, *bookResult](context.Background(), chained, bookCmd{idem: "k-1"})
		require.NoError(t, err)
		assert.Equal(t, "bk-1", second.Ref)
		assert.Equal(t, 1, calls)
	})

	t.Run("failures are cached too", func(t *testing.T) {
		before := calls
		_, err := chained.Dispatch(context.Background(), bookCmd{idem: "k-2", fail: true})
		require.Error(t, err)

		_, err = chained.Dispatch(context.Background(), bookCmd{idem: "k-2", fail: true})
		require.EqualError(t, err, "slot taken")
		assert.Equal(t, before+1, calls)
	})

	t.Run("empty key bypasses the cache", func(t *testing.T) {
		before := calls
		for range 2 {
			_, err := chained.Dispatch(context.Background(), bookCmd{})
			require.NoError(t, err)
		}
		assert.Equal(t, before+2, calls)
	})
}

var errSlotConflict = errors.New("booking: slot conflict")

func TestIdempotencyReplayKeepsSentinels(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, bookCmd{}.Key(), commands.HandlerFunc[bookCmd, *bookResult](
		func(ctx context.Context, cmd bookCmd) (*bookResult, error) {
			return nil, fmt.Errorf("%w: june 1-3", errSlotConflict)
		}))
	chained := middleware.ChainCommands(bus,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil, errSlotConflict))

	_, err := chained.Dispatch(context.Background(), bookCmd{idem: "k-s"})
	require.ErrorIs(t, err, errSlotConflict)

	// The cached failure must still satisfy errors.Is, not just carry the
	// original message, so status mapping survives a replay.
	_, err = chained.Dispatch(context.Background(), bookCmd{idem: "k-s"})
	require.ErrorIs(t, err, errSlotConflict)
	assert.EqualError(t, err, "booking: slot conflict: june 1-3")
}

func TestTransactionBindsUnitOfWork(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, pingCmd{}.Key(), commands.HandlerFunc[pingCmd, any](
		func(ctx context.Context, cmd pingCmd) (any, error) {
			_, ok := uow.FromContext(ctx)
			assert.True(t, ok, "handler should run inside a unit of work")
			return nil, nil
		}))
	chained := middleware.ChainCommands(bus, middleware.Transaction(memory.NewFactory(), nil))

	_, err := chained.Dispatch(context.Background(), pingCmd{})
	require.NoError(t, err)
}

func TestOutboxFlushAfterSuccess(t *testing.T) {
	box := memory.NewOutbox()
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, pingCmd{}.Key(), commands.HandlerFunc[pingCmd, any](
		func(ctx context.Context, cmd pingCmd) (any, error) {
			return nil, box.Add(ctx, appoutbox.EventRecord{ID: "evt-1", Name: "ping.sent"})
		}))
	chained := middleware.ChainCommands(bus, middleware.OutboxFlush(box))

	_, err := chained.Dispatch(context.Background(), pingCmd{})
	require.NoError(t, err)
	assert.Empty(t, box.Staged())
}

func TestOutboxNotFlushedOnFailure(t *testing.T) {
	box := memory.NewOutbox()
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, pingCmd{}.Key(), commands.HandlerFunc[pingCmd, any](
		func(ctx context.Context, cmd pingCmd) (any, error) {
			if err := box.Add(ctx, appoutbox.EventRecord{ID: "evt-1", Name: "ping.sent"}); err != nil {
				return nil, err
			}
			return nil, errors.New("boom")
		}))
	chained := middleware.ChainCommands(bus, middleware.OutboxFlush(box))

	_, err := chained.Dispatch(context.Background(), pingCmd{})
	require.Error(t, err)
	assert.Len(t, box.Staged(), 1)
}
