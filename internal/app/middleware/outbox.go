package middleware

import (
	"context"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/outbox"
)

// OutboxFlush asks the outbox to surface staged events after the command
// succeeds. With the Mongo store this is a no-op (events commit with the
// transaction); buffered implementations publish here.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
