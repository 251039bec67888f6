// Package support holds helpers shared by the command and query handlers.
package support

import (
	"context"

	"gearshare/internal/app/uow"
)

// BeginReadOnlyUnit joins the unit of work already on the context, or opens
// a read-only one when the handler runs outside the transaction middleware
// (query paths). The returned cleanup is nil when the unit was joined, non-nil
// when this call opened it; callers defer it unconditionally after a nil check.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	// Read-only units never commit; rollback releases the session.
	cleanup := func() { _ = unit.Rollback(execCtx) }
	return unit, execCtx, cleanup, nil
}
