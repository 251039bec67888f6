package middleware

import (
	"context"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/queries"
)

// Validator checks a command or query for structural problems before it
// reaches a handler. Handlers still enforce domain rules; this catches
// messages that are malformed on their face.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

// Authorizer decides whether the caller behind the context may dispatch
// the message at all. Party-level checks (renter vs owner) stay in the
// handlers, which know the aggregate.
type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// SelfValidator runs the message's own Validate method when it has one.
// Commands opt in by implementing Validate() error; everything else passes
// through untouched.
type SelfValidator struct{}

func (SelfValidator) Validate(ctx context.Context, message any) error {
	if v, ok := message.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

// guard adapts any per-message check into bus middleware.
type guard func(ctx context.Context, message any) error

func (g guard) commands() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := g(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func (g guard) queries() QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := g(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}

func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: nil validator")
	}
	return guard(v.Validate).commands()
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: nil validator")
	}
	return guard(v.Validate).queries()
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: nil authorizer")
	}
	return guard(a.Authorize).commands()
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: nil authorizer")
	}
	return guard(a.Authorize).queries()
}
