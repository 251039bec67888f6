package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"gearshare/internal/app/commands"
)

// IdempotentCommand opts a command into replay protection. ResultPrototype
// must return a pointer to the handler's result type so a cached payload can
// be decoded back into it.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

// IdempotencyRecord caches one command outcome, success or failure.
// Failures are cached too: a retried command that already failed validation
// gets the same answer, not a second execution. ErrorKind preserves which
// registered sentinel the failure matched, so a replayed error still
// satisfies errors.Is and maps to the same HTTP status.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorKind  string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency short-circuits replays of commands carrying a non-empty key.
// Commands without the interface, or with an empty key, pass straight
// through. The optional sentinels are matched via errors.Is when a failure
// is cached, so the replayed error keeps its sentinel identity.
func Idempotency(store IdempotencyStore, codec ResultCodec, sentinels ...error) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()

			if rec, found, err := store.Get(ctx, key); err != nil {
				return nil, err
			} else if found {
				return replay(rec, idCmd, codec, sentinels)
			}

			result, err := nextFn(ctx, cmd)
			rec := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
			if err != nil {
				rec.Error = err.Error()
				rec.ErrorKind = kindOf(err, sentinels)
				if saveErr := store.Save(ctx, rec); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				rec.Payload, err = codec.Encode(result)
				if err != nil {
					return nil, err
				}
			}
			if err := store.Save(ctx, rec); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

func replay(rec IdempotencyRecord, cmd IdempotentCommand, codec ResultCodec, sentinels []error) (any, error) {
	if rec.Error != "" {
		return nil, rehydrate(rec, sentinels)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	if rv := reflect.ValueOf(proto); rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface(), nil
	}
	return proto, nil
}

// kindOf records which sentinel the failure matched. The sentinel's own
// message is the discriminator; sentinel messages are unique per package.
func kindOf(err error, sentinels []error) string {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return ""
}

// rehydrate rebuilds a cached failure. When the record names a known
// sentinel the returned error unwraps to it, so errors.Is keeps working
// across a replay; the original message is preserved either way.
func rehydrate(rec IdempotencyRecord, sentinels []error) error {
	if rec.ErrorKind != "" {
		for _, s := range sentinels {
			if s.Error() != rec.ErrorKind {
				continue
			}
			if rec.Error == rec.ErrorKind {
				return s
			}
			return &replayedError{msg: rec.Error, cause: s}
		}
	}
	return errors.New(rec.Error)
}

type replayedError struct {
	msg   string
	cause error
}

func (e *replayedError) Error() string { return e.msg }

func (e *replayedError) Unwrap() error { return e.cause }
