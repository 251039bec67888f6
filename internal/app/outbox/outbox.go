// Package outbox defines the application-side port for the transactional
// outbox: handlers hand it pending domain events, the infra layer persists
// them in the same unit of work as the aggregate write.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gearshare/internal/domain/shared/events"
)

// EventRecord is one serialized domain event awaiting relay.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event struct as-is. IDGenerator exists for
// deterministic test output; the default is time-based.
type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	id := e.IDGenerator
	if id == nil {
		id = func() string { return fmt.Sprintf("evt-%d", time.Now().UnixNano()) }
	}
	return EventRecord{
		ID:         id(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

// RecordDomainEvents encodes and stages each pending event. A nil outbox is
// legal (test wiring); an encode or store failure aborts the whole command
// so state and events cannot diverge.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
