package memory

import (
	"context"
	"sync"

	appoutbox "gearshare/internal/app/outbox"
)

// Outbox buffers recorded events and discards them on flush. It stands in
// for the Mongo outbox when running without a broker; Staged exists so
// tests can assert what a command would have published.
type Outbox struct {
	mu     sync.Mutex
	staged []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = append(o.staged, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = nil
	return nil
}

// Staged returns a copy of the events recorded since the last flush.
func (o *Outbox) Staged() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, len(o.staged))
	copy(out, o.staged)
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
