package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerID(t *testing.T) {
	t.Run("fallback id is minted once and reused", func(t *testing.T) {
		w := &Worker{}
		first := w.workerID()
		require.NotEmpty(t, first)
		assert.Equal(t, first, w.workerID())
		assert.Equal(t, first, w.ID)
	})

	t.Run("configured id is kept", func(t *testing.T) {
		w := &Worker{ID: "relay-1"}
		assert.Equal(t, "relay-1", w.workerID())
		assert.Equal(t, "relay-1", w.workerID())
	})

	t.Run("two workers get distinct fallback ids", func(t *testing.T) {
		a, b := &Worker{}, &Worker{}
		assert.NotEqual(t, a.workerID(), b.workerID())
	})
}

func TestTopicFor(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, "rental.events.v1", w.topicFor("rental.approved"))
	assert.Equal(t, "dispute.events.v1", w.topicFor("dispute.opened"))
	assert.Equal(t, "ping.events.v1", w.topicFor("ping"))

	prefixed := &Worker{TopicPrefix: "gearshare."}
	assert.Equal(t, "gearshare.rental.events.v1", prefixed.topicFor("rental.approved"))
}

func TestEnvelope(t *testing.T) {
	w := &Worker{Source: "app://gearshare-test"}
	doc := &EventDocument{
		ID:         "evt-1",
		Name:       "rental.approved",
		Payload:    []byte(`{"rental_id":"r-1"}`),
		OccurredAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Aggregate:  "r-1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}

	payload, headers, err := w.envelope(doc)
	require.NoError(t, err)
	assert.Equal(t, "application/cloudevents+json", headers["content-type"])
	assert.Equal(t, "00-abc-def-01", headers["traceparent"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "rental.approved.v1", evt["type"])
	assert.Equal(t, "app://gearshare-test", evt["source"])
	assert.Equal(t, "00-abc-def-01", evt["traceparent"])
	data, ok := evt["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "r-1", data["rental_id"])
}

func TestRetryAt(t *testing.T) {
	now := time.Now()

	t.Run("default delay without a backoff schedule", func(t *testing.T) {
		w := &Worker{}
		assert.WithinDuration(t, now.Add(defaultRetryDelay), w.retryAt(0), time.Second)
	})

	t.Run("walks the schedule then sticks at the last step", func(t *testing.T) {
		w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}}
		assert.WithinDuration(t, now.Add(time.Second), w.retryAt(0), time.Second)
		assert.WithinDuration(t, now.Add(time.Minute), w.retryAt(1), time.Second)
		assert.WithinDuration(t, now.Add(time.Minute), w.retryAt(7), time.Second)
	})
}
