package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkowalczyk/triplog/internal/notify"
)

func TestHub_PublishReachesSubscriber(t *testing.T) {
	h := notify.NewHub(time.Millisecond)
	defer h.Close()

	ch, cancel := h.Subscribe("trips:anna@example.com")
	defer cancel()

	h.Publish("trips:anna@example.com")

	select {
	case ev := <-ch:
		assert.Equal(t, "trips:anna@example.com", ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHub_TopicsAreIsolated(t *testing.T) {
	h := notify.NewHub(time.Millisecond)
	defer h.Close()

	ch, cancel := h.Subscribe("trips:anna@example.com")
	defer cancel()

	h.Publish("trips:bob@example.com")

	select {
	case <-ch:
		t.Fatal("received an event for a different topic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BurstCoalesces(t *testing.T) {
	h := notify.NewHub(20 * time.Millisecond)
	defer h.Close()

	ch, cancel := h.Subscribe("t")
	defer cancel()

	for i := 0; i < 10; i++ {
		h.Publish("t")
	}

	// One delivery for the burst.
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	select {
	case <-ch:
		t.Fatal("burst should coalesce into a single event")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := notify.NewHub(time.Millisecond)
	defer h.Close()

	ch, cancel := h.Subscribe("t")
	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open, "channel should be closed after cancel")
}

func TestHub_CloseClosesSubscribers(t *testing.T) {
	h := notify.NewHub(time.Millisecond)

	ch, _ := h.Subscribe("t")
	h.Close()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after close is a no-op, not a panic.
	h.Publish("t")
}

func TestHub_CancelAfterClose(t *testing.T) {
	// A stream unwinding during shutdown runs its deferred cancel after the
	// hub is already closed; the channel must not be closed a second time.
	h := notify.NewHub(time.Millisecond)

	ch, cancel := h.Subscribe("t")
	h.Close()

	assert.NotPanics(t, func() { cancel() })

	_, open := <-ch
	assert.False(t, open)
}

func TestHub_CloseAfterCancel(t *testing.T) {
	h := notify.NewHub(time.Millisecond)

	_, cancel := h.Subscribe("t")
	cancel()

	assert.NotPanics(t, func() { h.Close() })
}
