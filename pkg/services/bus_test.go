package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestChangeBusDelivery(t *testing.T) {
	bus := NewChangeBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	event := ChangeEvent{Entity: "project", Action: "created", ID: uuid.New()}
	bus.Publish(event)

	select {
	case got := <-ch:
		if got != event {
			t.Errorf("expected %+v, got %+v", event, got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestChangeBusCancelStopsDelivery(t *testing.T) {
	bus := NewChangeBus()
	ch, cancel := bus.Subscribe()
	cancel()

	// Publishing after cancel must not panic on the closed channel.
	bus.Publish(ChangeEvent{Entity: "time_log", Action: "deleted", ID: uuid.New()})

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}

func TestChangeBusSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewChangeBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Overflow the subscriber buffer; extra events are dropped.
		for i := 0; i < 100; i++ {
			bus.Publish(ChangeEvent{Entity: "project", Action: "updated", ID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestChangeBusCancelIsIdempotent(t *testing.T) {
	bus := NewChangeBus()
	_, cancel := bus.Subscribe()
	cancel()
	cancel()
}
