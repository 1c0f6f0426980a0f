package bus

import (
	"errors"
	"testing"
	"time"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe("entity.spawned", func(e Event) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("entity.spawned", "tester", "torch", nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got == nil || got.Data() != "torch" || got.Source() != "tester" {
		t.Fatalf("handler not called with event: %#v", got)
	}
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := range 5 {
		_, _ = b.Subscribe("ev", func(Event) error { order = append(order, i); return nil })
	}
	_ = b.Publish(NewEvent("ev", "src", nil, nil))
	for i, v := range order {
		if v != i {
			t.Fatalf("unexpected delivery order: %v", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 deliveries, got %d", len(order))
	}
}

func TestWildcardReceivesEverything(t *testing.T) {
	b := New()
	var types []string
	_, _ = b.Subscribe(Wildcard, func(e Event) error { types = append(types, e.Type()); return nil })
	_ = b.PublishBatch(NewEvent("a", "s", nil, nil), NewEvent("b", "s", nil, nil))
	if len(types) != 2 || types[0] != "a" || types[1] != "b" {
		t.Fatalf("wildcard saw %v", types)
	}
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1, e2 := errors.New("one"), errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })
	err := b.Publish(NewEvent("x", "src", nil, nil))
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("x", func(Event) error { count++; return nil })
	_ = b.Publish(NewEvent("x", "src", nil, nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if sub.IsActive() {
		t.Fatal("subscription still active")
	}
	_ = sub.Cancel()
	_ = b.Publish(NewEvent("x", "src", nil, nil))
	if count != 1 {
		t.Fatalf("expected one delivery, got %d", count)
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	if _, err := New().Subscribe("x", nil); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
}

func TestFiltersDropSilently(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	count := 0
	_, _ = b.Subscribe("x", func(Event) error { count++; return nil })
	reject := func(Event) bool { return false }
	if err := b.PublishWithFilters(NewEvent("x", "src", nil, nil), reject); err != nil {
		t.Fatalf("filtered publish: %v", err)
	}
	if count != 0 || b.GetMetrics().DroppedByFilters != 1 {
		t.Fatalf("filter did not drop: count=%d metrics=%+v", count, b.GetMetrics())
	}
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(e Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	if m := b.GetMetrics(); m.Published != 0 || m.DeliveredHandlers != 0 {
		t.Fatalf("metrics should be zero without observers: %+v", m)
	}

	obs := &testObserver{}
	b.AddObserver(obs)
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	m := b.GetMetrics()
	if m.Published != 1 || m.DeliveredHandlers != 1 || m.SubscribersActive != 1 {
		t.Fatalf("metrics should update with observer: %+v", m)
	}
	if obs.publishCount != 1 || obs.deliveredCount != 1 {
		t.Fatalf("observer not called exactly once: %+v", obs)
	}

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	if obs.publishCount != 1 {
		t.Fatalf("removed observer still called: %+v", obs)
	}
}
