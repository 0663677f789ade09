package pubsub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return m.Counter.GetValue()
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Channel():
		if !ok {
			t.Fatal("subscription closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}
	return Event{}
}

func TestPublishFillsIdentity(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	sub, err := ps.Subscribe(context.Background(), TopicSucceedCalculateAllocation)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	ps.Publish(Event{Topic: TopicSucceedCalculateAllocation, NodeID: 1})

	ev := receive(t, sub)
	if ev.ID == uuid.Nil {
		t.Error("event ID not assigned")
	}
	if ev.Time.IsZero() {
		t.Error("event time not assigned")
	}
	if ev.NodeID != 1 || ev.Topic != TopicSucceedCalculateAllocation {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	subs := make([]*Subscription, 5)
	for i := range subs {
		sub, err := ps.Subscribe(context.Background(), TopicFailCalculateAllocation)
		if err != nil {
			t.Fatalf("Failed to subscribe %d: %v", i, err)
		}
		defer sub.Unsubscribe()
		subs[i] = sub
	}

	msg := "Failed to allocate reliability for allocation record ID 3.  System hazard rate was 0.0."
	if dropped := ps.Publish(Event{Topic: TopicFailCalculateAllocation, NodeID: 3, Message: msg}); dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}

	var id uuid.UUID
	for i, sub := range subs {
		ev := receive(t, sub)
		if ev.Message != msg {
			t.Errorf("Subscriber %d: got %q", i, ev.Message)
		}
		if i > 0 && ev.ID != id {
			t.Errorf("Subscriber %d saw a different event ID", i)
		}
		id = ev.ID
	}
}

func TestTopicIsolation(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	ctx := context.Background()
	goals, _ := ps.Subscribe(ctx, TopicSucceedCalculateGoals)
	similar, _ := ps.Subscribe(ctx, TopicSucceedCalculateSimilarItem)
	all, _ := ps.Subscribe(ctx, AllTopics)
	defer goals.Unsubscribe()
	defer similar.Unsubscribe()
	defer all.Unsubscribe()

	ps.Publish(Event{Topic: TopicSucceedCalculateGoals, NodeID: 2})

	if ev := receive(t, goals); ev.NodeID != 2 {
		t.Errorf("goals subscriber got %+v", ev)
	}
	if ev := receive(t, all); ev.Topic != TopicSucceedCalculateGoals {
		t.Errorf("wildcard subscriber got %+v", ev)
	}

	select {
	case ev := <-similar.Channel():
		t.Errorf("similar item subscriber received %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), TopicSucceedRollUpChanges)

	ps.Publish(Event{Topic: TopicSucceedRollUpChanges, NodeID: 1})
	receive(t, sub)

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	ps.Publish(Event{Topic: TopicSucceedRollUpChanges, NodeID: 1})
	if _, ok := <-sub.Channel(); ok {
		t.Error("received event after unsubscribe")
	}
	if n := ps.GetSubscriberCount(TopicSucceedRollUpChanges); n != 0 {
		t.Errorf("subscriber count = %d, want 0", n)
	}
}

func TestContextCancellation(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := ps.Subscribe(ctx, TopicSucceedCalculateAllocation)

	done := make(chan struct{})
	go func() {
		for range sub.Channel() {
		}
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscription channel did not close on context cancellation")
	}
}

func TestConcurrentPublish(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), TopicSucceedCalculateAllocation)
	defer sub.Unsubscribe()

	const numEvents = 50 // below the subscriber buffer

	var wg sync.WaitGroup
	for i := 0; i < numEvents; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ps.Publish(Event{Topic: TopicSucceedCalculateAllocation, NodeID: n})
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for i := 0; i < numEvents; i++ {
		seen[receive(t, sub).NodeID] = true
	}
	if len(seen) != numEvents {
		t.Errorf("Expected %d distinct events, received %d", numEvents, len(seen))
	}
}

func TestFullBufferDropsAndCounts(t *testing.T) {
	reg := metrics.NewRegistry()
	ps := NewPubSub(WithMetrics(reg))
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), TopicFailCalculateSimilarItem)
	defer sub.Unsubscribe()

	dropped := 0
	for i := 0; i < subscriberBuffer+3; i++ {
		dropped += ps.Publish(Event{Topic: TopicFailCalculateSimilarItem, NodeID: i})
	}

	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
	published := counterValue(t, reg.EventsPublishedTotal.WithLabelValues(TopicFailCalculateSimilarItem))
	if published != subscriberBuffer+3 {
		t.Errorf("published metric = %v", published)
	}
	if got := counterValue(t, reg.EventsDroppedTotal.WithLabelValues(TopicFailCalculateSimilarItem)); got != 3 {
		t.Errorf("dropped metric = %v, want 3", got)
	}

	// events stay in publish order
	for i := 0; i < 5; i++ {
		if ev := receive(t, sub); ev.NodeID != i {
			t.Fatalf("event %d has node %d", i, ev.NodeID)
		}
	}
}

func TestShutdown(t *testing.T) {
	ps := NewPubSub()

	sub, _ := ps.Subscribe(context.Background(), TopicSucceedCalculateGoals)

	done := make(chan struct{})
	go func() {
		for range sub.Channel() {
		}
		close(done)
	}()

	ps.Shutdown()
	ps.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscription channel did not close on shutdown")
	}

	if _, err := ps.Subscribe(context.Background(), TopicSucceedCalculateGoals); !errors.Is(err, ErrShutdown) {
		t.Errorf("Subscribe after shutdown: err = %v", err)
	}
	if dropped := ps.Publish(Event{Topic: TopicSucceedCalculateGoals}); dropped != 0 {
		t.Errorf("Publish after shutdown dropped %d", dropped)
	}
	sub.Unsubscribe()
}
