package pubsub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
)

// Calculation topics
const (
	TopicSucceedCalculateGoals       = "succeed_calculate_allocation_goals"
	TopicFailCalculateGoals          = "fail_calculate_allocation_goals"
	TopicSucceedCalculateAllocation  = "succeed_calculate_allocation"
	TopicFailCalculateAllocation     = "fail_calculate_allocation"
	TopicSucceedCalculateSimilarItem = "succeed_calculate_similar_item"
	TopicFailCalculateSimilarItem    = "fail_calculate_similar_item"
	TopicSucceedRollUpChanges        = "succeed_roll_up_change_descriptions"

	// AllTopics subscribes to every topic.
	AllTopics = "*"
)

// subscriberBuffer is the channel depth of each subscription.
const subscriberBuffer = 100

// ErrShutdown is returned when subscribing to a bus that has been shut down.
var ErrShutdown = errors.New("pubsub: bus is shut down")

// Event is a message on the bus.
type Event struct {
	ID      uuid.UUID      `json:"id"`
	Topic   string         `json:"topic"`
	NodeID  int            `json:"hardware_id"`
	Time    time.Time      `json:"time"`
	Message string         `json:"message,omitempty"`
	Tree    *hardware.Tree `json:"-"`
}

// PubSub provides publish/subscribe of calculation events
type PubSub struct {
	subscribers map[string]map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
	metrics     *metrics.Registry
}

// Subscription represents a subscription to a topic
type Subscription struct {
	topic     string
	channel   chan Event
	ps        *PubSub
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Option configures a PubSub.
type Option func(*PubSub)

// WithMetrics records published and dropped events in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(ps *PubSub) { ps.metrics = r }
}

// NewPubSub creates a new PubSub instance
func NewPubSub(opts ...Option) *PubSub {
	ps := &PubSub{
		subscribers: make(map[string]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ps)
	}
	return ps
}

// Subscribe creates a new subscription to topic, or to every topic when
// topic is AllTopics. The subscription ends when ctx is cancelled.
func (ps *PubSub) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return nil, ErrShutdown
	}
	ps.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:   topic,
		channel: make(chan Event, subscriberBuffer),
		ps:      ps,
		ctx:     subCtx,
		cancel:  cancel,
	}

	ps.mu.Lock()
	if ps.subscribers[topic] == nil {
		ps.subscribers[topic] = make(map[*Subscription]bool)
	}
	ps.subscribers[topic][sub] = true
	ps.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-ps.shutdown:
			// Shutdown closes the channel under the lock.
		}
	}()

	return sub, nil
}

// Publish delivers ev to the subscribers of ev.Topic and of AllTopics.
// A zero ID or Time is filled in. Subscribers whose buffer is full miss the
// event; Publish never blocks. It returns the number of subscribers that
// missed it.
func (ps *PubSub) Publish(ev Event) int {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return 0
	}
	ps.shutdownMu.Unlock()

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	// Sends are non-blocking, so they run under the read lock. Channels are
	// only closed under the write lock.
	dropped := 0
	ps.mu.RLock()
	for sub := range ps.subscribers[ev.Topic] {
		if !sub.offer(ev) {
			dropped++
		}
	}
	if ev.Topic != AllTopics {
		for sub := range ps.subscribers[AllTopics] {
			if !sub.offer(ev) {
				dropped++
			}
		}
	}
	ps.mu.RUnlock()

	if ps.metrics != nil {
		ps.metrics.RecordEvent(ev.Topic, dropped)
	}
	return dropped
}

// GetSubscriberCount returns the number of subscribers for a topic
func (ps *PubSub) GetSubscriberCount(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}

// Shutdown closes all subscriptions and shuts down the PubSub
func (ps *PubSub) Shutdown() {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return
	}
	ps.isShutdown = true
	ps.shutdownMu.Unlock()

	close(ps.shutdown)

	ps.mu.Lock()
	for topic := range ps.subscribers {
		for sub := range ps.subscribers[topic] {
			sub.close()
		}
		delete(ps.subscribers, topic)
	}
	ps.mu.Unlock()
}

// Topic returns the topic the subscription listens on.
func (s *Subscription) Topic() string {
	return s.topic
}

// Channel returns the subscription's event channel. It is closed when the
// subscription ends.
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()

	if s.ps.subscribers[s.topic] != nil {
		delete(s.ps.subscribers[s.topic], s)
		if len(s.ps.subscribers[s.topic]) == 0 {
			delete(s.ps.subscribers, s.topic)
		}
	}

	s.close()
}

func (s *Subscription) offer(ev Event) bool {
	select {
	case s.channel <- ev:
		return true
	default:
		return false
	}
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
