// Package audit keeps a bounded history of the calculations run against a
// hardware tree, built from the succeed and fail events on the bus.
package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action is the calculation an event records.
type Action string

const (
	ActionGoals       Action = "goals"
	ActionAllocation  Action = "allocation"
	ActionSimilarItem Action = "similar_item"
	ActionRollUp      Action = "roll_up"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Event is one entry in the history.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	NodeID    int       `json:"hardware_id"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
}

// Filter selects events. Zero fields match everything.
type Filter struct {
	Action    Action
	NodeID    int
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
}

func (f *Filter) matches(e *Event) bool {
	if f == nil {
		return true
	}
	switch {
	case f.Action != "" && e.Action != f.Action:
		return false
	case f.NodeID != 0 && e.NodeID != f.NodeID:
		return false
	case f.Status != "" && e.Status != f.Status:
		return false
	case f.StartTime != nil && e.Timestamp.Before(*f.StartTime):
		return false
	case f.EndTime != nil && e.Timestamp.After(*f.EndTime):
		return false
	}
	return true
}

// AuditLogger holds the most recent events in a circular buffer.
type AuditLogger struct {
	events     []*Event
	bufferSize int
	index      int
	count      int
	total      int64
	mu         sync.RWMutex
}

// NewAuditLogger creates a logger keeping the last bufferSize events.
func NewAuditLogger(bufferSize int) *AuditLogger {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &AuditLogger{
		events:     make([]*Event, bufferSize),
		bufferSize: bufferSize,
	}
}

// Log records an audit event, filling in its ID and timestamp if unset.
func (l *AuditLogger) Log(event *Event) error {
	if event == nil {
		return fmt.Errorf("audit: nil event")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	l.events[l.index] = event
	l.index = (l.index + 1) % l.bufferSize
	if l.count < l.bufferSize {
		l.count++
	}
	l.total++
	return nil
}

// GetEvents returns the stored events matching filter, oldest first.
func (l *AuditLogger) GetEvents(filter *Filter) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Event, 0, l.count)
	for i := 0; i < l.count; i++ {
		idx := (l.index - l.count + i + l.bufferSize) % l.bufferSize
		if e := l.events[idx]; e != nil && filter.matches(e) {
			result = append(result, e)
		}
	}
	return result
}

// GetRecentEvents returns the n most recent events, newest first.
func (l *AuditLogger) GetRecentEvents(n int) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > l.count {
		n = l.count
	}
	result := make([]*Event, 0, n)
	for i := 0; i < n; i++ {
		idx := (l.index - 1 - i + l.bufferSize) % l.bufferSize
		if l.events[idx] != nil {
			result = append(result, l.events[idx])
		}
	}
	return result
}

// GetEventCount returns the number of events currently stored.
func (l *AuditLogger) GetEventCount() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(l.count)
}

// Total returns the number of events ever logged, including those that
// have been overwritten.
func (l *AuditLogger) Total() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// Clear removes all events from the logger
func (l *AuditLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = make([]*Event, l.bufferSize)
	l.index = 0
	l.count = 0
}

// String returns a human-readable representation of an event
func (e *Event) String() string {
	s := fmt.Sprintf("[%s] %s hardware %d %s",
		e.Timestamp.Format(time.RFC3339), e.Action, e.NodeID, e.Status)
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}
