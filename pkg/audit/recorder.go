package audit

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dd0wney/ramstk-analysis/pkg/logging"
	"github.com/dd0wney/ramstk-analysis/pkg/pubsub"
)

var topicActions = map[string]Action{
	pubsub.TopicSucceedCalculateGoals:       ActionGoals,
	pubsub.TopicFailCalculateGoals:          ActionGoals,
	pubsub.TopicSucceedCalculateAllocation:  ActionAllocation,
	pubsub.TopicFailCalculateAllocation:     ActionAllocation,
	pubsub.TopicSucceedCalculateSimilarItem: ActionSimilarItem,
	pubsub.TopicFailCalculateSimilarItem:    ActionSimilarItem,
	pubsub.TopicSucceedRollUpChanges:        ActionRollUp,
}

// FromBusEvent converts a calculation event. Events on other topics
// report false.
func FromBusEvent(ev pubsub.Event) (*Event, bool) {
	action, ok := topicActions[ev.Topic]
	if !ok {
		return nil, false
	}
	status := StatusSuccess
	if strings.HasPrefix(ev.Topic, "fail_") {
		status = StatusFailure
	}
	e := &Event{
		Timestamp: ev.Time,
		Action:    action,
		NodeID:    ev.NodeID,
		Status:    status,
		Message:   ev.Message,
	}
	if ev.ID != uuid.Nil {
		e.ID = ev.ID.String()
	}
	return e, true
}

// Record logs every calculation event from sub until the subscription
// ends or ctx is cancelled.
func Record(ctx context.Context, sub *pubsub.Subscription, l *AuditLogger, logger logging.Logger) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Channel():
			if !ok {
				return
			}
			e, ok := FromBusEvent(ev)
			if !ok {
				continue
			}
			if err := l.Log(e); err != nil {
				logger.Warn("failed to record calculation", logging.Error(err))
			}
		}
	}
}
