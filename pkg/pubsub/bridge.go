package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/ramstk-analysis/pkg/logging"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
)

const bridgeSendDeadline = time.Second

// Bridge forwards bus events to a mangos PUB socket so processes outside
// this one can follow calculations. Each message is the topic, a single
// space, then the event as JSON, so SUB sockets can filter by topic prefix.
type Bridge struct {
	sock    mangos.Socket
	sub     *Subscription
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewBridge listens on addr (for example "tcp://127.0.0.1:40899") and
// subscribes to every topic on ps.
func NewBridge(ctx context.Context, ps *PubSub, addr string, logger logging.Logger, reg *metrics.Registry) (*Bridge, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSendDeadline, bridgeSendDeadline); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to set send deadline: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	sub, err := ps.Subscribe(ctx, AllTopics)
	if err != nil {
		sock.Close()
		return nil, err
	}

	logger.Info("event bridge listening", logging.String("addr", addr))
	return &Bridge{
		sock:    sock,
		sub:     sub,
		logger:  logger.With(logging.Component("event-bridge")),
		metrics: reg,
	}, nil
}

// EncodeEvent renders ev in the bridge wire format.
func EncodeEvent(ev Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	msg := make([]byte, 0, len(ev.Topic)+1+len(body))
	msg = append(msg, ev.Topic...)
	msg = append(msg, ' ')
	return append(msg, body...), nil
}

// DecodeEvent parses a message produced by EncodeEvent.
func DecodeEvent(msg []byte) (Event, error) {
	var ev Event
	i := bytes.IndexByte(msg, ' ')
	if i < 0 {
		return ev, fmt.Errorf("malformed event message: no topic separator")
	}
	if err := json.Unmarshal(msg[i+1:], &ev); err != nil {
		return ev, fmt.Errorf("malformed event message: %w", err)
	}
	return ev, nil
}

// Run forwards events until the subscription ends.
func (b *Bridge) Run() {
	for ev := range b.sub.Channel() {
		msg, err := EncodeEvent(ev)
		if err == nil {
			err = b.sock.Send(msg)
		}
		if err != nil {
			b.logger.Warn("failed to bridge event", logging.Topic(ev.Topic), logging.Error(err))
			b.record(metrics.StatusError)
			continue
		}
		b.record(metrics.StatusSuccess)
	}
}

func (b *Bridge) record(status string) {
	if b.metrics != nil {
		b.metrics.RecordBridgedEvent(status)
	}
}

// Close stops forwarding and closes the socket.
func (b *Bridge) Close() error {
	b.sub.Unsubscribe()
	return b.sock.Close()
}
