package pubsub

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
)

func TestEncodeDecodeEvent(t *testing.T) {
	ev := Event{Topic: TopicFailCalculateGoals, NodeID: 4, Message: "goal unreachable"}

	msg, err := EncodeEvent(ev)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(msg), TopicFailCalculateGoals+" {"))

	got, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, ev.Topic, got.Topic)
	assert.Equal(t, 4, got.NodeID)
	assert.Equal(t, "goal unreachable", got.Message)

	_, err = DecodeEvent([]byte("no-separator"))
	assert.Error(t, err)
	_, err = DecodeEvent([]byte("topic {bad json"))
	assert.Error(t, err)
}

func TestBridgeForwardsEvents(t *testing.T) {
	const addr = "inproc://ramstk-bridge-test"

	reg := metrics.NewRegistry()
	ps := NewPubSub()
	defer ps.Shutdown()

	bridge, err := NewBridge(context.Background(), ps, addr, nil, reg)
	require.NoError(t, err)
	defer bridge.Close()
	go bridge.Run()

	sock, err := sub.NewSocket()
	require.NoError(t, err)
	defer sock.Close()
	require.NoError(t, sock.SetOption(mangos.OptionSubscribe, []byte(TopicSucceedCalculateAllocation)))
	require.NoError(t, sock.SetOption(mangos.OptionRecvDeadline, 50*time.Millisecond))
	require.NoError(t, sock.Dial(addr))

	// PUB drops messages until the subscriber is connected, so keep
	// publishing until one arrives.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ps.Publish(Event{Topic: TopicFailCalculateAllocation, NodeID: 9})
		ps.Publish(Event{Topic: TopicSucceedCalculateAllocation, NodeID: 1})

		msg, err := sock.Recv()
		if err != nil {
			continue
		}
		ev, err := DecodeEvent(msg)
		require.NoError(t, err)
		assert.Equal(t, TopicSucceedCalculateAllocation, ev.Topic)
		assert.Equal(t, 1, ev.NodeID)
		return
	}
	t.Fatal("no event received over the bridge")
}
