package network

import (
	"bytes"
	"testing"

	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/shared/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blob struct {
	Seq  int
	Data []byte
}

const blobTag protocol.Tag = 200

func blobCodec(t *testing.T, maxSize int) *protocol.Codec {
	t.Helper()
	c := protocol.NewCodec(maxSize)
	require.NoError(t, c.Register(blobTag, blob{}))
	return c
}

func decodeAll(t *testing.T, c *protocol.Codec, msgs []NetworkMessage) []messages.Message {
	t.Helper()
	var out []messages.Message
	for _, m := range msgs {
		got, err := c.DecodeMessages(m.Payload)
		require.NoError(t, err)
		out = append(out, got...)
	}
	return out
}

func TestSenderRollsOverLargeMessages(t *testing.T) {
	c := blobCodec(t, 2048)
	q := NewQueue()

	var want []messages.Message
	s := NewBatchedMessageSender("peer-a", q, c)
	for i := 0; i < 5; i++ {
		msg := blob{Seq: i, Data: bytes.Repeat([]byte{byte('a' + i)}, 1200)}
		want = append(want, msg)
		require.NoError(t, s.SendMessage(msg))
	}
	s.Close()

	out := q.Drain()
	require.GreaterOrEqual(t, len(out), 3)
	for _, m := range out {
		assert.Equal(t, netconfig.Address("peer-a"), m.Address)
		assert.LessOrEqual(t, len(m.Payload), 2048)
		assert.True(t, protocol.HasMessages(m.Payload))
	}
	assert.Equal(t, want, decodeAll(t, c, out))
}

func TestSenderPacksSmallMessagesWithoutLoss(t *testing.T) {
	q := NewQueue()
	s := NewBatchedMessageSender("peer-b", q, nil)

	var want []messages.Message
	for i := 0; i < 500; i++ {
		msg := messages.ScoreEvent{EntityID: netconfig.EntityID(i), Score: int32(i * 3)}
		want = append(want, msg)
		require.NoError(t, s.SendMessage(msg))
	}
	s.Close()

	out := q.Drain()
	require.Greater(t, len(out), 1, "500 scores cannot fit in one payload")
	for _, m := range out {
		assert.LessOrEqual(t, len(m.Payload), netconfig.MaxMessageSize)
	}
	assert.Equal(t, want, decodeAll(t, protocol.Default, out))
}

func TestSenderCloseFlushesOnce(t *testing.T) {
	q := NewQueue()
	s := NewBatchedMessageSender("peer-c", q, nil)
	require.NoError(t, s.SendMessage(messages.ClientPlayerSpawned{ClientEntityID: 4}))
	assert.Equal(t, 0, q.Len(), "nothing is pushed before close")

	s.Close()
	s.Close()
	require.Equal(t, 1, q.Len())

	assert.ErrorIs(t, s.SendMessage(messages.ClientPlayerSpawned{ClientEntityID: 5}), ErrSenderClosed)
	assert.Equal(t, 1, q.Len())
}

func TestSenderCloseWithoutMessagesPushesNothing(t *testing.T) {
	q := NewQueue()
	s := NewBatchedMessageSender("peer-d", q, nil)
	s.Close()
	assert.Equal(t, 0, q.Len())
}

func TestSenderRejectsOversizeMessage(t *testing.T) {
	c := blobCodec(t, 256)
	q := NewQueue()
	s := NewBatchedMessageSender("peer-e", q, c)

	require.NoError(t, s.SendMessage(blob{Seq: 1, Data: []byte("small")}))
	err := s.SendMessage(blob{Seq: 2, Data: bytes.Repeat([]byte{1}, 512)})
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	// The small message was pushed by the rollover attempt, the oversize one
	// was not, and the sender keeps working.
	require.NoError(t, s.SendMessage(blob{Seq: 3, Data: []byte("after")}))
	s.Close()

	got := decodeAll(t, c, q.Drain())
	assert.Equal(t, []messages.Message{
		blob{Seq: 1, Data: []byte("small")},
		blob{Seq: 3, Data: []byte("after")},
	}, got)
}

func TestSenderUnknownMessage(t *testing.T) {
	q := NewQueue()
	s := NewBatchedMessageSender("peer-f", q, nil)
	err := s.SendMessage(struct{ X int }{1})
	assert.ErrorIs(t, err, protocol.ErrUnknownMessage)
	s.Close()
	assert.Equal(t, 0, q.Len())
}

func TestSendersToDifferentAddressesShareQueue(t *testing.T) {
	q := NewQueue()
	a := NewBatchedMessageSender("a", q, nil)
	b := NewBatchedMessageSender("b", q, nil)
	require.NoError(t, a.SendMessage(messages.ScoreEvent{EntityID: 1, Score: 1}))
	require.NoError(t, b.SendMessage(messages.ScoreEvent{EntityID: 2, Score: 2}))
	b.Close()
	a.Close()

	out := q.Drain()
	require.Len(t, out, 2)
	assert.Equal(t, netconfig.Address("b"), out[0].Address)
	assert.Equal(t, netconfig.Address("a"), out[1].Address)
	assert.Equal(t, 0, q.Len())
}
