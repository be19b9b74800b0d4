package network

import (
	"errors"
	"fmt"

	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/shared/protocol"
)

var (
	// ErrMessageTooLarge is returned when a single message does not fit in an
	// empty payload. The message is not sent.
	ErrMessageTooLarge = errors.New("network: message larger than max payload")
	ErrSenderClosed    = errors.New("network: sender closed")
)

// BatchedMessageSender packs messages for one destination into payloads no
// larger than the codec bound. A full payload is pushed to the queue and a
// fresh one started; Close pushes whatever is left. Not safe for concurrent
// use; create one per destination per step.
type BatchedMessageSender struct {
	addr   netconfig.Address
	queue  *Queue
	codec  *protocol.Codec
	buf    []byte
	closed bool
}

// NewBatchedMessageSender returns a sender for addr. A nil codec selects
// protocol.Default.
func NewBatchedMessageSender(addr netconfig.Address, queue *Queue, codec *protocol.Codec) *BatchedMessageSender {
	if codec == nil {
		codec = protocol.Default
	}
	s := &BatchedMessageSender{
		addr:  addr,
		queue: queue,
		codec: codec,
	}
	codec.PrepareMessageBuffer(&s.buf)
	return s
}

// SendMessage appends msg to the pending payload, rolling over to a new
// payload when the current one is full.
func (s *BatchedMessageSender) SendMessage(msg any) error {
	if s.closed {
		return ErrSenderClosed
	}

	err := s.codec.AppendMessage(msg, &s.buf)
	if !errors.Is(err, protocol.ErrBufferFull) {
		return err
	}

	s.rollover()
	if err := s.codec.AppendMessage(msg, &s.buf); err != nil {
		if errors.Is(err, protocol.ErrBufferFull) {
			return fmt.Errorf("%w: %T to %s", ErrMessageTooLarge, msg, s.addr)
		}
		return err
	}
	return nil
}

// Close pushes the pending payload if it carries at least one message. It is
// safe to call more than once.
func (s *BatchedMessageSender) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if protocol.HasMessages(s.buf) {
		s.queue.Push(NetworkMessage{Address: s.addr, Payload: s.buf})
	}
	s.buf = nil
}

func (s *BatchedMessageSender) rollover() {
	if protocol.HasMessages(s.buf) {
		s.queue.Push(NetworkMessage{Address: s.addr, Payload: s.buf})
		s.buf = nil
	}
	s.codec.PrepareMessageBuffer(&s.buf)
}
