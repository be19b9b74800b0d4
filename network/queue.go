package network

import (
	"sync"

	"github.com/automoto/doomerang-netplay/shared/netconfig"
)

// NetworkMessage is one addressed payload waiting for the transport.
type NetworkMessage struct {
	Address netconfig.Address
	Payload []byte
}

// Queue is the outgoing FIFO shared by every sender of a step. Safe for
// concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []NetworkMessage
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(msg NetworkMessage) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()
}

// Drain removes and returns every queued message in push order.
func (q *Queue) Drain() []NetworkMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
