package network

import (
	"errors"
	"fmt"

	"github.com/automoto/doomerang-netplay/shared/netconfig"
)

var (
	ErrUnknownPeer  = errors.New("network: unknown peer")
	ErrOutboxFull   = errors.New("network: peer outbox full")
	ErrNotConnected = errors.New("network: not connected")
)

// Pipe delivers one payload to one address.
type Pipe interface {
	SendMessageTo(payload []byte, addr netconfig.Address) error
}

// Flush drains q into pipe in FIFO order. Every message is attempted; the
// returned error joins the per-message failures.
func Flush(q *Queue, pipe Pipe) (int, error) {
	var errs []error
	sent := 0
	for _, msg := range q.Drain() {
		if err := pipe.SendMessageTo(msg.Payload, msg.Address); err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", msg.Address, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
