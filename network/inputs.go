package network

import "github.com/automoto/doomerang-netplay/shared/messages"

const inputHistorySize = 64

// InputHistory is a ring buffer of the controller snapshots a peer has sent,
// keyed by sequence number. It also mints the next sequence.
type InputHistory struct {
	history [inputHistorySize]messages.RemoteInputMessage
	stored  [inputHistorySize]bool
	nextSeq uint32
}

// Next stamps msg with the next sequence number and stores it.
func (h *InputHistory) Next(msg messages.RemoteInputMessage) messages.RemoteInputMessage {
	h.nextSeq++
	msg.Sequence = h.nextSeq
	idx := msg.Sequence % inputHistorySize
	h.history[idx] = msg
	h.stored[idx] = true
	return msg
}

// Get retrieves a stored input by sequence number. Returns false if not found
// or if the slot has been overwritten.
func (h *InputHistory) Get(seq uint32) (messages.RemoteInputMessage, bool) {
	idx := seq % inputHistorySize
	if !h.stored[idx] || h.history[idx].Sequence != seq {
		return messages.RemoteInputMessage{}, false
	}
	return h.history[idx], true
}

// LastSeq returns the most recently minted sequence, zero before the first.
func (h *InputHistory) LastSeq() uint32 {
	return h.nextSeq
}
