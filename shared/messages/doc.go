// Package messages holds the plain structs exchanged between host and peers
// and the local events published on the event bus. Wire messages are encoded
// by shared/protocol; every field is replicated as-is.
package messages

// Message is any value that can travel through the wire codec or the bus.
type Message = any
