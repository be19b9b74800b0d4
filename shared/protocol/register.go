package protocol

import (
	"fmt"
	"reflect"

	"github.com/automoto/doomerang-netplay/shared/messages"
)

// Tag identifies a message type on the wire. Values are stable across
// versions; never renumber an existing tag.
type Tag uint8

const (
	TagRemoteInput         Tag = 1
	TagClientPlayerSpawned Tag = 2
	TagPlayerConnected     Tag = 3
	TagPlayerDisconnected  Tag = 4
	TagScore               Tag = 5
	TagPlayerState         Tag = 6
	TagPlayerDespawned     Tag = 7
)

// RegisterMessages registers every built-in message with c. Host and peer
// must register the same table before any network operations.
func RegisterMessages(c *Codec) error {
	table := []struct {
		tag    Tag
		sample any
	}{
		{TagRemoteInput, messages.RemoteInputMessage{}},
		{TagClientPlayerSpawned, messages.ClientPlayerSpawned{}},
		{TagPlayerConnected, messages.PlayerConnectedEvent{}},
		{TagPlayerDisconnected, messages.PlayerDisconnectedEvent{}},
		{TagScore, messages.ScoreEvent{}},
		{TagPlayerState, messages.PlayerStateMessage{}},
		{TagPlayerDespawned, messages.PlayerDespawnedMessage{}},
	}
	for _, m := range table {
		if err := c.Register(m.tag, m.sample); err != nil {
			return err
		}
	}
	return nil
}

// Register binds tag to the concrete type of sample. It must be called
// before the codec is shared between goroutines.
func (c *Codec) Register(tag Tag, sample any) error {
	t := reflect.TypeOf(sample)
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("register tag %d: %T is not a struct", tag, sample)
	}
	if prev, ok := c.byTag[tag]; ok {
		return fmt.Errorf("register tag %d: already bound to %s", tag, prev)
	}
	if prev, ok := c.byType[t]; ok {
		return fmt.Errorf("register %s: already bound to tag %d", t, prev)
	}
	c.byTag[tag] = t
	c.byType[t] = tag
	return nil
}
