package protocol

import (
	"testing"

	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi/features/math"
)

func sampleMessages() []messages.Message {
	return []messages.Message{
		messages.RemoteInputMessage{
			Sender:   "10.0.0.2:5000",
			Sequence: 42,
			Controller: netconfig.ControllerState{
				ID: 1, A: true, Y: true, RightShoulder: true, Back: true,
				LeftX: -0.5, LeftY: 1, RightX: 0.25, RightY: -1,
				LeftTrigger: 0.75, RightTrigger: 1,
			},
		},
		messages.ClientPlayerSpawned{ClientEntityID: 7},
		messages.ClientPlayerSpawned{ClientEntityID: netconfig.InvalidID},
		messages.PlayerConnectedEvent{Address: "127.0.0.1:9000"},
		messages.PlayerDisconnectedEvent{Address: "127.0.0.1:9000"},
		messages.ScoreEvent{EntityID: 3, Score: -25},
		messages.PlayerStateMessage{
			EntityID:         12,
			Position:         math.Vec2{X: 100.5, Y: -32},
			Velocity:         math.Vec2{X: 1, Y: 0},
			Direction:        math.Vec2{X: -1, Y: 0},
			Aim:              math.Vec2{X: 0.7, Y: 0.7},
			State:            netconfig.PlayerDead,
			Score:            150,
			Health:           0,
			Weapon:           netconfig.WeaponRocketLauncher,
			WeaponState:      netconfig.WeaponReloading,
			MagazineCapacity: 4,
			MagazineLeft:     1,
			Ammunition:       20,
			ReloadPercentage: 0.5,
		},
		messages.PlayerDespawnedMessage{EntityID: 12},
	}
}

func TestRoundTripEachMessage(t *testing.T) {
	for _, msg := range sampleMessages() {
		buf, err := SerializeMessage(msg)
		require.NoError(t, err)
		require.True(t, HasMessages(buf))

		got, err := DecodeMessages(buf)
		require.NoError(t, err)
		require.Len(t, got, 1)
		if diff := cmp.Diff(msg, got[0]); diff != "" {
			t.Errorf("round trip %T mismatch (-want +got):\n%s", msg, diff)
		}
	}
}

func TestBatchPreservesOrder(t *testing.T) {
	var buf []byte
	PrepareMessageBuffer(&buf)
	want := sampleMessages()
	for _, msg := range want {
		require.True(t, SerializeMessageToBuffer(msg, &buf))
	}

	got, err := DecodeMessages(buf)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestPointerMessagesEncodeAsValues(t *testing.T) {
	buf, err := SerializeMessage(&messages.ScoreEvent{EntityID: 1, Score: 5})
	require.NoError(t, err)

	got, err := DecodeMessages(buf)
	require.NoError(t, err)
	assert.Equal(t, []messages.Message{messages.ScoreEvent{EntityID: 1, Score: 5}}, got)
}

func TestBufferNeverExceedsBound(t *testing.T) {
	c := NewCodec(64)
	var buf []byte
	c.PrepareMessageBuffer(&buf)

	written := 0
	for c.SerializeMessageToBuffer(messages.ScoreEvent{EntityID: 1, Score: 1}, &buf) {
		written++
		require.LessOrEqual(t, len(buf), 64)
	}
	assert.Positive(t, written)

	before := append([]byte(nil), buf...)
	assert.False(t, c.SerializeMessageToBuffer(messages.ScoreEvent{EntityID: 2, Score: 2}, &buf))
	assert.Equal(t, before, buf, "failed append must leave the buffer untouched")

	got, err := c.DecodeMessages(buf)
	require.NoError(t, err)
	assert.Len(t, got, written)
}

func TestOversizeMessageIntoEmptyBuffer(t *testing.T) {
	c := NewCodec(8)
	var buf []byte
	err := c.AppendMessage(messages.PlayerConnectedEvent{Address: "a-rather-long-address:1234"}, &buf)
	assert.ErrorIs(t, err, ErrBufferFull)
	assert.Empty(t, buf)
}

func TestUnknownMessage(t *testing.T) {
	type notRegistered struct{ X int }

	var buf []byte
	PrepareMessageBuffer(&buf)
	assert.False(t, SerializeMessageToBuffer(notRegistered{X: 1}, &buf))
	assert.Len(t, buf, PreambleSize)

	_, err := SerializeMessage(notRegistered{})
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	valid, err := SerializeMessage(messages.ScoreEvent{EntityID: 1, Score: 1})
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload []byte
		want    error
	}{
		{"empty", nil, ErrBadPreamble},
		{"bad magic", []byte{0x00, 0x4E, netconfig.ProtocolVersion}, ErrBadPreamble},
		{"bad version", []byte{magic0, magic1, netconfig.ProtocolVersion + 1}, ErrBadPreamble},
		{"short header", append(append([]byte(nil), valid[:PreambleSize]...), byte(TagScore), 0x00), ErrTruncated},
		{"short body", valid[:len(valid)-1], ErrTruncated},
		{"unknown tag", []byte{magic0, magic1, netconfig.ProtocolVersion, 0xEE, 0x00, 0x00}, ErrUnknownMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessages(tt.payload)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEmptyPayloadDecodesToNothing(t *testing.T) {
	var buf []byte
	PrepareMessageBuffer(&buf)
	assert.False(t, HasMessages(buf))

	got, err := DecodeMessages(buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	c := NewCodec(netconfig.MaxMessageSize)
	assert.Error(t, c.Register(TagScore, struct{ A int }{}))
	assert.Error(t, c.Register(99, messages.ScoreEvent{}))
	assert.Error(t, c.Register(100, 5))
}
