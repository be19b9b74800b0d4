package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/automoto/doomerang-netplay/network"
	"github.com/automoto/doomerang-netplay/player"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/shared/protocol"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func mustSerialize(t *testing.T, msgs ...messages.Message) []byte {
	t.Helper()
	var buf []byte
	protocol.PrepareMessageBuffer(&buf)
	for _, m := range msgs {
		require.True(t, protocol.SerializeMessageToBuffer(m, &buf))
	}
	return buf
}

func TestHandleInboundStampsSender(t *testing.T) {
	s := NewServer(Options{})
	defer s.Stop()

	s.handleInbound(network.Inbound{Kind: network.PeerConnected, Address: "10.0.0.2:4000"})
	s.bus.ProcessEvents()
	rec, ok := s.registry.Remote("10.0.0.2:4000")
	require.True(t, ok)
	id := rec.Info.EntityID

	s.handleInbound(network.Inbound{
		Kind:    network.PeerPayload,
		Address: "10.0.0.2:4000",
		Payload: mustSerialize(t,
			messages.RemoteInputMessage{Sender: "spoofed", Sequence: 1, Controller: netconfig.ControllerState{LeftX: 1}},
			messages.ScoreEvent{EntityID: id, Score: 1000},
		),
	})
	s.bus.ProcessEvents()

	assert.Equal(t, float32(1), rec.Controller.LeftX)
	_, ok = s.registry.Remote("spoofed")
	assert.False(t, ok)
	assert.Zero(t, rec.Info.Score, "peers cannot award themselves score")

	s.handleInbound(network.Inbound{Kind: network.PeerPayload, Address: "10.0.0.2:4000", Payload: []byte{1, 2, 3, 4}})
	assert.Zero(t, s.bus.Pending())

	s.handleInbound(network.Inbound{Kind: network.PeerDisconnected, Address: "10.0.0.2:4000"})
	s.bus.ProcessEvents()
	assert.Zero(t, s.registry.RemoteCount())
}

func TestBotsSpawnAsLocalPlayers(t *testing.T) {
	s := NewServer(Options{Bots: 3})
	defer s.Stop()

	s.Step()
	assert.Equal(t, 2, s.PlayerCount(), "bots beyond the two local slots are not created")
	assert.True(t, s.registry.SlotOne().Active)
	assert.True(t, s.registry.SlotTwo().Active)

	for i := 0; i < 100; i++ {
		s.Step()
	}
	assert.NotEmpty(t, s.registry.Scoreboard())
}

func TestStatusRoutes(t *testing.T) {
	s := NewServer(Options{})
	defer s.Stop()
	s.handleInbound(network.Inbound{Kind: network.PeerConnected, Address: "peer"})
	s.Step()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/players", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Players []player.ScoreEntry `json:"players"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Players, 1)
	assert.Equal(t, "peer", body.Players[0].Name)
	assert.Equal(t, "alive", body.Players[0].State)
}

func TestPeerJoinPlayAndLeave(t *testing.T) {
	s := NewServer(Options{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.Stop()

	client := network.NewClient()
	require.NoError(t, client.Connect(context.Background(), strings.TrimPrefix(ts.URL, "http://")))
	defer client.Disconnect()

	spawned := netconfig.InvalidID
	sawState := false
	require.Eventually(t, func() bool {
		s.Step()
		for _, payload := range client.DrainPayloads() {
			msgs, err := protocol.DecodeMessages(payload)
			if err != nil {
				return false
			}
			for _, m := range msgs {
				switch m := m.(type) {
				case messages.ClientPlayerSpawned:
					spawned = m.ClientEntityID
				case messages.PlayerStateMessage:
					sawState = sawState || (spawned.Valid() && m.EntityID == spawned)
				}
			}
		}
		return spawned.Valid() && sawState
	}, 5*time.Second, 20*time.Millisecond)

	input, err := protocol.SerializeMessage(messages.RemoteInputMessage{Sequence: 1, Controller: netconfig.ControllerState{LeftX: 1}})
	require.NoError(t, err)
	require.NoError(t, client.SendMessageTo(input, client.Address()))

	require.Eventually(t, func() bool {
		s.Step()
		remotes := s.registry.Remotes()
		return len(remotes) == 1 && remotes[0].Controller.LeftX == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []netconfig.EntityID{spawned}, s.registry.PlayerIDs())

	client.Disconnect()
	require.Eventually(t, func() bool {
		s.Step()
		return s.registry.RemoteCount() == 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Zero(t, s.PlayerCount())
}
