package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/automoto/doomerang-netplay/server/core"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeerAdoptsHostPlayer(t *testing.T) {
	host := core.NewServer(core.Options{})
	ts := httptest.NewServer(host.Handler())
	defer ts.Close()
	defer host.Stop()

	peer := NewPeer(Options{Seed: 7})
	require.NoError(t, peer.Connect(context.Background(), strings.TrimPrefix(ts.URL, "http://")))
	defer peer.Close()

	var local netconfig.EntityID
	require.Eventually(t, func() bool {
		host.Step()
		peer.Step()
		id, ok := peer.LocalEntity()
		if !ok {
			return false
		}
		local = id
		return assert.ObjectsAreEqual([]netconfig.EntityID{id}, peer.Replicas())
	}, 5*time.Second, 20*time.Millisecond)

	target, ok := peer.CameraTarget()
	require.True(t, ok)
	assert.Equal(t, local, target)

	require.Eventually(t, func() bool {
		host.Step()
		peer.Step()
		remotes := host.Registry().Remotes()
		return len(remotes) == 1 && remotes[0].LastSequence > 0 && remotes[0].Info.EntityID == local
	}, 5*time.Second, 20*time.Millisecond, "host receives sequenced input for the adopted player")

	peer.Close()
	require.Eventually(t, func() bool {
		host.Step()
		return host.Registry().RemoteCount() == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestPeerStepWithoutHost(t *testing.T) {
	peer := NewPeer(Options{Seed: 1})
	defer peer.Close()

	assert.False(t, peer.Connected())
	peer.Step()
	peer.Step()
	_, ok := peer.LocalEntity()
	assert.False(t, ok)
	assert.Empty(t, peer.Replicas())
	assert.Zero(t, peer.outgoing.Len(), "no input is queued without a host")
}

func TestPeerConnectFailure(t *testing.T) {
	peer := NewPeer(Options{})
	defer peer.Close()

	err := peer.Connect(context.Background(), "127.0.0.1:1")
	require.Error(t, err)
	assert.ErrorContains(t, err, "127.0.0.1:1")
	assert.ErrorContains(t, peer.Run(context.Background()), "host link")
}
