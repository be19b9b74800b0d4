package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/automoto/doomerang-netplay/network"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/tags"
	"github.com/solarlune/resolv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi/features/math"
)

var levelTestdata = filepath.Join("..", "..", "shared", "leveldata", "testdata")

func TestLoadServerLevel(t *testing.T) {
	lvl, err := LoadServerLevel(os.DirFS(levelTestdata), "levels/arena.tmx")
	require.NoError(t, err)

	assert.Equal(t, []math.Vec2{{X: 20, Y: 24}, {X: 64, Y: 24}}, lvl.SpawnPoints)
	assert.Len(t, lvl.Pickups, 2)
	assert.Equal(t, 96, lvl.MapWidth)

	corner := resolv.NewObject(0, 0, 8, 8)
	lvl.Space.Add(corner)
	check := corner.Check(0, 0, tags.ResolvSolid)
	require.NotNil(t, check)
	assert.NotEmpty(t, check.ObjectsByTags(tags.ResolvSolid))
}

func TestLoadAllServerLevels(t *testing.T) {
	levels, names, err := LoadAllServerLevels(levelTestdata)
	require.NoError(t, err)
	assert.Equal(t, []string{"arena"}, names)
	require.Contains(t, levels, "arena")

	_, err = LoadServerLevel(os.DirFS(levelTestdata), "broken.tmx")
	assert.Error(t, err)
}

func TestServerUsesLevelSpawnsAndPickups(t *testing.T) {
	lvl, err := LoadServerLevel(os.DirFS(levelTestdata), "levels/arena.tmx")
	require.NoError(t, err)
	s := NewServer(Options{Level: lvl})
	defer s.Stop()
	assert.Equal(t, 2, s.pickups.Active())

	s.handleInbound(network.Inbound{Kind: network.PeerConnected, Address: "peer"})
	s.Step()
	rec, ok := s.registry.Remote("peer")
	require.True(t, ok)
	assert.Equal(t, lvl.SpawnPoints[0], s.transforms.Transform(rec.Info.EntityID).Position)
	assert.Equal(t, netconfig.TransformClient, s.transforms.Transform(rec.Info.EntityID).State)
}

func TestEmptyLevelHasCentreSpawn(t *testing.T) {
	lvl := EmptyLevel(200, 100)
	assert.Equal(t, []math.Vec2{{X: 100, Y: 50}}, lvl.SpawnPoints)
	assert.Empty(t, lvl.Pickups)
}
