package archetypes

import (
	"testing"

	"github.com/automoto/doomerang-netplay/components"
	"github.com/automoto/doomerang-netplay/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

func TestByName(t *testing.T) {
	for _, name := range []string{PlayerTemplate, ReplicaTemplate, PickupTemplate, CameraTemplate} {
		a, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, a.Name())
	}
	_, ok := ByName("boomerang")
	assert.False(t, ok)
}

func TestSpawnPlayer(t *testing.T) {
	world := donburi.NewWorld()
	entry := Player.Spawn(world)

	assert.True(t, entry.HasComponent(tags.Player))
	assert.True(t, entry.HasComponent(components.Transform))
	assert.True(t, entry.HasComponent(components.Health))
	assert.False(t, entry.HasComponent(tags.Replica))
	assert.Equal(t, 1, world.Len())
}
