package core

import (
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/automoto/doomerang-netplay/shared/leveldata"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/automoto/doomerang-netplay/tags"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi/features/math"
)

// ServerLevel holds the host's collision space and spawn data for a level.
type ServerLevel struct {
	Space       *resolv.Space
	SpawnPoints []math.Vec2
	Pickups     []leveldata.PickupPoint
	MapWidth    int
	MapHeight   int
}

// NewServerLevel builds a resolv.Space from parsed level data. Spawn points
// are ordered by their index.
func NewServerLevel(data *leveldata.LevelData) *ServerLevel {
	space := resolv.NewSpace(data.MapWidth, data.MapHeight, 16, 16)

	for _, r := range data.SolidRects {
		obj := resolv.NewObject(r.X, r.Y, r.W, r.H, tags.ResolvSolid)
		obj.SetShape(resolv.NewRectangle(0, 0, r.W, r.H))
		space.Add(obj)
	}

	spawns := append([]leveldata.SpawnPoint(nil), data.SpawnPoints...)
	sort.SliceStable(spawns, func(i, j int) bool { return spawns[i].Index < spawns[j].Index })
	points := make([]math.Vec2, len(spawns))
	for i, sp := range spawns {
		points[i] = math.Vec2{X: sp.X, Y: sp.Y}
	}

	log := logging.For("level")
	log.Info().
		Int("solids", len(data.SolidRects)).
		Int("spawns", len(points)).
		Int("pickups", len(data.Pickups)).
		Msgf("loaded level %dx%d", data.MapWidth, data.MapHeight)

	return &ServerLevel{
		Space:       space,
		SpawnPoints: points,
		Pickups:     data.Pickups,
		MapWidth:    data.MapWidth,
		MapHeight:   data.MapHeight,
	}
}

// EmptyLevel is an open arena without solids, used when no level file is
// given.
func EmptyLevel(width, height int) *ServerLevel {
	return NewServerLevel(&leveldata.LevelData{
		MapWidth:    width,
		MapHeight:   height,
		SpawnPoints: []leveldata.SpawnPoint{{X: float64(width) / 2, Y: float64(height) / 2}},
	})
}

// LoadServerLevel parses one TMX file from fsys.
func LoadServerLevel(fsys fs.FS, path string) (*ServerLevel, error) {
	data, err := leveldata.LoadLevelData(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", path, err)
	}
	return NewServerLevel(data), nil
}

// LoadAllServerLevels loads all .tmx levels from the given assets directory,
// returning a map of ServerLevel keyed by stem name plus a sorted name list.
func LoadAllServerLevels(assetsDir string) (map[string]*ServerLevel, []string, error) {
	dataMap, names, err := leveldata.LoadAllLevels(os.DirFS(assetsDir), "levels")
	if err != nil {
		return nil, nil, fmt.Errorf("load all levels: %w", err)
	}

	levels := make(map[string]*ServerLevel, len(names))
	for _, name := range names {
		levels[name] = NewServerLevel(dataMap[name])
	}

	return levels, names, nil
}
