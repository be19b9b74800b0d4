package leveldata

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/lafriks/go-tiled"
)

// Layer and object group names read from TMX files.
const (
	SolidLayer       = "wg-tiles"
	SpawnObjectGroup = "PlayerSpawn"
	PickupGroup      = "Pickups"
)

// LoadLevelData parses a TMX file and returns its solid tiles, player spawn
// points and pickups. It takes an fs.FS so callers can pass embed.FS or
// os.DirFS.
func LoadLevelData(fsys fs.FS, tmxPath string) (*LevelData, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	data := &LevelData{
		MapWidth:  levelMap.Width * levelMap.TileWidth,
		MapHeight: levelMap.Height * levelMap.TileHeight,
	}

	// Parse solid tiles from the collision layer
	tileW := float64(levelMap.TileWidth)
	tileH := float64(levelMap.TileHeight)
	for _, layer := range levelMap.Layers {
		if layer.Name != SolidLayer {
			continue
		}
		for y := 0; y < levelMap.Height; y++ {
			for x := 0; x < levelMap.Width; x++ {
				tile := layer.Tiles[y*levelMap.Width+x]
				if tile.IsNil() {
					continue
				}
				data.SolidRects = append(data.SolidRects, SolidRect{
					X: float64(x) * tileW,
					Y: float64(y) * tileH,
					W: tileW,
					H: tileH,
				})
			}
		}
		break
	}

	for _, og := range levelMap.ObjectGroups {
		switch og.Name {
		case SpawnObjectGroup:
			for _, o := range og.Objects {
				data.SpawnPoints = append(data.SpawnPoints, SpawnPoint{
					X:     o.X,
					Y:     o.Y,
					Index: o.Properties.GetInt("spawnIndex"),
				})
			}
		case PickupGroup:
			for _, o := range og.Objects {
				kind, ok := netconfig.ParsePickupType(o.Properties.GetString("kind"))
				if !ok {
					return nil, fmt.Errorf("%s: pickup %d has unknown kind %q", tmxPath, o.ID, o.Properties.GetString("kind"))
				}
				data.Pickups = append(data.Pickups, PickupPoint{
					X:      o.X,
					Y:      o.Y,
					Type:   kind,
					Amount: int32(o.Properties.GetInt("amount")),
				})
			}
		}
	}

	// Sort spawns left-to-right for consistent assignment
	sort.Slice(data.SpawnPoints, func(i, j int) bool {
		return data.SpawnPoints[i].X < data.SpawnPoints[j].X
	})

	return data, nil
}

// LoadAllLevels discovers all .tmx files in levelsDir within fsys, loads each,
// and returns a map keyed by stem name plus a sorted list of names.
func LoadAllLevels(fsys fs.FS, levelsDir string) (map[string]*LevelData, []string, error) {
	pattern := levelsDir + "/*.tmx"
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no .tmx files found in %s", levelsDir)
	}

	levels := make(map[string]*LevelData, len(matches))
	names := make([]string, 0, len(matches))

	for _, path := range matches {
		data, err := LoadLevelData(fsys, path)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		stem := strings.TrimSuffix(filepath.Base(path), ".tmx")
		levels[stem] = data
		names = append(names, stem)
	}

	sort.Strings(names)
	return levels, names, nil
}
