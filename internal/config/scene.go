package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Scene describes the demo world: one map, its furniture and the player.
type Scene struct {
	Map       MapDef         `toml:"map"`
	Layers    []LayerDef     `toml:"layer"`
	Furniture []FurnitureDef `toml:"furniture"`
	Player    PlayerDef      `toml:"player"`

	// Dir is the directory the scene was read from; asset paths are relative to it.
	Dir string `toml:"-"`
}

type MapDef struct {
	Name       string `toml:"name"`
	TileSheet  string `toml:"tile_sheet"`
	SourceTile int    `toml:"source_tile"`
}

type LayerDef struct {
	Name   string `toml:"name"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// Tiles is row-major; -1 is empty.
	Tiles []int `toml:"tiles"`
}

type FurnitureDef struct {
	ID      string     `toml:"id"`
	Name    string     `toml:"name"`
	Tile    [2]float32 `toml:"tile"`
	Texture string     `toml:"texture"`
	Mask    string     `toml:"mask"`
}

type PlayerDef struct {
	// Tile is the starting tile of the player's feet.
	Tile         [2]float32 `toml:"tile"`
	Facing       string     `toml:"facing"`
	Sprite       string     `toml:"sprite"`
	MirrorSprite string     `toml:"mirror_sprite"`
	FrameWidth   int        `toml:"frame_width"`
	FrameHeight  int        `toml:"frame_height"`
	Frames       int        `toml:"frames"`
}

func LoadScene(path string) (*Scene, error) {
	if path == "" {
		return nil, ErrNoScene
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoScene)
	}
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}

	scene := &Scene{
		Map:    MapDef{SourceTile: 16},
		Player: PlayerDef{Facing: "down", FrameWidth: 16, FrameHeight: 32, Frames: 1},
	}
	if err := decode(data, scene); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	scene.Dir = filepath.Dir(path)

	for _, l := range scene.Layers {
		if len(l.Tiles) != l.Width*l.Height {
			return nil, fmt.Errorf("%s: layer %q has %d tiles, want %d", path, l.Name, len(l.Tiles), l.Width*l.Height)
		}
	}
	return scene, nil
}

// Resolve makes an asset path from the scene absolute.
func (s *Scene) Resolve(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.Dir, rel)
}
