// Package scene assembles the demo world from a scene file and drives one
// frame of it: camera, mirror activation, reflections and the host draw.
package scene

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"dynamic-reflections/internal/config"
	"dynamic-reflections/internal/convert"
	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/reflection"
	"dynamic-reflections/internal/utils"
	"dynamic-reflections/internal/world"
)

// DefaultSpriteSet is the sprite set name the player walks around with.
const DefaultSpriteSet = "default"

// furnitureSpace derives stable ids for furniture declared without one.
var furnitureSpace = uuid.MustParse("7d3f5c36-2f1e-4a4e-9d59-0c8b1f1f6a10")

const layerBatchSize = 16

type Scene struct {
	Location *world.Location
	Farmer   *world.Farmer
	Mirrors  *reflection.MirrorSet

	cfg config.Config
}

// Load builds the world described by def, uploading every texture to device.
func Load(device engine2D.Device, def *config.Scene, cfg config.Config) (*Scene, error) {
	sheet, err := loadTexture(device, def, def.Map.TileSheet)
	if err != nil {
		return nil, err
	}

	m := &world.Map{TileSheet: sheet, SourceTile: def.Map.SourceTile}
	for _, ld := range def.Layers {
		layer := world.NewLayer(ld.Name, ld.Width, ld.Height)
		copy(layer.Tiles, ld.Tiles)
		m.Layers = append(m.Layers, layer)
	}
	loc := &world.Location{Name: def.Map.Name, Map: m}

	for _, fd := range def.Furniture {
		f, err := loadFurniture(device, def, fd)
		if err != nil {
			return nil, err
		}
		loc.Furniture = append(loc.Furniture, f)
	}

	farmer, err := loadFarmer(device, def, cfg)
	if err != nil {
		return nil, err
	}

	s := &Scene{Location: loc, Farmer: farmer}
	s.Apply(cfg)
	utils.Info("Scene: %q with %d layers, %d furniture, %d mirrors", loc.Name, len(m.Layers), len(loc.Furniture), len(s.Mirrors.Mirrors))
	return s, nil
}

func loadTexture(device engine2D.Device, def *config.Scene, name string) (engine2D.Texture, error) {
	if name == "" {
		return nil, nil
	}
	img, err := convert.LoadImage(def.Resolve(name))
	if errors.Is(err, os.ErrNotExist) {
		img, err = convert.FindImage(name)
	}
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", name, err)
	}
	return device.LoadTexture(img), nil
}

func loadFurniture(device engine2D.Device, def *config.Scene, fd config.FurnitureDef) (*world.Furniture, error) {
	tex, err := loadTexture(device, def, fd.Texture)
	if err != nil {
		return nil, fmt.Errorf("furniture %s: %w", fd.Name, err)
	}
	mask, err := loadTexture(device, def, fd.Mask)
	if err != nil {
		return nil, fmt.Errorf("furniture %s: %w", fd.Name, err)
	}

	f := world.NewFurniture(fd.Name, mgl32.Vec2{fd.Tile[0], fd.Tile[1]}, tex)
	f.MaskTexture = mask
	f.ID = furnitureID(fd)
	return f, nil
}

// furnitureID keeps ids stable across runs so mirror links in the config hold.
func furnitureID(fd config.FurnitureDef) uuid.UUID {
	if fd.ID != "" {
		id, err := uuid.Parse(fd.ID)
		if err == nil {
			return id
		}
		utils.Warn("Scene: furniture %s has bad id %q: %v", fd.Name, fd.ID, err)
	}
	key := fmt.Sprintf("%s@%g,%g", fd.Name, fd.Tile[0], fd.Tile[1])
	return uuid.NewSHA1(furnitureSpace, []byte(key))
}

func loadFarmer(device engine2D.Device, def *config.Scene, cfg config.Config) (*world.Farmer, error) {
	pd := def.Player
	feet := mgl32.Vec2{pd.Tile[0] * world.TileSize, (pd.Tile[1] + 1) * world.TileSize}
	f := world.NewFarmer(feet, DefaultSpriteSet)

	facing, ok := world.ParseDirection(pd.Facing)
	if !ok {
		utils.Warn("Scene: unknown facing %q, using down", pd.Facing)
	}
	f.Facing = facing

	sets := map[string]string{DefaultSpriteSet: pd.Sprite}
	if pd.MirrorSprite != "" {
		sets[cfg.Mirrors.SpriteSet] = pd.MirrorSprite
	}
	for name, file := range sets {
		tex, err := loadTexture(device, def, file)
		if err != nil {
			return nil, fmt.Errorf("player: %w", err)
		}
		f.Sprites[name] = &world.SpriteSet{
			Texture:     tex,
			FrameWidth:  pd.FrameWidth,
			FrameHeight: pd.FrameHeight,
			FrameCount:  pd.Frames,
		}
	}
	return f, nil
}

// Apply swaps in new settings. Mirrors are rebuilt from the "Mirrors" layer
// and the stored entries; call it between frames only.
func (s *Scene) Apply(cfg config.Config) {
	s.cfg = cfg
	s.Mirrors = buildMirrors(s.Location.Map, config.NewStore(cfg.Mirror))
}

// buildMirrors places a mirror on every "Mirrors" layer tile, adds stored
// mirrors off the layer, then overlays the stored settings.
func buildMirrors(m *world.Map, store *config.Store) *reflection.MirrorSet {
	set := reflection.NewMirrorSet()
	if layer := m.GetLayer(reflection.MirrorsLayerName); layer != nil {
		for y := 0; y < layer.Height; y++ {
			for x := 0; x < layer.Width; x++ {
				if layer.At(x, y) < 0 {
					continue
				}
				set.Add(&reflection.Mirror{Position: image.Pt(x, y), Enabled: true, Settings: reflection.DefaultSettings()})
			}
		}
	}
	for _, mirror := range store.Mirrors().Sorted() {
		if _, ok := set.Mirrors[mirror.Position]; !ok {
			set.Add(mirror)
		}
	}
	store.Apply(set)
	return set
}

// Camera centres a viewport of the given size on the player.
func (s *Scene) Camera(width, height int) (int, int) {
	p := s.Farmer.Position
	return int(p.X()) - width/2, int(p.Y()) - height/2
}

// WaterAnchor is where the water reflection stands, or nil with water off.
func (s *Scene) WaterAnchor() *mgl32.Vec2 {
	if !s.cfg.Water.Enabled {
		return nil
	}
	offset := mgl32.Vec2{s.cfg.Water.Anchor[0], s.cfg.Water.Anchor[1]}.Mul(world.TileSize)
	anchor := s.Farmer.Position.Add(offset)
	return &anchor
}

// Frame refreshes the mirrors for the player's position and returns the
// frame the pipeline should build.
func (s *Scene) Frame(t float64) reflection.Frame {
	s.Mirrors.Refresh(s.Farmer.Position, s.cfg.Mirrors.Range)
	return reflection.Frame{
		Location:    s.Location,
		Actor:       s.Farmer,
		Mirrors:     s.Mirrors,
		WaterAnchor: s.WaterAnchor(),
		Time:        t,
	}
}

// Draw paints the host frame: map layers, then the reflections, then the
// furniture and the player on top.
func (s *Scene) Draw(batch *engine2D.Batch, p *reflection.Pipeline, f reflection.Frame) error {
	vp := batch.Device().Viewport()

	back := engine2D.DefaultPass()
	back.Sampler = engine2D.SamplerPointClamp
	err := batch.Pass(back, func() error {
		for _, layer := range s.Location.Map.Layers {
			if layer.Name == reflection.MirrorsLayerName {
				continue
			}
			if err := s.Location.Map.DrawLayer(batch, layer, vp, image.Point{}, false, false, layerBatchSize); err != nil {
				return fmt.Errorf("layer %s: %w", layer.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := p.Composite(f); err != nil {
		return fmt.Errorf("reflections: %w", err)
	}

	front := back
	front.Sort = engine2D.SortFrontToBack
	return batch.Pass(front, func() error {
		if err := s.Location.DrawFurniture(batch, p.Filter()); err != nil {
			return err
		}
		return s.Farmer.Draw(batch)
	})
}

// Step runs one whole frame: reflections into their targets, then the host
// draw into the back buffer.
func (s *Scene) Step(device engine2D.Device, batch *engine2D.Batch, p *reflection.Pipeline, t float64) (reflection.Frame, error) {
	f := s.Frame(t)
	if err := p.Render(f); err != nil {
		return f, err
	}
	device.SetRenderTarget(nil)
	device.Clear(p.Background())
	return f, s.Draw(batch, p, f)
}
