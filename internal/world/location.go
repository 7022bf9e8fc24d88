package world

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"dynamic-reflections/internal/engine2D"
)

// Layer is a grid of tile sheet indices; negative entries are empty.
type Layer struct {
	Name   string
	Width  int
	Height int
	Tiles  []int
}

func NewLayer(name string, width, height int) *Layer {
	tiles := make([]int, width*height)
	for i := range tiles {
		tiles[i] = -1
	}
	return &Layer{Name: name, Width: width, Height: height, Tiles: tiles}
}

func (l *Layer) At(x, y int) int {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return -1
	}
	return l.Tiles[y*l.Width+x]
}

func (l *Layer) Set(x, y, tile int) {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return
	}
	l.Tiles[y*l.Width+x] = tile
}

type Map struct {
	TileSheet engine2D.Texture
	// SourceTile is the edge length of one tile in the sheet, in texels.
	SourceTile int
	Layers     []*Layer
}

func (m *Map) GetLayer(name string) *Layer {
	for _, l := range m.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

func (m *Map) tileSource(index int) image.Rectangle {
	cols := m.TileSheet.Width() / m.SourceTile
	if cols == 0 {
		cols = 1
	}
	x := (index % cols) * m.SourceTile
	y := (index / cols) * m.SourceTile
	return image.Rect(x, y, x+m.SourceTile, y+m.SourceTile)
}

// DrawLayer submits the tiles of layer visible in viewport, with origin as the
// world pixel position of tile (0,0). reversed walks rows bottom-up and columns
// right-to-left. wrap repeats the layer outside its bounds. Tiles are handed to
// the batch in runs of batchSize.
func (m *Map) DrawLayer(batch *engine2D.Batch, layer *Layer, viewport engine2D.Viewport, origin image.Point, reversed, wrap bool, batchSize int) error {
	if layer == nil || m.TileSheet == nil || m.SourceTile <= 0 {
		return nil
	}
	if batchSize < 1 {
		batchSize = 1
	}

	minX := floorDiv(viewport.X-origin.X, TileSize)
	minY := floorDiv(viewport.Y-origin.Y, TileSize)
	maxX := floorDiv(viewport.X+viewport.Width-origin.X-1, TileSize)
	maxY := floorDiv(viewport.Y+viewport.Height-origin.Y-1, TileSize)
	if !wrap {
		minX, minY = max(minX, 0), max(minY, 0)
		maxX, maxY = min(maxX, layer.Width-1), min(maxY, layer.Height-1)
	}

	run := make([]engine2D.DrawCommand, 0, batchSize)
	submit := func() error {
		for _, cmd := range run {
			if err := batch.Draw(cmd); err != nil {
				return err
			}
		}
		run = run[:0]
		return nil
	}

	for i := 0; i <= maxY-minY; i++ {
		y := minY + i
		if reversed {
			y = maxY - i
		}
		for j := 0; j <= maxX-minX; j++ {
			x := minX + j
			if reversed {
				x = maxX - j
			}
			tx, ty := x, y
			if wrap && layer.Width > 0 && layer.Height > 0 {
				tx, ty = mod(x, layer.Width), mod(y, layer.Height)
			}
			index := layer.At(tx, ty)
			if index < 0 {
				continue
			}
			world := mgl32.Vec2{float32(origin.X + x*TileSize), float32(origin.Y + y*TileSize)}
			run = append(run, engine2D.DrawCommand{
				Texture:  m.TileSheet,
				Position: viewport.GlobalToLocal(world),
				Source:   m.tileSource(index),
				Tint:     engine2D.White,
				Scale:    mgl32.Vec2{TileSize / float32(m.SourceTile), TileSize / float32(m.SourceTile)},
			})
			if len(run) == batchSize {
				if err := submit(); err != nil {
					return err
				}
			}
		}
	}
	return submit()
}

type Location struct {
	Name      string
	Map       *Map
	Furniture []*Furniture
}

func (l *Location) FindFurniture(id uuid.UUID) *Furniture {
	for _, f := range l.Furniture {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// DrawFurniture draws every piece in list order.
func (l *Location) DrawFurniture(batch *engine2D.Batch, filter Filtering) error {
	for _, f := range l.Furniture {
		if err := f.Draw(batch, filter); err != nil {
			return err
		}
	}
	return nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
