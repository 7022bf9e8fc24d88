package reflection

import (
	"image"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/utils"
	"dynamic-reflections/internal/world"
)

const (
	// MirrorsLayerName is the map layer that marks mirror surfaces.
	MirrorsLayerName = "Mirrors"
	layerBatchSize   = 4
)

// RenderMirrorsLayer paints the map's mirrors layer, reversed, into the
// mirrors-layer target. The target is left cleared when the location has no
// such layer. The back buffer is cleared to the background afterwards.
func RenderMirrorsLayer(rc *RenderContext, loc *world.Location) error {
	err := rc.into(rc.Targets.MirrorsLayer, func() error {
		if loc == nil || loc.Map == nil {
			utils.Debug("Reflection: no current map, mirrors layer left empty")
			return nil
		}
		layer := loc.Map.GetLayer(MirrorsLayerName)
		if layer == nil {
			utils.Debug("Reflection: %s has no %s layer", loc.Name, MirrorsLayerName)
			return nil
		}
		return rc.Batch.Pass(pass(engine2D.SortImmediate, engine2D.BlendAlpha, nil), func() error {
			return loc.Map.DrawLayer(rc.Batch, layer, rc.Device.Viewport(), image.Point{}, true, false, layerBatchSize)
		})
	})
	rc.clearBackground()
	return err
}
