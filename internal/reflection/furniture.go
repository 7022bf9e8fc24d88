package reflection

import (
	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/utils"
	"dynamic-reflections/internal/world"
)

// RenderFurnitureMask draws the furniture of every enabled, linked mirror into
// the furniture-mask target. Pieces accumulate as a union in mirror order.
//
// MirrorCompositor.Render rewrites this target per mirror before it is ever
// sampled, so the union is only useful to callers that read the target
// without running the mirror stages.
func RenderFurnitureMask(rc *RenderContext, loc *world.Location, mirrors *MirrorSet, filter *Filter) error {
	err := rc.into(rc.Targets.FurnitureMask, func() error {
		if loc == nil || len(loc.Furniture) == 0 {
			return nil
		}
		return rc.Batch.Pass(pass(engine2D.SortImmediate, engine2D.BlendAlpha, nil), func() error {
			for _, m := range mirrors.Linked() {
				if !m.Enabled {
					continue
				}
				furniture := loc.FindFurniture(m.FurnitureLink)
				if furniture == nil {
					utils.Debug("Reflection: mirror %v links missing furniture %s", m.Position, m.FurnitureLink)
					continue
				}
				if err := filter.drawMask(rc.Batch, furniture); err != nil {
					return err
				}
			}
			return nil
		})
	})
	rc.clearBackground()
	return err
}

// renderMirrorFurniture redraws only m's furniture into the mask target.
// It reports whether anything was drawn.
func renderMirrorFurniture(rc *RenderContext, loc *world.Location, m *Mirror, filter *Filter) (bool, error) {
	if !m.Enabled || !m.Linked() || loc == nil || len(loc.Furniture) == 0 {
		return false, nil
	}
	furniture := loc.FindFurniture(m.FurnitureLink)
	if furniture == nil {
		utils.Debug("Reflection: mirror %v links missing furniture %s", m.Position, m.FurnitureLink)
		return false, nil
	}
	err := rc.into(rc.Targets.FurnitureMask, func() error {
		return rc.Batch.Pass(pass(engine2D.SortImmediate, engine2D.BlendAlpha, nil), func() error {
			return filter.drawMask(rc.Batch, furniture)
		})
	})
	return err == nil, err
}
