package engine2D

import (
	"github.com/go-gl/mathgl/mgl32"
)

// FlipTranslate builds scale(1,-1) followed by a vertical translation of ty,
// the transform used to mirror a sprite about a horizontal waterline.
func FlipTranslate(ty float32) mgl32.Mat4 {
	return mgl32.Translate3D(0, ty, 0).Mul4(mgl32.Scale3D(1, -1, 1))
}

// DestRect returns the top-left corner and size a command covers before any pass transform.
func DestRect(cmd DrawCommand) (mgl32.Vec2, mgl32.Vec2) {
	src := cmd.SourceRect()
	scale := cmd.EffectiveScale()
	size := mgl32.Vec2{float32(src.Dx()) * scale.X(), float32(src.Dy()) * scale.Y()}
	topLeft := mgl32.Vec2{
		cmd.Position.X() - cmd.Origin.X()*scale.X(),
		cmd.Position.Y() - cmd.Origin.Y()*scale.Y(),
	}
	return topLeft, size
}

// TransformCommand folds an axis-aligned pass matrix into the command.
// Only the scale and translation terms are honoured; a negative scale
// becomes a flip so backends never see mirrored geometry.
func TransformCommand(cmd DrawCommand, m mgl32.Mat4) DrawCommand {
	topLeft, size := DestRect(cmd)

	a := m.Mul4x1(mgl32.Vec4{topLeft.X(), topLeft.Y(), 0, 1})
	b := m.Mul4x1(mgl32.Vec4{topLeft.X() + size.X(), topLeft.Y() + size.Y(), 0, 1})

	minX, maxX := a.X(), b.X()
	if minX > maxX {
		minX, maxX = maxX, minX
		cmd.Flip ^= FlipHorizontal
	}
	minY, maxY := a.Y(), b.Y()
	if minY > maxY {
		minY, maxY = maxY, minY
		cmd.Flip ^= FlipVertical
	}

	src := cmd.SourceRect()
	cmd.Position = mgl32.Vec2{minX, minY}
	cmd.Origin = mgl32.Vec2{}
	cmd.Scale = mgl32.Vec2{(maxX - minX) / float32(src.Dx()), (maxY - minY) / float32(src.Dy())}
	return cmd
}
