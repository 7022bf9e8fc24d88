package software

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/math/f64"

	"dynamic-reflections/internal/engine2D"
)

// rasterize draws cmd into dst by inverse-mapping every covered pixel centre
// back into texture space. Geometry is axis aligned; the batch already folded
// any pass transform into position, scale and flip.
func rasterize(dst, src *image.RGBA, cmd engine2D.DrawCommand, state engine2D.PassState) {
	topLeft, size := engine2D.DestRect(cmd)
	if size.X() <= 0 || size.Y() <= 0 {
		return
	}
	sr := cmd.SourceRect()

	// Maps destination pixel centres to normalised texture coordinates.
	inv := f64.Aff3{
		1 / float64(size.X()), 0, -float64(topLeft.X()) / float64(size.X()),
		0, 1 / float64(size.Y()), -float64(topLeft.Y()) / float64(size.Y()),
	}

	bounds := image.Rect(
		int(math.Floor(float64(topLeft.X()))),
		int(math.Floor(float64(topLeft.Y()))),
		int(math.Ceil(float64(topLeft.X()+size.X()))),
		int(math.Ceil(float64(topLeft.Y()+size.Y()))),
	).Intersect(dst.Rect)

	eff, _ := state.Effect.(*effect)
	wrap := state.Sampler == engine2D.SamplerPointWrap
	linear := state.Sampler == engine2D.SamplerLinearClamp

	for py := bounds.Min.Y; py < bounds.Max.Y; py++ {
		for px := bounds.Min.X; px < bounds.Max.X; px++ {
			cx, cy := float64(px)+0.5, float64(py)+0.5
			u := inv[0]*cx + inv[1]*cy + inv[2]
			v := inv[3]*cx + inv[4]*cy + inv[5]
			if u < 0 || u >= 1 || v < 0 || v >= 1 {
				continue
			}
			if cmd.Flip&engine2D.FlipHorizontal != 0 {
				u = 1 - u
			}
			if cmd.Flip&engine2D.FlipVertical != 0 {
				v = 1 - v
			}
			if eff != nil && eff.kind == engine2D.EffectWave {
				u = eff.displace(u, v)
			}

			sx := float64(sr.Min.X) + u*float64(sr.Dx())
			sy := float64(sr.Min.Y) + v*float64(sr.Dy())

			var c color.RGBA
			if linear {
				c = sampleLinear(src, sr, sx, sy)
			} else {
				c = samplePoint(src, sr, sx, sy, wrap)
			}
			c = modulate(c, cmd.Tint)

			if eff != nil && eff.kind == engine2D.EffectMask {
				c = eff.mask(c, u, v)
			}

			i := dst.PixOffset(px, py)
			blend(dst.Pix[i:i+4:i+4], c, state.Blend)
		}
	}
}

func samplePoint(img *image.RGBA, sr image.Rectangle, x, y float64, wrap bool) color.RGBA {
	ix, iy := int(math.Floor(x)), int(math.Floor(y))
	if wrap {
		ix = sr.Min.X + mod(ix-sr.Min.X, sr.Dx())
		iy = sr.Min.Y + mod(iy-sr.Min.Y, sr.Dy())
	} else {
		ix = clamp(ix, sr.Min.X, sr.Max.X-1)
		iy = clamp(iy, sr.Min.Y, sr.Max.Y-1)
	}
	return img.RGBAAt(ix, iy)
}

func sampleLinear(img *image.RGBA, sr image.Rectangle, x, y float64) color.RGBA {
	x -= 0.5
	y -= 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0

	at := func(ix, iy int) color.RGBA {
		return img.RGBAAt(clamp(ix, sr.Min.X, sr.Max.X-1), clamp(iy, sr.Min.Y, sr.Max.Y-1))
	}
	c00 := at(int(x0), int(y0))
	c10 := at(int(x0)+1, int(y0))
	c01 := at(int(x0), int(y0)+1)
	c11 := at(int(x0)+1, int(y0)+1)

	lerp := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-fx) + float64(b)*fx
		bottom := float64(c)*(1-fx) + float64(d)*fx
		return uint8(math.Round(top*(1-fy) + bottom*fy))
	}
	return color.RGBA{
		lerp(c00.R, c10.R, c01.R, c11.R),
		lerp(c00.G, c10.G, c01.G, c11.G),
		lerp(c00.B, c10.B, c01.B, c11.B),
		lerp(c00.A, c10.A, c01.A, c11.A),
	}
}

// modulate multiplies every channel by the tint, matching a premultiplied vertex colour.
func modulate(c, tint color.RGBA) color.RGBA {
	return color.RGBA{mul8(c.R, tint.R), mul8(c.G, tint.G), mul8(c.B, tint.B), mul8(c.A, tint.A)}
}

// blend writes c over the 4-byte premultiplied pixel p.
// Texels are stored premultiplied, so straight and premultiplied alpha
// reduce to the same "over" operator here.
func blend(p []uint8, c color.RGBA, mode engine2D.BlendState) {
	switch mode {
	case engine2D.BlendOpaque:
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	case engine2D.BlendAdditive:
		p[0] = add8(p[0], c.R)
		p[1] = add8(p[1], c.G)
		p[2] = add8(p[2], c.B)
		p[3] = add8(p[3], c.A)
	default:
		inv := 255 - c.A
		p[0] = add8(c.R, mul8(p[0], inv))
		p[1] = add8(c.G, mul8(p[1], inv))
		p[2] = add8(c.B, mul8(p[2], inv))
		p[3] = add8(c.A, mul8(p[3], inv))
	}
}

func mul8(a, b uint8) uint8 {
	return uint8((uint32(a)*uint32(b) + 127) / 255)
}

func add8(a, b uint8) uint8 {
	s := uint32(a) + uint32(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
