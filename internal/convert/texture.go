package convert

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mauserzjeh/dxt"
	"github.com/pierrec/lz4/v4"

	"dynamic-reflections/internal/utils"
)

var (
	ErrBadMagic    = errors.New("bad magic")
	ErrUnsupported = errors.New("unsupported texture format")
	ErrNoImage     = errors.New("no image in texture")
)

// Texture formats stored in a .tex header.
const (
	FormatRGBA8888 = 0
	FormatDXT5     = 4
	FormatDXT3     = 6
	FormatDXT1     = 7
	FormatRG88     = 8
	FormatR8       = 9
)

// TextureOutDir receives decoded PNGs. Empty means next to the source .tex.
var TextureOutDir string

type texReader struct {
	r   io.Reader
	err error
}

func (t *texReader) u32() uint32 {
	var v uint32
	if t.err == nil {
		t.err = binary.Read(t.r, binary.LittleEndian, &v)
	}
	return v
}

// magic reads a NUL terminated 8 byte tag.
func (t *texReader) magic() string {
	b := make([]byte, 9)
	if t.err == nil {
		_, t.err = io.ReadFull(t.r, b)
	}
	return string(bytes.TrimRight(b[:8], "\x00"))
}

func (t *texReader) bytes(n uint32) []byte {
	if t.err != nil {
		return nil
	}
	b := make([]byte, n)
	_, t.err = io.ReadFull(t.r, b)
	return b
}

// DecodeTex decodes the first mipmap of a .tex stream.
func DecodeTex(r io.Reader) (image.Image, error) {
	t := &texReader{r: r}

	if m := t.magic(); t.err == nil && m != "TEXV0005" {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, m)
	}
	if m := t.magic(); t.err == nil && m != "TEXI0001" {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, m)
	}

	format := t.u32()
	_ = t.u32() // flags
	_ = t.u32() // texture width
	_ = t.u32() // texture height
	imgW := t.u32()
	imgH := t.u32()
	_ = t.u32()

	container := t.magic()
	imageCount := t.u32()
	if container == "TEXB0003" {
		_ = t.u32()
	}
	if t.err != nil {
		return nil, t.err
	}
	if !strings.HasPrefix(container, "TEXB") {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, container)
	}
	if imageCount == 0 {
		return nil, ErrNoImage
	}

	utils.Debug("Texture: format %d, %dx%d, %s", format, imgW, imgH, container)

	if mipmaps := t.u32(); t.err == nil && mipmaps == 0 {
		return nil, ErrNoImage
	}
	w, h := t.u32(), t.u32()
	var compressed bool
	var rawSize uint32
	if container != "TEXB0001" {
		compressed = t.u32() == 1
		rawSize = t.u32()
	}
	data := t.bytes(t.u32())
	if t.err != nil {
		return nil, t.err
	}

	if compressed {
		raw := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(data, raw)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		data = raw[:n]
	}

	pix, err := decodePixels(format, data, w, h)
	if err != nil {
		return nil, err
	}

	img := &image.RGBA{Pix: pix, Stride: int(w) * 4, Rect: image.Rect(0, 0, int(w), int(h))}
	if imgW > 0 && imgH > 0 && (imgW < w || imgH < h) {
		return img.SubImage(image.Rect(0, 0, int(imgW), int(imgH))), nil
	}
	return img, nil
}

func decodePixels(format uint32, data []byte, w, h uint32) ([]byte, error) {
	pixels := int(w) * int(h)
	blocks := int((w+3)/4) * int((h+3)/4)

	switch {
	case format == FormatR8 && len(data) == pixels:
		pix := make([]byte, pixels*4)
		for i, v := range data {
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = v, v, v, 255
		}
		return pix, nil
	case format == FormatRG88 && len(data) == pixels*2:
		// Second channel carries coverage.
		pix := make([]byte, pixels*4)
		for i := 0; i < pixels; i++ {
			l := data[i*2+1]
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = l, l, l, l
		}
		return pix, nil
	case len(data) == pixels*4:
		return data, nil
	case len(data) == blocks*16:
		return dxt.DecodeDXT5(data, uint(w), uint(h))
	case len(data) == blocks*8:
		return dxt.DecodeDXT1(data, uint(w), uint(h))
	}
	return nil, fmt.Errorf("%w: format %d with %d bytes for %dx%d", ErrUnsupported, format, len(data), w, h)
}

func DecodeTexFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := DecodeTex(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func pngPathFor(texPath string) string {
	name := strings.TrimSuffix(filepath.Base(texPath), ".tex") + ".png"
	if TextureOutDir != "" {
		return filepath.Join(TextureOutDir, name)
	}
	return filepath.Join(filepath.Dir(texPath), name)
}

// LoadImage reads a PNG or .tex file. A .tex is decoded once and the PNG
// is cached next to it (or in TextureOutDir) for later runs.
func LoadImage(path string) (image.Image, error) {
	if filepath.Ext(path) != ".tex" {
		return readPNG(path)
	}

	cached := pngPathFor(path)
	if img, err := readPNG(cached); err == nil {
		return img, nil
	}

	img, err := DecodeTexFile(path)
	if err != nil {
		return nil, err
	}
	if err := writePNG(cached, img); err != nil {
		utils.Warn("Texture: could not cache %s: %v", cached, err)
	}
	return img, nil
}

// FindImage resolves name against the asset roots and loads it.
func FindImage(name string) (image.Image, error) {
	path := utils.FindTextureFile(name)
	if path == "" {
		return nil, fmt.Errorf("texture %q: %w", name, os.ErrNotExist)
	}
	return LoadImage(path)
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
