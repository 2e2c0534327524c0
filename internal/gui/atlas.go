package gui

import (
	"fmt"
	"image"
	"image/draw"
	"io/fs"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Glyph describes a single character's placement and metrics within the atlas
type Glyph struct {
	// Pixel coordinates of the glyph in the atlas image (top-left origin)
	X, Y          int
	Width, Height int
	// Offset from the pen position on the baseline
	BearingX, BearingY int
	Advance            int
}

// Atlas is a baked set of printable ASCII glyphs
type Atlas struct {
	Image      *image.Alpha
	Glyphs     map[rune]Glyph
	LineHeight int
}

const atlasWidth = 512

// LoadFace opens a TrueType/OpenType font from fsys. An empty path selects
// the built-in 7x13 bitmap face.
func LoadFace(fsys fs.FS, path string, size float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// BuildAtlas renders runes 32..126 of face into a single-channel image
func BuildAtlas(face font.Face) (*Atlas, error) {
	const padding = 1

	type placed struct {
		r       rune
		dr      image.Rectangle
		mask    image.Image
		maskp   image.Point
		advance fixed.Int26_6
		x, y    int
	}

	var glyphs []placed
	offsetX, offsetY, rowHeight := 0, 0, 0
	for r := rune(32); r <= 126; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		w, h := dr.Dx(), dr.Dy()
		if offsetX+w > atlasWidth {
			offsetX = 0
			offsetY += rowHeight + padding
			rowHeight = 0
		}
		glyphs = append(glyphs, placed{r: r, dr: dr, mask: mask, maskp: maskp, advance: advance, x: offsetX, y: offsetY})
		if w > 0 && h > 0 {
			offsetX += w + padding
			if h > rowHeight {
				rowHeight = h
			}
		}
	}
	if len(glyphs) == 0 {
		return nil, fmt.Errorf("font face has no printable glyphs")
	}

	atlasHeight := offsetY + rowHeight + padding
	img := image.NewAlpha(image.Rect(0, 0, atlasWidth, atlasHeight))

	atlas := &Atlas{
		Image:      img,
		Glyphs:     make(map[rune]Glyph, len(glyphs)),
		LineHeight: face.Metrics().Height.Ceil(),
	}
	for _, g := range glyphs {
		w, h := g.dr.Dx(), g.dr.Dy()
		if w > 0 && h > 0 && g.mask != nil {
			dst := image.Rect(g.x, g.y, g.x+w, g.y+h)
			draw.Draw(img, dst, g.mask, g.maskp, draw.Src)
		}
		atlas.Glyphs[g.r] = Glyph{
			X:        g.x,
			Y:        g.y,
			Width:    w,
			Height:   h,
			BearingX: g.dr.Min.X,
			BearingY: -g.dr.Min.Y,
			Advance:  int(math.Round(float64(g.advance) / 64.0)),
		}
	}
	if atlas.LineHeight <= 0 {
		atlas.LineHeight = rowHeight
	}
	return atlas, nil
}

// Measure returns the pixel width of text
func (a *Atlas) Measure(text string) int {
	width := 0
	for _, r := range text {
		g, ok := a.Glyphs[r]
		if !ok {
			g = a.Glyphs[' ']
		}
		width += g.Advance
	}
	return width
}

// AppendText appends two textured triangles per visible glyph, laid out
// from the baseline at (x, y) in pixels. Vertices are x, y, u, v.
func (a *Atlas) AppendText(dst []float32, text string, x, y float32) []float32 {
	aw := float32(a.Image.Rect.Dx())
	ah := float32(a.Image.Rect.Dy())
	for _, r := range text {
		g, ok := a.Glyphs[r]
		if !ok {
			// Skip missing glyphs
			x += float32(a.Glyphs[' '].Advance)
			continue
		}
		if g.Width > 0 && g.Height > 0 {
			xPos := x + float32(g.BearingX)
			yPos := y - float32(g.BearingY)
			w, h := float32(g.Width), float32(g.Height)

			u0, v0 := float32(g.X)/aw, float32(g.Y)/ah
			u1, v1 := float32(g.X+g.Width)/aw, float32(g.Y+g.Height)/ah

			dst = append(dst,
				// triangle 1
				xPos, yPos+h, u0, v1,
				xPos, yPos, u0, v0,
				xPos+w, yPos, u1, v0,
				// triangle 2
				xPos, yPos+h, u0, v1,
				xPos+w, yPos, u1, v0,
				xPos+w, yPos+h, u1, v1,
			)
		}
		x += float32(g.Advance)
	}
	return dst
}
