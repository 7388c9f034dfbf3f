package card

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
)

// Layout pitch multipliers relative to the configured font size. The drawn
// glyph size is twice the configured size.
const (
	fontScale       = 2.0
	verticalPitch   = 2.5
	horizontalPitch = 3.0
)

// Anchor positions the text block as fractions of the image size.
type Anchor struct {
	X float64
	Y float64
}

// DefaultAnchor centers the text horizontally in the upper third.
var DefaultAnchor = Anchor{X: 0.5, Y: 0.3}

// Shadow describes an optional text shadow.
type Shadow struct {
	Color    color.Color
	Opacity  float64 // 0..1
	Blur     float64 // approximated by layered draws
	Angle    float64 // degrees
	Distance float64
}

// Offset resolves the angle and distance into x/y displacement.
func (s Shadow) Offset() (dx, dy float64) {
	rad := s.Angle * math.Pi / 180
	return s.Distance * math.Cos(rad), s.Distance * math.Sin(rad)
}

// Card is one render request. Every render recomputes the full image from
// the wallpaper, so settings can change freely between renders.
type Card struct {
	Wallpaper image.Image
	Text      string
	FontPath  string
	FontSize  float64
	Color     color.Color
	Vertical  bool
	Anchor    Anchor
	Shadow    *Shadow
}

// Render composites the text over the wallpaper and returns the image.
func (c *Card) Render() (image.Image, error) {
	if c.Wallpaper == nil {
		return nil, fmt.Errorf("no wallpaper image")
	}
	if c.FontSize <= 0 {
		return nil, fmt.Errorf("font size must be positive")
	}

	dc := gg.NewContextForImage(c.Wallpaper)
	if err := dc.LoadFontFace(c.FontPath, c.FontSize*fontScale); err != nil {
		return nil, fmt.Errorf("failed to load font %s: %w", c.FontPath, err)
	}

	x := float64(dc.Width()) * c.Anchor.X
	y := float64(dc.Height()) * c.Anchor.Y
	lines := strings.Split(c.Text, "\n")

	if c.Shadow != nil {
		c.drawShadow(dc, lines, x, y)
	}
	dc.SetColor(fallbackColor(c.Color))
	c.drawLines(dc, lines, x, y)

	return dc.Image(), nil
}

// RenderPNG renders the card and writes it to path.
func (c *Card) RenderPNG(path string) error {
	img, err := c.Render()
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// drawShadow layers displaced copies of the text under it. Blur is
// approximated by a ring of extra draws at unit offsets around the shadow
// position, each carrying a share of the shadow opacity.
func (c *Card) drawShadow(dc *gg.Context, lines []string, x, y float64) {
	s := c.Shadow
	dx, dy := s.Offset()

	offsets := [][2]float64{{0, 0}}
	rings := int(s.Blur)
	for r := 1; r <= rings; r++ {
		fr := float64(r)
		offsets = append(offsets,
			[2]float64{fr, 0}, [2]float64{-fr, 0},
			[2]float64{0, fr}, [2]float64{0, -fr})
	}

	alpha := s.Opacity / float64(len(offsets))
	if alpha <= 0 {
		return
	}
	r, g, b, _ := fallbackColor(s.Color).RGBA()
	for _, off := range offsets {
		dc.SetRGBA(float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff, alpha)
		c.drawLines(dc, lines, x+dx+off[0], y+dy+off[1])
	}
}

func (c *Card) drawLines(dc *gg.Context, lines []string, x, y float64) {
	if c.Vertical {
		c.drawVertical(dc, lines, x, y)
		return
	}
	for i, line := range lines {
		dc.DrawStringAnchored(line, x, y+float64(i)*c.FontSize*horizontalPitch, 0.5, 1)
	}
}

// drawVertical lays lines out as columns read right to left: the last line
// occupies the rightmost column of the centered block, characters run top to
// bottom at a fixed pitch.
func (c *Card) drawVertical(dc *gg.Context, lines []string, x, y float64) {
	n := len(lines)
	for i, line := range lines {
		colX := columnX(i, n, x, c.FontSize)
		charY := y
		for _, r := range line {
			dc.DrawStringAnchored(string(r), colX, charY, 0, 1)
			charY += c.FontSize * verticalPitch
		}
	}
}

// fallbackColor substitutes black, the canvas default, for a nil color.
func fallbackColor(c color.Color) color.Color {
	if c == nil {
		return color.Black
	}
	return c
}

// columnX places input line i of n in the centered right-to-left block.
func columnX(i, n int, x, fontSize float64) float64 {
	colWidth := fontSize * verticalPitch
	totalWidth := float64(n) * colWidth
	base := x + totalWidth/2 - colWidth/2
	return base - float64(n-1-i)*colWidth
}

// PoemText formats a poem for the card: title, author, a blank line, then
// the content.
func PoemText(title, author string, content []string) string {
	return title + "\n" + author + "\n\n" + strings.Join(content, "\n")
}
