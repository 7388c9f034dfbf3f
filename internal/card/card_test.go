package card

import (
	"image/color"
	"math"
	"testing"
)

func TestThemeForCycles(t *testing.T) {
	if ThemeFor(0).Name != Themes[0].Name {
		t.Fatal("index 0 must pick the first theme")
	}
	if ThemeFor(len(Themes)).Name != Themes[0].Name {
		t.Fatal("index must wrap around the palette")
	}
	if ThemeFor(7).Name != Themes[7%len(Themes)].Name {
		t.Fatal("unexpected theme for index 7")
	}
}

func TestFigureForDeterministic(t *testing.T) {
	a := FigureFor("tang-42")
	if a != FigureFor("tang-42") {
		t.Fatal("figure selection must be stable per id")
	}
	found := false
	for _, f := range FigureImages {
		if f == a {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("figure %q not in the known list", a)
	}
}

func TestFallbackColor(t *testing.T) {
	if got := fallbackColor(nil); got != color.Black {
		t.Fatalf("nil color must fall back to black, got %v", got)
	}
	red := color.RGBA{R: 0xff, A: 0xff}
	if got := fallbackColor(red); got != red {
		t.Fatalf("set colors must pass through, got %v", got)
	}
}

func TestShadowOffset(t *testing.T) {
	tests := []struct {
		angle, distance float64
		dx, dy          float64
	}{
		{angle: 0, distance: 10, dx: 10, dy: 0},
		{angle: 90, distance: 10, dx: 0, dy: 10},
		{angle: 180, distance: 10, dx: -10, dy: 0},
		{angle: 45, distance: math.Sqrt2, dx: 1, dy: 1},
	}
	for _, tt := range tests {
		s := Shadow{Angle: tt.angle, Distance: tt.distance}
		dx, dy := s.Offset()
		if math.Abs(dx-tt.dx) > 1e-9 || math.Abs(dy-tt.dy) > 1e-9 {
			t.Fatalf("offset(%v°, %v) = (%v, %v), want (%v, %v)",
				tt.angle, tt.distance, dx, dy, tt.dx, tt.dy)
		}
	}
}

func TestColumnXRightToLeft(t *testing.T) {
	const fontSize = 10.0
	colWidth := fontSize * verticalPitch

	// Three columns centered on x: the last line sits rightmost.
	x := 100.0
	last := columnX(2, 3, x, fontSize)
	mid := columnX(1, 3, x, fontSize)
	first := columnX(0, 3, x, fontSize)

	if !(first < mid && mid < last) {
		t.Fatalf("columns not right-to-left: %v, %v, %v", first, mid, last)
	}
	if math.Abs(last-mid-colWidth) > 1e-9 || math.Abs(mid-first-colWidth) > 1e-9 {
		t.Fatalf("column pitch not uniform: %v, %v, %v", first, mid, last)
	}
	// The block is centered: columns are symmetric around x.
	if math.Abs((first+last)/2-x) > 1e-9 {
		t.Fatalf("block not centered on %v: %v, %v", x, first, last)
	}
}

func TestPoemText(t *testing.T) {
	got := PoemText("静夜思", "李白", []string{"床前明月光，", "疑是地上霜。"})
	want := "静夜思\n李白\n\n床前明月光，\n疑是地上霜。"
	if got != want {
		t.Fatalf("unexpected text: %q", got)
	}
}
