package ocr

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"

	"github.com/joseph-ayodele/credit-audit/internal/common"
)

// Strategy names an image preprocessing pipeline run before recognition.
type Strategy string

const (
	StrategyStandard      Strategy = "standard"      // fixed threshold
	StrategyAggressive    Strategy = "aggressive"    // denoise, local contrast, Otsu
	StrategyAdaptive      Strategy = "adaptive"      // Gaussian adaptive threshold
	StrategyMorphological Strategy = "morphological" // thicken faded strokes
	StrategyDeskew        Strategy = "deskew"        // straighten rotated scans

	DefaultStrategy = StrategyAdaptive
)

func Strategies() []Strategy {
	return []Strategy{StrategyStandard, StrategyAggressive, StrategyAdaptive, StrategyMorphological, StrategyDeskew}
}

// ParseStrategy accepts a strategy name; "" selects the default.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return DefaultStrategy, nil
	}
	for _, known := range Strategies() {
		if Strategy(s) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown preprocessing strategy %q: %w", s, common.ErrInvalidInput)
}

const (
	standardThreshold = 150
	claheClipLimit    = 3.0
	claheTiles        = 8
	adaptiveBlock     = 11
	adaptiveC         = 2
)

// Preprocess converts img to grayscale and binarizes it with strategy s.
func Preprocess(img image.Image, s Strategy) (*image.Gray, error) {
	g := toGray(img)
	switch s {
	case StrategyStandard:
		return threshold(g, standardThreshold), nil
	case StrategyAggressive:
		enhanced := clahe(medianFilter(g, 2), claheClipLimit, claheTiles)
		return threshold(enhanced, otsu(enhanced)), nil
	case StrategyAdaptive:
		return adaptiveGaussian(medianFilter(g, 1), adaptiveBlock, adaptiveC), nil
	case StrategyMorphological:
		thick := dilateInk(g)
		return threshold(thick, otsu(thick)), nil
	case StrategyDeskew:
		straight := rotate(g, -skewAngle(g))
		return threshold(straight, otsu(straight)), nil
	default:
		return nil, fmt.Errorf("unknown preprocessing strategy %q: %w", s, common.ErrInvalidInput)
	}
}

// toGray converts img to 8-bit luminance anchored at the origin.
func toGray(img image.Image) *image.Gray {
	g := effect.Grayscale(img)
	g.Rect = g.Rect.Sub(g.Rect.Min)
	return g
}

// flatten folds a bild result computed from a gray image back to one channel.
func flatten(img *image.RGBA) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	draw.Draw(g, g.Rect, img, img.Rect.Min, draw.Src)
	return g
}

// threshold maps values above t to white and the rest to black.
func threshold(g *image.Gray, t uint8) *image.Gray {
	if t == math.MaxUint8 {
		return image.NewGray(g.Rect)
	}
	return segment.Threshold(g, t+1)
}

// otsu picks the threshold that maximizes between-class variance.
func otsu(g *image.Gray) uint8 {
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}
	total := len(g.Pix)
	if total == 0 {
		return 127
	}
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var sumB float64
	var wB int
	best, bestVar := 0, -1.0
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sumAll - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > bestVar {
			best, bestVar = t, between
		}
	}
	return uint8(best)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// medianFilter replaces each pixel with the median of its (2r+1)² neighborhood.
func medianFilter(g *image.Gray, r int) *image.Gray {
	return flatten(effect.Median(g, float64(r)))
}

// clahe equalizes contrast per tile with clipped histograms and blends neighbouring tile
// mappings bilinearly.
func clahe(g *image.Gray, clipLimit float64, tiles int) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if w == 0 || h == 0 {
		return g
	}
	tw := (w + tiles - 1) / tiles
	th := (h + tiles - 1) / tiles
	nx := (w + tw - 1) / tw
	ny := (h + th - 1) / th

	luts := make([][256]uint8, nx*ny)
	for ty := 0; ty < ny; ty++ {
		for tx := 0; tx < nx; tx++ {
			x0, y0 := tx*tw, ty*th
			x1, y1 := min(x0+tw, w), min(y0+th, h)
			luts[ty*nx+tx] = tileLUT(g, x0, y0, x1, y1, clipLimit)
		}
	}

	out := image.NewGray(g.Rect)
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/float64(th) - 0.5
		ty0 := clampInt(int(math.Floor(fy)), 0, ny-1)
		ty1 := clampInt(ty0+1, 0, ny-1)
		wy := math.Min(math.Max(fy-float64(ty0), 0), 1)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tw) - 0.5
			tx0 := clampInt(int(math.Floor(fx)), 0, nx-1)
			tx1 := clampInt(tx0+1, 0, nx-1)
			wx := math.Min(math.Max(fx-float64(tx0), 0), 1)

			v := g.Pix[y*g.Stride+x]
			top := (1-wx)*float64(luts[ty0*nx+tx0][v]) + wx*float64(luts[ty0*nx+tx1][v])
			bottom := (1-wx)*float64(luts[ty1*nx+tx0][v]) + wx*float64(luts[ty1*nx+tx1][v])
			out.Pix[y*out.Stride+x] = uint8(math.Round((1-wy)*top + wy*bottom))
		}
	}
	return out
}

func tileLUT(g *image.Gray, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[g.Pix[y*g.Stride+x]]++
		}
	}
	area := (x1 - x0) * (y1 - y0)
	limit := max(1, int(clipLimit*float64(area)/256))

	excess := 0
	for i, c := range hist {
		if c > limit {
			excess += c - limit
			hist[i] = limit
		}
	}
	bonus, rest := excess/256, excess%256
	for i := range hist {
		hist[i] += bonus
		if i < rest {
			hist[i]++
		}
	}

	var lut [256]uint8
	cdf := 0
	for i, c := range hist {
		cdf += c
		lut[i] = uint8(clampInt(int(math.Round(float64(cdf)*255/float64(area))), 0, 255))
	}
	return lut
}

// adaptiveGaussian thresholds each pixel against the Gaussian-weighted mean of its block minus c.
func adaptiveGaussian(g *image.Gray, block int, c float64) *image.Gray {
	mean := blur.Gaussian(g, float64(block/2))
	out := image.NewGray(g.Rect)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := float64(mean.Pix[y*mean.Stride+x*4])
			if float64(g.Pix[y*g.Stride+x]) > m-c {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// dilateInk grows dark strokes by one pixel. Erosion keeps the darkest pixel of each 2x2 window
// ending at the current one, which thickens ink on a light page.
func dilateInk(g *image.Gray) *image.Gray {
	return flatten(effect.Erode(g, 0.5))
}

// skewAngle estimates document rotation in radians, within ±π/4, from the minimum-area
// rectangle enclosing the ink pixels. Pages with almost no ink report 0.
func skewAngle(g *image.Gray) float64 {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	t := otsu(g)
	step := max(1, min(w, h)/500)

	var pts []image.Point
	for y := 0; y < h; y += step {
		for x := 0; x < w; x += step {
			if g.Pix[y*g.Stride+x] <= t {
				pts = append(pts, image.Pt(x, y))
			}
		}
	}
	// a blank or solid page has no meaningful ink outline
	if len(pts) < 3 || len(pts) == ((h+step-1)/step)*((w+step-1)/step) {
		return 0
	}
	hull := convexHull(pts)
	if len(hull) < 3 {
		return 0
	}
	return minAreaRectAngle(hull)
}

// convexHull is Andrew's monotone chain; the result is counter-clockwise without repeats.
func convexHull(pts []image.Point) []image.Point {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	hull := make([]image.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// minAreaRectAngle tries every hull edge as a rectangle side and returns the orientation of the
// smallest enclosing rectangle, folded into ±π/4.
func minAreaRectAngle(hull []image.Point) float64 {
	bestArea, bestAngle := math.Inf(1), 0.0
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		theta := math.Atan2(float64(b.Y-a.Y), float64(b.X-a.X))
		cos, sin := math.Cos(theta), math.Sin(theta)

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			u := float64(p.X)*cos + float64(p.Y)*sin
			v := -float64(p.X)*sin + float64(p.Y)*cos
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}
		if area := (maxU - minU) * (maxV - minV); area < bestArea {
			bestArea, bestAngle = area, theta
		}
	}
	quarter := math.Pi / 2
	return bestAngle - quarter*math.Round(bestAngle/quarter)
}

// rotate turns g clockwise by angle radians about its center onto a white page of the same size.
func rotate(g *image.Gray, angle float64) *image.Gray {
	out := image.NewGray(g.Rect)
	for i := range out.Pix {
		out.Pix[i] = 255
	}
	if math.Abs(angle) < 0.1*math.Pi/180 {
		copy(out.Pix, g.Pix)
		return out
	}
	turned := transform.Rotate(g, angle*180/math.Pi, &transform.RotationOptions{ResizeBounds: false})
	draw.Draw(out, out.Rect, turned, turned.Rect.Min, draw.Over)
	return out
}
