package ocr

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/joseph-ayodele/credit-audit/internal/common"
)

func grayFrom(w, h int, f func(x, y int) uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Pix[y*g.Stride+x] = f(x, y)
		}
	}
	return g
}

func isBinary(g *image.Gray) bool {
	for _, v := range g.Pix {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %q, %v", s, got, err)
		}
	}
	if got, _ := ParseStrategy(""); got != StrategyAdaptive {
		t.Errorf("default = %q", got)
	}
	if _, err := ParseStrategy("blur"); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestThresholdStandard(t *testing.T) {
	g := grayFrom(4, 1, func(x, _ int) uint8 { return []uint8{0, 120, 180, 255}[x] })
	out := threshold(g, standardThreshold)
	want := []uint8{0, 0, 255, 255}
	for i, v := range out.Pix {
		if v != want[i] {
			t.Errorf("pixel %d = %d, want %d", i, v, want[i])
		}
	}
}

func TestOtsuSplitsBimodal(t *testing.T) {
	g := grayFrom(100, 10, func(x, _ int) uint8 {
		if x < 30 {
			return 40
		}
		return 210
	})
	th := otsu(g)
	if th < 40 || th >= 210 {
		t.Fatalf("otsu = %d, want within [40, 210)", th)
	}
	out := threshold(g, th)
	if out.Pix[0] != 0 || out.Pix[99] != 255 {
		t.Errorf("binarized = %d/%d", out.Pix[0], out.Pix[99])
	}
}

func TestMedianRemovesSpeckle(t *testing.T) {
	g := grayFrom(5, 5, func(x, y int) uint8 {
		if x == 2 && y == 2 {
			return 0
		}
		return 200
	})
	if v := medianFilter(g, 1).GrayAt(2, 2).Y; v != 200 {
		t.Errorf("center = %d, want 200", v)
	}
}

func TestDilateInkThickens(t *testing.T) {
	g := grayFrom(4, 4, func(x, y int) uint8 {
		if x == 1 && y == 1 {
			return 0
		}
		return 255
	})
	out := dilateInk(g)
	inked := 0
	for _, v := range out.Pix {
		if v == 0 {
			inked++
		}
	}
	if inked != 4 || out.GrayAt(1, 1).Y != 0 {
		t.Errorf("inked pixels = %d, want the dot grown to 2x2", inked)
	}
	if out.GrayAt(3, 3).Y != 255 {
		t.Error("dilation spread past one pixel")
	}
	if !isBinary(out) {
		t.Error("dilation introduced gray levels")
	}
}

func TestCLAHEStretchesContrast(t *testing.T) {
	g := grayFrom(64, 64, func(x, _ int) uint8 { return uint8(100 + x%8) })
	out := clahe(g, claheClipLimit, claheTiles)
	lo, hi := uint8(255), uint8(0)
	for _, v := range out.Pix {
		lo, hi = min(lo, v), max(hi, v)
	}
	if int(hi)-int(lo) <= 7 {
		t.Errorf("range after CLAHE = %d..%d, want wider than input", lo, hi)
	}
}

func TestAdaptiveGaussianHandlesGradient(t *testing.T) {
	// a dark stroke on a background that brightens left to right
	g := grayFrom(60, 20, func(x, y int) uint8 {
		bg := uint8(80 + 2*x)
		if y == 10 {
			return bg - 60
		}
		return bg
	})
	out := adaptiveGaussian(g, adaptiveBlock, adaptiveC)
	if !isBinary(out) {
		t.Fatal("output is not binary")
	}
	for _, x := range []int{5, 30, 55} {
		if out.GrayAt(x, 10).Y != 0 {
			t.Errorf("stroke at x=%d lost", x)
		}
		if out.GrayAt(x, 3).Y != 255 {
			t.Errorf("background at x=%d inked", x)
		}
	}
}

func TestSkewAngle(t *testing.T) {
	const deg = 5.0
	tilted := func(angle float64) *image.Gray {
		cos, sin := math.Cos(angle), math.Sin(angle)
		return grayFrom(400, 300, func(x, y int) uint8 {
			dx, dy := float64(x)-200, float64(y)-150
			u := dx*cos + dy*sin
			v := -dx*sin + dy*cos
			if math.Abs(u) < 150 && math.Abs(v) < 60 {
				return 0
			}
			return 255
		})
	}

	g := tilted(deg * math.Pi / 180)
	got := skewAngle(g) * 180 / math.Pi
	if math.Abs(got-deg) > 1 {
		t.Fatalf("skewAngle = %.2f°, want about %.1f°", got, deg)
	}

	straight := rotate(g, -skewAngle(g))
	if after := math.Abs(skewAngle(straight) * 180 / math.Pi); after > 1 {
		t.Errorf("residual skew %.2f° after rotation", after)
	}

	if a := skewAngle(grayFrom(50, 50, func(int, int) uint8 { return 255 })); a != 0 {
		t.Errorf("blank page skew = %v", a)
	}
}

func TestPreprocessStrategies(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 70, 50))
	for y := 10; y < 50; y++ {
		for x := 10; x < 70; x++ {
			c := color.RGBA{230, 230, 220, 255}
			if y >= 25 && y < 32 && x > 15 && x < 65 {
				c = color.RGBA{30, 30, 40, 255}
			}
			src.Set(x, y, c)
		}
	}
	for _, s := range Strategies() {
		t.Run(string(s), func(t *testing.T) {
			out, err := Preprocess(src, s)
			if err != nil {
				t.Fatal(err)
			}
			if out.Rect != image.Rect(0, 0, 60, 40) {
				t.Errorf("bounds = %v", out.Rect)
			}
			if !isBinary(out) {
				t.Error("output is not binary")
			}
			if out.GrayAt(30, 18).Y != 0 {
				t.Error("text bar lost")
			}
		})
	}
	if _, err := Preprocess(src, "unknown"); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestNormalize(t *testing.T) {
	in := "  Equlfax  report\r\n\n\nTransUnlon 1nqu1ry   \nc0llectlon ch4rge-off\n\n"
	want := "Equifax  report\nTransUnion inquiry\ncollection charge-off"
	if got := Normalize(in); got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
	if got := Normalize("Equlfa"); got != "Equifax" {
		t.Errorf("Normalize(Equlfa) = %q", got)
	}
}

func TestTablesFromLayout(t *testing.T) {
	text := "ACCOUNTS\n" +
		"Creditor      Number      Balance     Status\n" +
		"ABC Bank      4111        $500        Open\n" +
		"XYZ Card      9999        $0          Closed\n" +
		"\n" +
		"Name:  John Doe\n" +
		"Lonely   row   of   cells\n"
	tables := TablesFromLayout(text)
	if len(tables) != 1 {
		t.Fatalf("tables = %v", tables)
	}
	if len(tables[0]) != 3 || len(tables[0][0]) != 4 || tables[0][2][3] != "Closed" {
		t.Errorf("table = %v", tables[0])
	}
}
