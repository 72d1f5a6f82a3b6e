package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

type fakeShell struct {
	mu    sync.Mutex
	calls [][]string
	fn    func(name string, args []string) ([]byte, error)
}

func (s *fakeShell) Exec(_ context.Context, cmd Command) ([]byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string{cmd.Name}, cmd.Args...))
	s.mu.Unlock()
	return s.fn(cmd.Name, cmd.Args)
}

type fakeRecognizer func(png []byte) (string, error)

func (f fakeRecognizer) Recognize(_ context.Context, png []byte) (string, error) { return f(png) }

// pagePNG encodes a white page of the given width with a dark bar across it.
func pagePNG(t *testing.T, width int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, 40))
	for i := range img.Pix {
		img.Pix[i] = 240
	}
	for y := 15; y < 25; y++ {
		for x := 2; x < width-2; x++ {
			img.SetGray(x, y, color.Gray{Y: 20})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// widthOf lets a fake recognizer tell pages apart.
func widthOf(t *testing.T, data []byte) int {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Errorf("recognizer got bad png: %v", err)
		return 0
	}
	return cfg.Width
}

// minimalPDF builds a syntactically complete PDF with n blank pages.
func minimalPDF(n int) []byte {
	var b bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	b.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	var kids []string
	for i := 0; i < n; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i := 0; i < n; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return b.Bytes()
}

func TestDirectText(t *testing.T) {
	layout := "EQUIFAX CREDIT REPORT\n\nCreditor     Account #     Balance\nABC Bank     41112222     $1,200\n\fPage two\n\f"
	shell := &fakeShell{fn: func(name string, args []string) ([]byte, error) {
		if name != "pdftotext" {
			t.Errorf("unexpected command %q", name)
		}
		return []byte(layout), nil
	}}
	e := NewExtractor(Config{}, nil, WithShell(shell))

	res, err := e.DirectText(context.Background(), entity.RawDocument{ID: "d1", Kind: constants.PDF, Data: []byte("%PDF")})
	if err != nil {
		t.Fatalf("DirectText() error = %v", err)
	}
	if res.Method != entity.MethodDirect || res.Pages != 2 || res.Text != layout {
		t.Errorf("res = %+v", res)
	}
	if len(res.Tables) != 1 || len(res.Tables[0]) != 2 || res.Tables[0][1][0] != "ABC Bank" {
		t.Errorf("Tables = %v", res.Tables)
	}
	args := shell.calls[0]
	if !slices.Equal(args[1:7], []string{"-layout", "-enc", "UTF-8", "-eol", "unix", args[6]}) || args[7] != "-" {
		t.Errorf("pdftotext args = %v", args)
	}
}

func TestDirectTextCommandFailure(t *testing.T) {
	shell := &fakeShell{fn: func(name string, args []string) ([]byte, error) {
		return nil, &CommandError{Command: Command{Name: name, Args: args}, Stderr: "Syntax Error: Couldn't find trailer dictionary", Err: errors.New("exit status 1")}
	}}
	e := NewExtractor(Config{}, nil, WithShell(shell))

	res, err := e.DirectText(context.Background(), entity.RawDocument{ID: "d1", Kind: constants.PDF, Data: []byte("%PDF")})
	var cerr *CommandError
	if !errors.As(err, &cerr) || cerr.Command.Name != "pdftotext" {
		t.Fatalf("err = %v, want pdftotext CommandError", err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "trailer dictionary") {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestDirectTextRejectsImages(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithShell(&fakeShell{}))
	_, err := e.DirectText(context.Background(), entity.RawDocument{Kind: constants.IMAGE})
	if !errors.Is(err, common.ErrUnsupportedMedia) {
		t.Fatalf("err = %v", err)
	}
}

func TestOCRImage(t *testing.T) {
	rec := fakeRecognizer(func([]byte) (string, error) {
		return "  Equlfax credlt sc0re 712  \n\n\nJohn Doe\n", nil
	})
	e := NewExtractor(Config{}, nil, WithShell(&fakeShell{}), WithRecognizer(rec))

	res, err := e.OCR(context.Background(), entity.RawDocument{Kind: constants.IMAGE, Data: pagePNG(t, 60)}, Options{})
	if err != nil {
		t.Fatalf("OCR() error = %v", err)
	}
	if res.Text != "Equifax credit score 712\nJohn Doe" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Method != entity.MethodOCR || res.Strategy != string(StrategyAdaptive) || res.Pages != 1 {
		t.Errorf("res = %+v", res)
	}
}

func TestOCRImageFailures(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
		rec  fakeRecognizer
	}{
		{"undecodable", func(*testing.T) []byte { return []byte("not an image") }, func([]byte) (string, error) { return "x", nil }},
		{"blank text", func(t *testing.T) []byte { return pagePNG(t, 40) }, func([]byte) (string, error) { return " \n\n ", nil }},
		{"recognizer error", func(t *testing.T) []byte { return pagePNG(t, 40) }, func([]byte) (string, error) { return "", errors.New("boom") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(Config{}, nil, WithShell(&fakeShell{}), WithRecognizer(tt.rec))
			_, err := e.OCR(context.Background(), entity.RawDocument{Kind: constants.IMAGE, Data: tt.data(t)}, Options{Strategy: StrategyStandard})
			if !errors.Is(err, common.ErrExtractionFailed) {
				t.Fatalf("err = %v, want ErrExtractionFailed", err)
			}
			var ef *ExtractionFailed
			if !errors.As(err, &ef) || ef.Strategy != StrategyStandard || ef.Pages != 1 {
				t.Errorf("ExtractionFailed = %+v", ef)
			}
		})
	}
}

func TestOCRRejectsUnknownStrategy(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithShell(&fakeShell{}))
	_, err := e.OCR(context.Background(), entity.RawDocument{Kind: constants.IMAGE}, Options{Strategy: "sharpen"})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

// rasterizeAllShell emulates pdftoppm without -f/-l: one PNG per page named <prefix>-N.png.
func rasterizeAllShell(t *testing.T, pages int) *fakeShell {
	return &fakeShell{fn: func(name string, args []string) ([]byte, error) {
		prefix := args[len(args)-1]
		for i := 1; i <= pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), pagePNG(t, 10*(i+1)), 0o600); err != nil {
				t.Error(err)
			}
		}
		return nil, nil
	}}
}

func TestOCRPDFFallbackKeepsPageOrder(t *testing.T) {
	rec := fakeRecognizer(func(png []byte) (string, error) {
		switch w := widthOf(t, png); w {
		case 30:
			return "", errors.New("tesseract crashed")
		default:
			// later pages finish first to shake out ordering bugs
			time.Sleep(time.Duration(50-w) * time.Millisecond)
			return fmt.Sprintf("text of width %d", w), nil
		}
	})
	e := NewExtractor(Config{Concurrency: 3}, nil, WithShell(rasterizeAllShell(t, 3)), WithRecognizer(rec))

	res, err := e.OCR(context.Background(), entity.RawDocument{Kind: constants.PDF, Data: []byte("not a pdf")}, Options{DPI: 200})
	if err != nil {
		t.Fatalf("OCR() error = %v", err)
	}
	want := "--- Page 1 ---\ntext of width 20\n--- Page 2 ---\n--- Page 3 ---\ntext of width 40"
	if res.Text != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
	if res.Pages != 3 || len(res.Warnings) != 1 || !strings.HasPrefix(res.Warnings[0], "page 2: OCR Error:") {
		t.Errorf("pages = %d, warnings = %v", res.Pages, res.Warnings)
	}
}

func TestOCRPDFPerPage(t *testing.T) {
	shell := &fakeShell{fn: func(name string, args []string) ([]byte, error) {
		if !slices.Contains(args, "-singlefile") {
			t.Errorf("expected per-page rendering, got %v", args)
			return nil, errors.New("unexpected")
		}
		prefix := args[len(args)-1]
		return nil, os.WriteFile(prefix+".png", pagePNG(t, 50), 0o600)
	}}
	rec := fakeRecognizer(func([]byte) (string, error) { return "Experlan", nil })
	e := NewExtractor(Config{}, nil, WithShell(shell), WithRecognizer(rec))

	res, err := e.OCR(context.Background(), entity.RawDocument{Kind: constants.PDF, Data: minimalPDF(2)}, Options{})
	if err != nil {
		t.Fatalf("OCR() error = %v", err)
	}
	if res.Text != "--- Page 1 ---\nExperian\n--- Page 2 ---\nExperian" {
		t.Errorf("Text = %q", res.Text)
	}
	var pagesRendered []string
	for _, c := range shell.calls {
		i := slices.Index(c, "-f")
		pagesRendered = append(pagesRendered, c[i+1])
		if c[slices.Index(c, "-r")+1] != "300" {
			t.Errorf("dpi args = %v", c)
		}
	}
	slices.Sort(pagesRendered)
	if !slices.Equal(pagesRendered, []string{"1", "2"}) {
		t.Errorf("pages rendered = %v", pagesRendered)
	}
}

func TestOCRPDFAllPagesFail(t *testing.T) {
	rec := fakeRecognizer(func([]byte) (string, error) { return "", errors.New("no") })
	e := NewExtractor(Config{}, nil, WithShell(rasterizeAllShell(t, 2)), WithRecognizer(rec))

	_, err := e.OCR(context.Background(), entity.RawDocument{Kind: constants.PDF, Data: []byte("x")}, Options{Strategy: StrategyDeskew})
	var ef *ExtractionFailed
	if !errors.As(err, &ef) {
		t.Fatalf("err = %v", err)
	}
	if ef.Pages != 2 || ef.Strategy != StrategyDeskew {
		t.Errorf("ExtractionFailed = %+v", ef)
	}
}

func TestOCRPDFMaxPages(t *testing.T) {
	rec := fakeRecognizer(func([]byte) (string, error) { return "ok", nil })
	e := NewExtractor(Config{MaxPages: 2}, nil, WithShell(rasterizeAllShell(t, 4)), WithRecognizer(rec))

	res, err := e.OCR(context.Background(), entity.RawDocument{Kind: constants.PDF, Data: []byte("x")}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Pages != 2 || strings.Count(res.Text, "--- Page") != 2 || len(res.Warnings) != 1 {
		t.Errorf("res = %+v", res)
	}
}

func TestOCRCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := fakeRecognizer(func([]byte) (string, error) {
		cancel()
		return "", context.Canceled
	})
	e := NewExtractor(Config{Concurrency: 1}, nil, WithShell(rasterizeAllShell(t, 3)), WithRecognizer(rec))

	_, err := e.OCR(ctx, entity.RawDocument{Kind: constants.PDF, Data: []byte("x")}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestTesseractCLIArgs(t *testing.T) {
	shell := &fakeShell{fn: func(name string, args []string) ([]byte, error) {
		if _, err := os.Stat(args[0]); err != nil {
			t.Errorf("image not staged: %v", err)
		}
		return []byte("hello"), nil
	}}
	cli := NewTesseractCLI("", "", "/opt/tessdata", shell)
	got, err := cli.Recognize(context.Background(), []byte("png"))
	if err != nil || got != "hello" {
		t.Fatalf("Recognize() = %q, %v", got, err)
	}
	call := shell.calls[0]
	want := []string{"tesseract", call[1], "stdout", "-l", "eng", "--oem", "3", "--psm", "6", "--tessdata-dir", "/opt/tessdata"}
	if !slices.Equal(call, want) {
		t.Errorf("args = %v", call)
	}
	if _, err := os.Stat(call[1]); !os.IsNotExist(err) {
		t.Errorf("staged image %s not removed", filepath.Base(call[1]))
	}
}
