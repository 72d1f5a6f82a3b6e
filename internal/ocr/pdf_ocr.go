package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

// renderFunc produces the PNG path for a 1-based page number.
type renderFunc func(ctx context.Context, page int) (string, error)

func (e *Extractor) ocrPDF(ctx context.Context, doc entity.RawDocument, opts Options) (entity.ExtractedText, error) {
	res := entity.ExtractedText{Kind: constants.PDF, Method: entity.MethodOCR, Strategy: string(opts.Strategy)}

	dir, cleanup, err := e.stage(doc)
	if err != nil {
		return res, err
	}
	defer cleanup()
	pdfPath := filepath.Join(dir, stagedPDF)

	var render renderFunc
	pages, err := pageCount(doc.Data)
	if err != nil {
		e.logger.Warn("pdf page count failed, rasterizing whole document", "doc_id", doc.ID, "error", err)
		files, rerr := e.rasterizeAll(ctx, pdfPath, dir, opts.DPI)
		if rerr != nil {
			return res, &ExtractionFailed{Strategy: opts.Strategy, Reason: "rasterization failed", Err: rerr}
		}
		pages = len(files)
		render = func(_ context.Context, page int) (string, error) { return files[page-1], nil }
	} else {
		render = func(ctx context.Context, page int) (string, error) {
			return e.rasterizePage(ctx, pdfPath, dir, page, opts.DPI)
		}
	}

	if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("only the first %d of %d pages were processed", e.cfg.MaxPages, pages))
		pages = e.cfg.MaxPages
	}
	res.Pages = pages
	if pages == 0 {
		return res, &ExtractionFailed{Strategy: opts.Strategy, Reason: "document has no pages"}
	}

	texts, warnings, err := e.recognizePages(ctx, pages, opts.Strategy, render)
	if err != nil {
		return res, err
	}
	res.Warnings = append(res.Warnings, warnings...)

	var b strings.Builder
	recognized := 0
	for i, t := range texts {
		fmt.Fprintf(&b, "\n--- Page %d ---\n", i+1)
		b.WriteString(t)
		if strings.TrimSpace(t) != "" {
			recognized++
		}
	}
	if recognized == 0 {
		return res, &ExtractionFailed{
			Strategy: opts.Strategy,
			Pages:    pages,
			Reason:   fmt.Sprintf("no text recognized on any of %d pages", pages),
		}
	}
	res.Text = Normalize(b.String())
	return res, nil
}

// recognizePages runs pages concurrently and returns their text in page order. A failed page
// becomes a warning; only cancellation of ctx is returned as an error.
func (e *Extractor) recognizePages(ctx context.Context, pages int, strategy Strategy, render renderFunc) ([]string, []string, error) {
	texts := make([]string, pages)
	failures := make([]string, pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i := 0; i < pages; i++ {
		page := i + 1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pctx, cancel := context.WithTimeout(gctx, e.cfg.PageTimeout)
			defer cancel()

			txt, err := e.recognizePage(pctx, page, strategy, render)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.logger.Warn("page ocr failed", "page", page, "error", err)
				failures[i] = fmt.Sprintf("page %d: OCR Error: %v", page, err)
				return nil
			}
			texts[i] = txt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings []string
	for _, f := range failures {
		if f != "" {
			warnings = append(warnings, f)
		}
	}
	return texts, warnings, nil
}

func (e *Extractor) recognizePage(ctx context.Context, page int, strategy Strategy, render renderFunc) (string, error) {
	path, err := render(ctx, page)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode page image: %w", err)
	}
	return e.recognizeImage(ctx, img, strategy)
}

// recognizeImage preprocesses img and hands it to the recognizer.
func (e *Extractor) recognizeImage(ctx context.Context, img image.Image, strategy Strategy) (string, error) {
	processed, err := Preprocess(img, strategy)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, processed); err != nil {
		return "", fmt.Errorf("encode page image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.recognizer.Recognize(ctx, buf.Bytes())
}

func (e *Extractor) rasterizePage(ctx context.Context, pdfPath, dir string, page, dpi int) (string, error) {
	prefix := filepath.Join(dir, fmt.Sprintf("page-%d", page))
	n := strconv.Itoa(page)
	// pdftoppm -r 300 -png -f N -l N -singlefile <in.pdf> <dir/page-N>
	_, err := e.shell.Exec(ctx, Command{
		Name: e.cfg.Pdftoppm,
		Args: []string{"-r", strconv.Itoa(dpi), "-png", "-f", n, "-l", n, "-singlefile", pdfPath, prefix},
	})
	if err != nil {
		return "", fmt.Errorf("rasterize page %d: %w", page, err)
	}
	return prefix + ".png", nil
}

// rasterizeAll renders every page in one pdftoppm call, for files pdfcpu cannot parse.
func (e *Extractor) rasterizeAll(ctx context.Context, pdfPath, dir string, dpi int) ([]string, error) {
	prefix := filepath.Join(dir, "all")
	// pdftoppm -r 300 -png <in.pdf> <dir/all>
	if _, err := e.shell.Exec(ctx, Command{Name: e.cfg.Pdftoppm, Args: []string{"-r", strconv.Itoa(dpi), "-png", pdfPath, prefix}}); err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, errors.New("pdftoppm produced no images")
	}
	return matches, nil
}

func pageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}
