package ocr

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

func (e *Extractor) ocrImage(ctx context.Context, doc entity.RawDocument, opts Options) (entity.ExtractedText, error) {
	res := entity.ExtractedText{Kind: constants.IMAGE, Method: entity.MethodOCR, Strategy: string(opts.Strategy), Pages: 1}

	img, format, err := image.Decode(bytes.NewReader(doc.Data))
	if err != nil {
		return res, &ExtractionFailed{Strategy: opts.Strategy, Pages: 1, Reason: "cannot decode image", Err: err}
	}
	e.logger.Debug("decoded image", "doc_id", doc.ID, "format", format, "bounds", img.Bounds().String())

	pctx, cancel := context.WithTimeout(ctx, e.cfg.PageTimeout)
	defer cancel()
	txt, err := e.recognizeImage(pctx, img, opts.Strategy)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, &ExtractionFailed{Strategy: opts.Strategy, Pages: 1, Reason: "recognition failed", Err: err}
	}

	res.Text = Normalize(txt)
	if res.Text == "" {
		return res, &ExtractionFailed{Strategy: opts.Strategy, Pages: 1, Reason: "no text recognized"}
	}
	return res, nil
}
