package ocr

import (
	"context"
	"os"
)

// Recognizer turns one preprocessed PNG page into text.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// TesseractCLI runs the tesseract binary once per page.
type TesseractCLI struct {
	Binary      string
	Language    string
	TessdataDir string
	shell       Shell
}

func NewTesseractCLI(binary, language, tessdataDir string, shell Shell) *TesseractCLI {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractCLI{Binary: binary, Language: language, TessdataDir: tessdataDir, shell: shell}
}

func (t *TesseractCLI) Recognize(ctx context.Context, png []byte) (string, error) {
	f, err := os.CreateTemp("", "credit-audit-page-*.png")
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.Write(png); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	// tesseract <img> stdout -l eng --oem 3 --psm 6
	args := []string{path, "stdout", "-l", t.Language, "--oem", "3", "--psm", "6"}
	if t.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.TessdataDir)
	}
	out, err := t.shell.Exec(ctx, Command{Name: t.Binary, Args: args})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
