package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

// LocalSource opens documents from the local filesystem. When Root is set, relative refs resolve
// under it and refs escaping it are refused.
type LocalSource struct {
	Root     string
	MaxBytes int64
	logger   *slog.Logger
}

func NewLocalSource(root string, logger *slog.Logger) *LocalSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalSource{Root: root, MaxBytes: DefaultMaxBytes, logger: logger}
}

func (s *LocalSource) Open(ctx context.Context, ref string) (entity.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return entity.RawDocument{}, err
	}
	p, err := s.resolve(ref)
	if err != nil {
		return entity.RawDocument{}, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entity.RawDocument{}, fmt.Errorf("%s: %w", ref, common.ErrNotFound)
		}
		return entity.RawDocument{}, err
	}
	defer f.Close()

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return entity.RawDocument{}, fmt.Errorf("read %s: %w", ref, err)
	}
	if int64(len(data)) > limit {
		return entity.RawDocument{}, fmt.Errorf("%s exceeds %d bytes: %w", ref, limit, common.ErrInvalidInput)
	}

	doc, err := NewDocument(p, data)
	if err != nil {
		return entity.RawDocument{}, err
	}
	s.logger.Debug("document opened", "path", p, "kind", doc.Kind, "bytes", len(data), "bureau_hint", doc.BureauHint)
	return doc, nil
}

func (s *LocalSource) resolve(ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", fmt.Errorf("empty document reference: %w", common.ErrInvalidInput)
	}
	if s.Root == "" {
		return filepath.Clean(ref), nil
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	p := ref
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s: %w", ref, root, common.ErrInvalidInput)
	}
	return p, nil
}
