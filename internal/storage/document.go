package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

// DefaultMaxBytes caps how much of a document is read.
const DefaultMaxBytes int64 = 64 << 20

// NewDocument builds a RawDocument from a file name and its bytes. The kind comes from the
// extension; a bureau named in the file name ("experian-2024.pdf") becomes the bureau hint.
func NewDocument(name string, data []byte) (entity.RawDocument, error) {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	kind := constants.MapExtToKind(path.Ext(base))
	if kind == "" {
		return entity.RawDocument{}, fmt.Errorf("%s: %w", base, common.ErrUnsupportedMedia)
	}
	if len(data) == 0 {
		return entity.RawDocument{}, fmt.Errorf("%s is empty: %w", base, common.ErrInvalidInput)
	}
	return entity.RawDocument{
		Name:       base,
		Kind:       kind,
		Data:       data,
		BureauHint: BureauFromName(base),
	}, nil
}

// BureauFromName returns the first bureau named in a file name, or "".
func BureauFromName(name string) string {
	stem := strings.TrimSuffix(name, path.Ext(name))
	fields := strings.FieldsFunc(strings.ToLower(stem), func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	for _, f := range fields {
		for _, b := range constants.Bureaus() {
			if f == string(b) {
				return string(b)
			}
		}
	}
	return ""
}
