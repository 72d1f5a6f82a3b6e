package constants

import "strings"

// MediaKind is the declared kind of a raw document.
type MediaKind string

const (
	PDF   MediaKind = "PDF"
	IMAGE MediaKind = "IMAGE"
)

// AllowedExtensions holds the file extensions accepted for credit report ingestion.
var AllowedExtensions = map[string]MediaKind{
	"pdf":  PDF,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"gif":  IMAGE,
	"bmp":  IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"webp": IMAGE,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToKind returns the media kind for an extension, or "" if unsupported.
func MapExtToKind(ext string) MediaKind {
	return AllowedExtensions[NormalizeExt(ext)]
}
