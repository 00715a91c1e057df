package extraction

import "strings"

// ContentKind is the routed processing path for a document.
type ContentKind string

// Content kinds. KindUnknown documents are routed through the vision path as
// a best effort and their results carry a distinct provenance version.
const (
	KindPDF     ContentKind = "pdf"
	KindImage   ContentKind = "image"
	KindUnknown ContentKind = "unknown"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
	".heic": true,
}

// Classify routes a document by its declared MIME type and file extension.
// Pure classification, no content inspection.
func Classify(mimeType, extension string) ContentKind {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	ext := strings.ToLower(strings.TrimSpace(extension))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if strings.Contains(mime, "pdf") || strings.Contains(ext, "pdf") {
		return KindPDF
	}

	if strings.HasPrefix(mime, "image/") || imageExtensions[ext] {
		return KindImage
	}

	return KindUnknown
}
