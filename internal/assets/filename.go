package assets

import (
	"mime"
	"net/url"
	"path"
	"strings"

	"dashpub/internal/fileutil"
)

const hashLength = 16

// knownExtensions pins the extension for image types that map to several
// candidates in the mime table.
var knownExtensions = map[string]string{
	"image/png":                ".png",
	"image/jpeg":               ".jpg",
	"image/gif":                ".gif",
	"image/svg+xml":            ".svg",
	"image/webp":               ".webp",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
	"image/bmp":                ".bmp",
}

// FileName derives the stored file name for reference: the first 16 hex
// characters of its SHA256 digest plus an extension taken from the content
// type, falling back to the reference's URL path.
func FileName(reference, contentType string) string {
	return fileutil.ShortHash(reference, hashLength) + extension(reference, contentType)
}

func extension(reference, contentType string) string {
	if media, _, err := mime.ParseMediaType(contentType); err == nil {
		media = strings.ToLower(media)
		if ext, ok := knownExtensions[media]; ok {
			return ext
		}
		if exts, err := mime.ExtensionsByType(media); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	if parsed, err := url.Parse(reference); err == nil && parsed.Scheme != "data" {
		ext := strings.ToLower(path.Ext(parsed.Path))
		if isSafeExtension(ext) {
			return ext
		}
	}
	return ".bin"
}

func isSafeExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
