package assets

import (
	"path"
	"strings"
)

// staticTypes lists the files the static source will serve. Anything else is
// reported as not found instead of guessing.
var staticTypes = map[string]string{
	".js":    "application/javascript; charset=utf-8",
	".mjs":   "application/javascript; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".html":  "text/html; charset=utf-8",
	".htm":   "text/html; charset=utf-8",
	".wasm":  "application/wasm",
	".map":   "application/json; charset=utf-8",
	".json":  "application/json; charset=utf-8",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
}

// contentTypeForPath returns the Content-Type for rel and whether the suffix
// is one we serve. .css/.js are fixed so the webview never blocks them on a
// MIME mismatch.
func contentTypeForPath(rel string) (string, bool) {
	ct, ok := staticTypes[strings.ToLower(path.Ext(rel))]
	return ct, ok
}

// minifyType maps a served Content-Type to the media type the minifier knows.
func minifyType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "application/javascript"):
		return "application/javascript"
	case strings.HasPrefix(contentType, "text/css"):
		return "text/css"
	case strings.HasPrefix(contentType, "text/html"):
		return "text/html"
	}
	return ""
}
