package menu

import (
	"strings"
)

// DefaultAssetBaseURL is prefixed to relative image and video paths.
const DefaultAssetBaseURL = "https://res.cloudinary.com/dinemenu/image/upload/"

// NormalizeAssetURL makes an asset path absolute. Absolute and
// protocol-relative URLs pass through; an empty path stays empty, which
// renderers treat as "no media".
func NormalizeAssetURL(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(path, "//") {
		return path
	}
	if base == "" {
		base = DefaultAssetBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
