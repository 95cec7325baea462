package gateway

import "strings"

const (
	// DefaultMediaBaseURL is the public MinIO bucket serving product images.
	DefaultMediaBaseURL = "http://localhost:9000/kasyus-products"

	// DefaultImage is the placeholder shown for products without images.
	DefaultImage = "/images/empty_image_2.jpg"

	emptyImageName = "empty_image_2.jpg"
)

// ImageURL resolves a stored image reference against the media base URL.
// Absolute URLs pass through untouched; empty or placeholder references
// resolve to the default image.
func ImageURL(mediaBaseURL, ref string) string {
	if ref == "" || ref == emptyImageName {
		return DefaultImage
	}
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	if mediaBaseURL == "" {
		mediaBaseURL = DefaultMediaBaseURL
	}
	return strings.TrimSuffix(mediaBaseURL, "/") + "/" + ref
}
