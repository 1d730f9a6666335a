// Package image provides image loading, resampling, export and compositing
// for annotation bitmaps.
package image

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"pdf-annotator/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source is a decoded image file. Format is the decoder name, e.g. "png".
type Source struct {
	Path   string
	Image  image.Image
	Format string
}

// Load decodes the image at path. Images without pixels are rejected.
func Load(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("image %s has no pixels", filepath.Base(path))
	}
	return &Source{Path: path, Image: img, Format: format}, nil
}

// Size is the native pixel size.
func (s *Source) Size() geometry.Size {
	if s.Image == nil {
		return geometry.Size{}
	}
	b := s.Image.Bounds()
	return geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Formats a PDF writer takes as is. Anything else is re-encoded to PNG
// before insertion.
var embeddable = map[string]bool{"png": true, "jpeg": true, "gif": true}

var extFormats = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
	".bmp":  "bmp",
	".tif":  "tiff",
	".tiff": "tiff",
	".webp": "webp",
}

// CanEmbed reports whether the file at path can be embedded unchanged.
func CanEmbed(path string) bool {
	return embeddable[extFormats[strings.ToLower(filepath.Ext(path))]]
}

// IsSupportedFormat reports whether path has the extension of a format
// Load can decode.
func IsSupportedFormat(path string) bool {
	_, ok := extFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}
