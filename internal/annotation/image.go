package annotation

import (
	"image"
	"math"

	"pdf-annotator/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// Image is a bitmap placed on a page.
type Image struct {
	Base

	// SourcePath is the file the bitmap was loaded from. It may be empty
	// for bitmaps that did not come from a file.
	SourcePath string
	Bitmap     image.Image

	Width, Height float64
}

// NewImage creates an image annotation. A zero size means the bitmap's
// native pixel dimensions.
func NewImage(p Placement, path string, bitmap image.Image, size geometry.Size) (*Image, error) {
	base, err := newBase(KindImage, p)
	if err != nil {
		return nil, err
	}
	if bitmap == nil {
		return nil, invalid(KindImage, "bitmap", "is required")
	}
	b := bitmap.Bounds()
	if b.Empty() {
		return nil, invalid(KindImage, "bitmap", "has no pixels")
	}
	if size.Width == 0 && size.Height == 0 {
		size = geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, invalid(KindImage, "size", "must be > 0, got %gx%g", size.Width, size.Height)
	}
	return &Image{
		Base:       base,
		SourcePath: path,
		Bitmap:     bitmap,
		Width:      size.Width,
		Height:     size.Height,
	}, nil
}

// Kind implements Annotation.
func (img *Image) Kind() Kind { return KindImage }

// Accept implements Annotation.
func (img *Image) Accept(v Visitor) error { return v.VisitImage(img) }

// Size implements Resizable.
func (img *Image) Size() geometry.Size {
	return geometry.Size{Width: img.Width, Height: img.Height}
}

// SetSize implements Resizable.
func (img *Image) SetSize(s geometry.Size) {
	img.Width, img.Height = s.Width, s.Height
}

// DisplayRect implements Annotation.
func (img *Image) DisplayRect(zoom float64) geometry.Rect {
	return displayRectOf(img, zoom)
}

// ScaledBitmap returns the bitmap resampled to its display extent at zoom.
func (img *Image) ScaledBitmap(zoom float64) image.Image {
	return scaleBitmap(img.Bitmap, DisplayExtent(img, zoom))
}

func scaleBitmap(src image.Image, size geometry.Size) *image.RGBA {
	w := int(math.Max(1, math.Round(size.Width)))
	h := int(math.Max(1, math.Round(size.Height)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
