package image

import (
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Scale resamples src to w×h pixels.
func Scale(src image.Image, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// TempPNG encodes img into a new file in dir (os.TempDir when empty). The
// returned cleanup removes the file and is safe to call more than once.
func TempPNG(img image.Image, dir, pattern string) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp image: %w", err)
	}
	path = f.Name()
	cleanup = func() { os.Remove(path) }

	if err := png.Encode(f, img); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp image: %w", err)
	}
	return path, cleanup, nil
}

// SavePNG writes img to path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
