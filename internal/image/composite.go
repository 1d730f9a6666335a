package image

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
)

// BlendMode selects how a layer's colour combines with what is below it.
type BlendMode int

const (
	// BlendNormal paints the layer over the backdrop.
	BlendNormal BlendMode = iota
	// BlendMultiply darkens the backdrop, so page text stays readable
	// under opaque stamps.
	BlendMultiply
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendMultiply:
		return "multiply"
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// ParseBlendMode is the inverse of String. It is case-insensitive.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return BlendNormal, nil
	case "multiply":
		return BlendMultiply, nil
	}
	return BlendNormal, fmt.Errorf("unknown blend mode %q", s)
}

// Composite flattens a stack of bitmaps onto a solid backdrop.
type Composite struct {
	Width, Height int
	Layers        []*CompositeLayer
	BackColor     color.Color
}

// CompositeLayer is one bitmap in a Composite. Opacity runs from 0 to 1.
type CompositeLayer struct {
	Image     image.Image
	BlendMode BlendMode
	Opacity   float64
	Offset    image.Point
}

// NewComposite returns an empty width×height composite on white.
func NewComposite(width, height int) *Composite {
	return &Composite{Width: width, Height: height, BackColor: color.White}
}

// AddLayer stacks img at (x, y) fully opaque and returns the layer so the
// caller can adjust it.
func (c *Composite) AddLayer(img image.Image, mode BlendMode, x, y int) *CompositeLayer {
	l := &CompositeLayer{Image: img, BlendMode: mode, Opacity: 1, Offset: image.Pt(x, y)}
	c.Layers = append(c.Layers, l)
	return l
}

// Render flattens the layers in order.
func (c *Composite) Render() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(out, out.Bounds(), image.NewUniform(c.BackColor), image.Point{}, draw.Src)

	for _, l := range c.Layers {
		if l.Image == nil || l.Opacity <= 0 {
			continue
		}
		sb := l.Image.Bounds()
		target := sb.Sub(sb.Min).Add(l.Offset).Intersect(out.Bounds())
		if target.Empty() {
			continue
		}
		if l.BlendMode == BlendNormal && l.Opacity >= 1 {
			draw.Draw(out, target, l.Image, sb.Min.Add(target.Min.Sub(l.Offset)), draw.Over)
			continue
		}
		for y := target.Min.Y; y < target.Max.Y; y++ {
			for x := target.Min.X; x < target.Max.X; x++ {
				src := l.Image.At(sb.Min.X+x-l.Offset.X, sb.Min.Y+y-l.Offset.Y)
				out.SetRGBA(x, y, mix(out.RGBAAt(x, y), src, l.BlendMode, l.Opacity))
			}
		}
	}
	return out
}

// mix composites src over dst. Channels are handled straight (not
// premultiplied) while blending and premultiplied again on output.
func mix(dst color.RGBA, src color.Color, mode BlendMode, opacity float64) color.RGBA {
	s := straight(src)
	d := straight(dst)

	var c [3]float64
	for i := range c {
		c[i] = s[i]
		if mode == BlendMultiply {
			c[i] *= d[i]
		}
	}

	a := s[3] * opacity
	rest := d[3] * (1 - a)
	return color.RGBA{
		R: unit(c[0]*a + d[0]*rest),
		G: unit(c[1]*a + d[1]*rest),
		B: unit(c[2]*a + d[2]*rest),
		A: unit(a + rest),
	}
}

func straight(c color.Color) [4]float64 {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return [4]float64{}
	}
	fa := float64(a)
	return [4]float64{float64(r) / fa, float64(g) / fa, float64(b) / fa, fa / 0xffff}
}

// unit maps [0,1] onto a byte, saturating outside the range.
func unit(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v * 0xff)
}
