// Package fontmetrics measures and draws text with OpenType fonts.
//
// The Go font family is always available. Common PDF family names are
// mapped onto it (sans for Arial/Helvetica/Times, mono for Courier) so that
// every request resolves to a face; further families can be registered from
// TrueType files.
package fontmetrics

import (
	"fmt"
	"os"
	"strings"

	"pdf-annotator/internal/annotation"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/floats/scalar"
)

// Style selects a member of a font family.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

// StyleOf returns the style for the given flags.
func StyleOf(bold, italic bool) Style {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Regular
	}
}

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold_italic"
	default:
		return "regular"
	}
}

// Family names of the built-in fonts.
const (
	GoSans = "Go"
	GoMono = "Go Mono"
)

// maxCachedFaces bounds the face cache; zooming produces a new size per step.
const maxCachedFaces = 128

var builtin = map[string]map[Style][]byte{
	GoSans: {
		Regular:    goregular.TTF,
		Bold:       gobold.TTF,
		Italic:     goitalic.TTF,
		BoldItalic: gobolditalic.TTF,
	},
	GoMono: {
		Regular:    gomono.TTF,
		Bold:       gomonobold.TTF,
		Italic:     gomonoitalic.TTF,
		BoldItalic: gomonobolditalic.TTF,
	},
}

var defaultAliases = map[string]string{
	"arial":           GoSans,
	"helvetica":       GoSans,
	"times":           GoSans,
	"times new roman": GoSans,
	"courier":         GoMono,
	"courier new":     GoMono,
}

type faceKey struct {
	family string
	style  Style
	size   float64
}

// Library resolves annotation faces to OpenType faces. It is not safe for
// concurrent use.
type Library struct {
	fonts   map[string]map[Style]*opentype.Font
	aliases map[string]string
	faces   map[faceKey]font.Face
}

// New returns a library holding the Go fonts.
func New() (*Library, error) {
	l := &Library{
		fonts:   make(map[string]map[Style]*opentype.Font),
		aliases: make(map[string]string),
		faces:   make(map[faceKey]font.Face),
	}
	for family, styles := range builtin {
		for style, data := range styles {
			if err := l.Register(family, style, data); err != nil {
				return nil, err
			}
		}
	}
	for alias, family := range defaultAliases {
		l.aliases[alias] = family
	}
	return l, nil
}

func normalize(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// Register adds a TrueType/OpenType font as a member of family.
func (l *Library) Register(family string, style Style, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing font %s %s: %w", family, style, err)
	}
	key := normalize(family)
	if l.fonts[key] == nil {
		l.fonts[key] = make(map[Style]*opentype.Font)
	}
	l.fonts[key][style] = f
	delete(l.aliases, key)
	l.dropFaces(key)
	return nil
}

// RegisterFile loads a font file and registers it.
func (l *Library) RegisterFile(family string, style Style, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading font file: %w", err)
	}
	return l.Register(family, style, data)
}

// Alias makes family resolve to the fonts registered for target.
func (l *Library) Alias(family, target string) {
	l.aliases[normalize(family)] = normalize(target)
}

func (l *Library) dropFaces(family string) {
	for k, f := range l.faces {
		if k.family == family {
			f.Close()
			delete(l.faces, k)
		}
	}
}

// resolve returns the font for family and style, falling back to the
// regular member of the family and then to Go Regular.
func (l *Library) resolve(family string, style Style) (string, Style, *opentype.Font) {
	key := normalize(family)
	if target, ok := l.aliases[key]; ok {
		key = normalize(target)
	}
	if styles, ok := l.fonts[key]; ok {
		if f, ok := styles[style]; ok {
			return key, style, f
		}
		if f, ok := styles[Regular]; ok {
			return key, Regular, f
		}
	}
	key = normalize(GoSans)
	if f, ok := l.fonts[key][style]; ok {
		return key, style, f
	}
	return key, Regular, l.fonts[key][Regular]
}

// Face returns a drawing face for req, sized in pixels.
func (l *Library) Face(req annotation.Face) (font.Face, error) {
	if req.Size <= 0 {
		return nil, fmt.Errorf("font size must be > 0, got %g", req.Size)
	}
	family, style, f := l.resolve(req.Family, StyleOf(req.Bold, req.Italic))
	key := faceKey{family: family, style: style, size: scalar.Round(req.Size, 3)}
	if face, ok := l.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face %s %s %g: %w", family, style, key.size, err)
	}
	if len(l.faces) >= maxCachedFaces {
		for k, old := range l.faces {
			old.Close()
			delete(l.faces, k)
		}
	}
	l.faces[key] = face
	return face, nil
}

// Measure implements annotation.Measurer. Faces that cannot be built
// measure as empty.
func (l *Library) Measure(req annotation.Face, text string) annotation.TextExtent {
	face, err := l.Face(req)
	if err != nil {
		return annotation.TextExtent{}
	}
	return annotation.TextExtent{
		Advance:    toFloat(font.MeasureString(face, text)),
		LineHeight: toFloat(face.Metrics().Height),
	}
}

// Ascent returns the distance from the top of the line to the baseline.
func (l *Library) Ascent(req annotation.Face) float64 {
	face, err := l.Face(req)
	if err != nil {
		return 0
	}
	return toFloat(face.Metrics().Ascent)
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
