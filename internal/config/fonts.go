package config

import (
	"fmt"
	"os"

	"pdf-annotator/internal/fontmetrics"
	"pdf-annotator/internal/pdfdoc"
)

// pdfStyles maps a family member to the style string fpdf registers it under.
var pdfStyles = map[fontmetrics.Style]string{
	fontmetrics.Regular:    "",
	fontmetrics.Bold:       "B",
	fontmetrics.Italic:     "I",
	fontmetrics.BoldItalic: "BI",
}

func (f FontFiles) members() map[fontmetrics.Style]string {
	return map[fontmetrics.Style]string{
		fontmetrics.Regular:    f.Regular,
		fontmetrics.Bold:       f.Bold,
		fontmetrics.Italic:     f.Italic,
		fontmetrics.BoldItalic: f.BoldItalic,
	}
}

// LoadFonts reads every configured font file, registers it with lib for
// on-screen measurement and returns it for embedding on save.
func (c *Config) LoadFonts(lib *fontmetrics.Library) ([]pdfdoc.FontData, error) {
	var out []pdfdoc.FontData
	for _, family := range c.FontFamilies() {
		for _, style := range []fontmetrics.Style{fontmetrics.Regular, fontmetrics.Bold, fontmetrics.Italic, fontmetrics.BoldItalic} {
			path := c.Fonts[family].members()[style]
			if path == "" {
				continue
			}
			data, err := os.ReadFile(c.ResolvePath(path))
			if err != nil {
				return nil, fmt.Errorf("font %s %s: %w", family, style, err)
			}
			if lib != nil {
				if err := lib.Register(family, style, data); err != nil {
					return nil, err
				}
			}
			out = append(out, pdfdoc.FontData{Family: family, Style: pdfStyles[style], TTF: data})
		}
	}
	return out, nil
}
