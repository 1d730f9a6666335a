package mainwindow

import (
	"fmt"
	"image"
	"log/slog"

	"pdf-annotator/internal/app"
	"pdf-annotator/internal/config"
	"pdf-annotator/internal/fontmetrics"
	"pdf-annotator/internal/projector"
	"pdf-annotator/ui/canvas"
	"pdf-annotator/ui/prefs"
)

// NewFromConfig assembles a window and everything behind it from cfg.
// Configured fonts are registered for measurement and embedded on save.
// p may be nil to run without persisted preferences.
func NewFromConfig(cfg *config.Config, p *prefs.Prefs, screen image.Rectangle, logger *slog.Logger) (*Window, error) {
	fonts, err := fontmetrics.New()
	if err != nil {
		return nil, fmt.Errorf("loading built-in fonts: %w", err)
	}
	embedded, err := cfg.LoadFonts(fonts)
	if err != nil {
		return nil, err
	}

	var opts []projector.Option
	if cfg.TempDir != "" {
		opts = append(opts, projector.WithTempDir(cfg.TempDir))
	}
	state := app.NewState(fonts, projector.New(logger, opts...), logger)
	for _, f := range embedded {
		state.AddFont(f)
	}

	c := canvas.NewCanvas(state, nil)
	c.SetZoomRange(cfg.Zoom.Min, cfg.Zoom.Max, cfg.Zoom.Step)
	c.SetZoom(cfg.Zoom.Default)
	c.SetTextDefaults(cfg.TextFormat(""))
	c.SetPen(canvas.Pen{Color: cfg.Pen.Color, Width: cfg.Pen.Width})

	return New(state, c, Options{
		Screen:   screen,
		Prefs:    p,
		Renderer: canvas.NewRenderer(fonts),
		Logger:   logger,
	}), nil
}
