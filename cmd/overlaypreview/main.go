// Command overlaypreview replays a session script and renders the drafts
// of one page to a PNG, the way the canvas draws them over the page.
//
// With -watch the preview is re-rendered whenever the script or the
// configuration file changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"pdf-annotator/internal/app"
	"pdf-annotator/internal/config"
	imgutil "pdf-annotator/internal/image"
	"pdf-annotator/internal/logging"
	"pdf-annotator/internal/script"
	"pdf-annotator/ui/mainwindow"
)

type options struct {
	configPath string
	scriptPath string
	output     string
	page       int
	background string
	blend      imgutil.BlendMode
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "TOML configuration file")
	flag.StringVar(&opts.scriptPath, "script", "", "YAML session script (required)")
	flag.StringVar(&opts.output, "o", "overlay.png", "Output PNG")
	flag.IntVar(&opts.page, "page", 0, "Page to render, 1-based (default: page shown at the end of the script)")
	flag.StringVar(&opts.background, "background", "", "Page raster to draw under the overlay (PNG, JPEG, TIFF)")
	blend := flag.String("blend", "normal", "How the overlay combines with the page: normal or multiply")
	watch := flag.Bool("watch", false, "Re-render when the script or configuration changes")
	flag.Parse()

	if opts.scriptPath == "" {
		fmt.Println("Usage: overlaypreview -script session.yaml [-o overlay.png] [-page N] [-watch]")
		os.Exit(1)
	}

	mode, err := imgutil.ParseBlendMode(*blend)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	opts.blend = mode

	logger, _, err := logging.New(logging.Options{Level: "info"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := render(opts, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render: %v\n", err)
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := watchAndRender(ctx, opts, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
		os.Exit(1)
	}
}

func watchAndRender(ctx context.Context, opts options, logger *slog.Logger) error {
	paths := []string{opts.scriptPath}
	if opts.configPath != "" {
		paths = append(paths, opts.configPath)
	}
	w, err := app.NewWatcher(300*time.Millisecond, logger, paths...)
	if err != nil {
		return err
	}
	w.OnChange(func(path string) {
		logger.Info("change detected", "path", path)
		if err := render(opts, logger); err != nil {
			logger.Error("render failed", "error", err)
		}
	})
	w.Start()
	logger.Info("watching", "paths", paths)
	<-ctx.Done()
	return w.Stop()
}

// render replays the script in a fresh window and writes the preview.
func render(opts options, logger *slog.Logger) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	s, err := script.Load(opts.scriptPath)
	if err != nil {
		return err
	}
	win, err := mainwindow.NewFromConfig(cfg, nil, image.Rectangle{}, logger)
	if err != nil {
		return err
	}
	defer win.Close()
	win.Renderer().SetBlend(opts.blend)

	if err := script.NewSession(win, s, logger).Run(); err != nil {
		return err
	}
	if !win.State().HasDocument() {
		return fmt.Errorf("script did not open a document")
	}
	if opts.page > 0 && !win.Canvas().SetPage(opts.page-1) && win.Canvas().Page() != opts.page-1 {
		return fmt.Errorf("page %d out of range (document has %d)", opts.page, win.State().PageCount())
	}

	var page image.Image
	if opts.background != "" {
		src, err := imgutil.Load(opts.background)
		if err != nil {
			return err
		}
		page = src.Image
	}
	out, err := win.Render(page)
	if err != nil {
		return err
	}
	if err := imgutil.SavePNG(out, opts.output); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: page %d, %dx%d, %d annotation(s)\n",
		opts.output, win.Canvas().Page()+1, out.Bounds().Dx(), out.Bounds().Dy(), len(win.Canvas().Annotations()))
	return nil
}
