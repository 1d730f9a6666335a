// Package main provides the entry point for the PDF Annotator application.
//
// Without a toolkit front end the annotator runs sessions headlessly:
// it opens a PDF, replays a scripted editing session against the window
// model and saves the result.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"pdf-annotator/internal/config"
	"pdf-annotator/internal/logging"
	"pdf-annotator/internal/script"
	"pdf-annotator/internal/version"
	"pdf-annotator/ui/mainwindow"
	"pdf-annotator/ui/prefs"
)

const appName = "pdf-annotator"

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	scriptPath := flag.String("script", "", "YAML session script to replay")
	output := flag.String("o", "", "Save the document to this path after the session")
	noPrefs := flag.Bool("no-prefs", false, "Do not read or write saved preferences")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config file] [-script session.yaml] [-o out.pdf] [input.pdf]\n", appName)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(appName))
		return
	}
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*configPath, *scriptPath, flag.Arg(0), *output, !*noPrefs); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(configPath, scriptPath, input, output string, usePrefs bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(cfg.LoggingOptions())
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("starting", "version", version.Version, "commit", version.GitCommit)

	var p *prefs.Prefs
	if usePrefs {
		p = prefs.Load()
	}
	win, err := mainwindow.NewFromConfig(cfg, p, image.Rectangle{}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := win.Close(); err != nil {
			logger.Warn("closing window", "error", err)
		}
	}()

	var s *script.Script
	if scriptPath != "" {
		if s, err = script.Load(scriptPath); err != nil {
			return err
		}
	} else {
		s = &script.Script{}
	}
	if input != "" {
		// Command-line paths are relative to the working directory.
		if s.Document, err = filepath.Abs(input); err != nil {
			return err
		}
	}
	if s.Document == "" && len(s.Steps) == 0 {
		return fmt.Errorf("nothing to do: give an input PDF or a script")
	}

	sess := script.NewSession(win, s, logger)
	if err := sess.Run(); err != nil {
		return err
	}
	for _, rep := range sess.Saves {
		report(logger, rep.Applied, len(rep.Skipped))
	}

	if output != "" {
		rep, err := win.Save(output)
		if err != nil {
			return err
		}
		report(logger, rep.Applied, len(rep.Skipped))
		for _, sk := range rep.Skipped {
			fmt.Fprintf(os.Stderr, "skipped %s on page %d: %v\n", sk.Kind, sk.Page+1, sk.Err)
		}
	}

	fmt.Println(win.Title())
	fmt.Println(win.Status())
	if ctl := win.Controls(); ctl.PageLabel != "" {
		fmt.Printf("%s, zoom %s, %d draft annotation(s)\n", ctl.PageLabel, ctl.ZoomLabel, win.State().Count())
	}
	return nil
}

func report(logger *slog.Logger, applied, skipped int) {
	logger.Info("saved", "applied", applied, "skipped", skipped)
}
