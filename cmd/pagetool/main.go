// Command pagetool inspects and rearranges the pages of a PDF.
//
//	pagetool info in.pdf
//	pagetool delete -page 2 -o out.pdf in.pdf
//	pagetool move -from 1 -to 3 -o out.pdf in.pdf
//	pagetool reorder -order 3,1,2 -o out.pdf in.pdf
//	pagetool merge -o out.pdf in.pdf more.pdf...
//
// Page numbers on the command line start at 1.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pdf-annotator/internal/logging"
	"pdf-annotator/internal/pdfdoc"
	"pdf-annotator/internal/projector"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: pagetool info|delete|move|reorder|merge [flags] in.pdf [more.pdf...]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	output := fs.String("o", "", "Output PDF (default: overwrite input)")
	page := fs.Int("page", 0, "Page to delete")
	from := fs.Int("from", 0, "Page to move")
	to := fs.Int("to", 0, "Destination position")
	order := fs.String("order", "", "Comma-separated new page order, e.g. 3,1,2")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		usage()
	}
	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, closeLog, err := logging.New(logging.Options{Level: level})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	doc, err := pdfdoc.Open(fs.Arg(0), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open PDF: %v\n", err)
		os.Exit(1)
	}
	defer doc.Close()

	switch cmd {
	case "info":
		printInfo(doc)
		return
	case "delete":
		err = doc.DeletePage(*page - 1)
	case "move":
		err = doc.MovePage(*from-1, *to-1)
	case "reorder":
		var mapping []int
		if mapping, err = parseOrder(*order); err == nil {
			err = doc.Reorder(mapping)
		}
	case "merge":
		for _, other := range fs.Args()[1:] {
			if err = doc.Merge(other); err != nil {
				break
			}
		}
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", cmd, err)
		os.Exit(1)
	}

	out := *output
	if out == "" {
		out = doc.Path()
	}
	if _, err := doc.Save(out, nil, projector.New(logger)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d pages)\n", out, doc.PageCount())
}

func printInfo(doc *pdfdoc.Document) {
	fmt.Printf("%s: %d pages\n", doc.Path(), doc.PageCount())
	for i, size := range doc.PageSizes() {
		fmt.Printf("  page %d: %.1f x %.1f pt\n", i+1, size.Width, size.Height)
	}
}

// parseOrder converts "3,1,2" to the zero-based mapping [2 0 1].
func parseOrder(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("-order is required")
	}
	parts := strings.Split(s, ",")
	mapping := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid page %q in -order", p)
		}
		mapping[i] = n - 1
	}
	return mapping, nil
}
