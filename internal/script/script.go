// Package script replays a scripted editing session against a window.
//
// A script is a YAML document listing user actions in order. Dialog
// answers are queued ahead of the press that opens the dialog:
//
//	document: input.pdf
//	steps:
//	  - mode: text
//	  - text: {text: "Approved", size: 14, bold: true}
//	  - press: [120, 340]
//	  - drag: {from: [130, 335], to: [200, 400]}
//	  - save: out.pdf
package script

import (
	"fmt"
	"os"
	"path/filepath"

	"pdf-annotator/internal/annotation"

	"gopkg.in/yaml.v3"
)

// Script is a decoded session script.
type Script struct {
	Document string  `yaml:"document"`
	Zoom     float64 `yaml:"zoom"`
	Steps    []Step  `yaml:"steps"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Step is one action. Exactly one field is set.
type Step struct {
	Open string   `yaml:"open,omitempty"`
	Mode string   `yaml:"mode,omitempty"`
	Zoom *float64 `yaml:"zoom,omitempty"`
	Page *int     `yaml:"page,omitempty"` // zero-based

	Text   *annotation.TextFormat `yaml:"text,omitempty"`
	Image  string                 `yaml:"image,omitempty"`
	Doodle *annotation.Drawing    `yaml:"doodle,omitempty"`
	Cancel bool                   `yaml:"cancel,omitempty"`

	Press       *Point `yaml:"press,omitempty"`
	Move        *Point `yaml:"move,omitempty"`
	Release     *Point `yaml:"release,omitempty"`
	DoubleClick *Point `yaml:"double_click,omitempty"`
	Drag        *Drag  `yaml:"drag,omitempty"`

	DeletePage *int      `yaml:"delete_page,omitempty"`
	MovePage   *PageMove `yaml:"move_page,omitempty"`
	Merge      string    `yaml:"merge,omitempty"`
	Save       *string   `yaml:"save,omitempty"` // empty saves over the opened file

	Expect *Expect `yaml:"expect,omitempty"`
}

// Drag is a press, a move and a release.
type Drag struct {
	From Point `yaml:"from"`
	To   Point `yaml:"to"`
}

// PageMove moves page From to index To.
type PageMove struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Expect checks the session at a point in the script. Unset fields are
// not checked.
type Expect struct {
	Annotations *int  `yaml:"annotations,omitempty"` // on all pages
	OnPage      *int  `yaml:"on_page,omitempty"`     // on the page shown
	Page        *int  `yaml:"page,omitempty"`
	Pages       *int  `yaml:"pages,omitempty"`
	Modified    *bool `yaml:"modified,omitempty"`
}

// Load reads a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Parse decodes a script. Relative paths resolve against the working
// directory.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, st := range s.Steps {
		if n := st.actions(); n != 1 {
			return nil, fmt.Errorf("step %d: want exactly one action, got %d", i+1, n)
		}
	}
	return &s, nil
}

// Resolve makes p relative to the script file's directory.
func (s *Script) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}

func (st Step) actions() int {
	n := 0
	for _, set := range []bool{
		st.Open != "", st.Mode != "", st.Zoom != nil, st.Page != nil,
		st.Text != nil, st.Image != "", st.Doodle != nil, st.Cancel,
		st.Press != nil, st.Move != nil, st.Release != nil, st.DoubleClick != nil, st.Drag != nil,
		st.DeletePage != nil, st.MovePage != nil, st.Merge != "", st.Save != nil,
		st.Expect != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
