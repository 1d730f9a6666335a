package script

import (
	"errors"
	"fmt"
	"log/slog"

	"pdf-annotator/internal/annotation"
	"pdf-annotator/internal/logging"
	"pdf-annotator/internal/projector"
	"pdf-annotator/ui/canvas"
	"pdf-annotator/ui/mainwindow"
)

// ErrUnexpectedDialog is returned when a press opens a dialog that has no
// queued answer of the matching kind.
var ErrUnexpectedDialog = errors.New("no queued answer for dialog")

// answer is a queued dialog response. A nil value dismisses the dialog.
type answer struct {
	text    *annotation.TextFormat
	image   string
	drawing *annotation.Drawing
}

func (a answer) dismissed() bool {
	return a.text == nil && a.image == "" && a.drawing == nil
}

// Session drives a window from a script. It answers the canvas dialogs
// from the script's queued answers.
type Session struct {
	win    *mainwindow.Window
	script *Script
	logger *slog.Logger

	answers []answer
	err     error

	// Saves holds the report of every save step.
	Saves []projector.Report
}

// NewSession attaches a session to win and makes it the canvas prompter.
func NewSession(win *mainwindow.Window, s *Script, logger *slog.Logger) *Session {
	sess := &Session{win: win, script: s, logger: logging.OrDiscard(logger)}
	win.Canvas().SetPrompter(sess)
	return sess
}

func (s *Session) next(kind string) (answer, bool) {
	if len(s.answers) == 0 {
		s.err = fmt.Errorf("%s dialog: %w", kind, ErrUnexpectedDialog)
		return answer{}, false
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	if a.dismissed() {
		s.logger.Debug("dialog dismissed", "dialog", kind)
		return answer{}, false
	}
	return a, true
}

// PromptText implements canvas.Prompter. Fields the script leaves out are
// taken from initial.
func (s *Session) PromptText(initial annotation.TextFormat) (annotation.TextFormat, bool) {
	a, ok := s.next("text")
	if !ok {
		return annotation.TextFormat{}, false
	}
	if a.text == nil {
		s.err = fmt.Errorf("text dialog: %w", ErrUnexpectedDialog)
		return annotation.TextFormat{}, false
	}
	f := *a.text
	if f.FontFamily == "" {
		f.FontFamily = initial.FontFamily
	}
	if f.FontSize == 0 {
		f.FontSize = initial.FontSize
	}
	return f, true
}

// PromptImage implements canvas.Prompter.
func (s *Session) PromptImage() (string, bool) {
	a, ok := s.next("image")
	if !ok {
		return "", false
	}
	if a.image == "" {
		s.err = fmt.Errorf("image dialog: %w", ErrUnexpectedDialog)
		return "", false
	}
	return s.script.Resolve(a.image), true
}

// PromptDoodle implements canvas.Prompter. Strokes without a width use
// the pen width.
func (s *Session) PromptDoodle(pen canvas.Pen) (annotation.Drawing, bool) {
	a, ok := s.next("doodle")
	if !ok {
		return annotation.Drawing{}, false
	}
	if a.drawing == nil {
		s.err = fmt.Errorf("doodle dialog: %w", ErrUnexpectedDialog)
		return annotation.Drawing{}, false
	}
	d := annotation.Drawing{Strokes: make([]annotation.Stroke, len(a.drawing.Strokes))}
	for i, st := range a.drawing.Strokes {
		if st.Width == 0 {
			st.Width = pen.Width
		}
		d.Strokes[i] = st
	}
	return d, true
}

// Run replays every step, stopping at the first failure.
func (s *Session) Run() error {
	if s.script.Document != "" {
		if err := s.win.Open(s.script.Resolve(s.script.Document)); err != nil {
			return err
		}
	}
	if s.script.Zoom != 0 {
		s.win.Canvas().SetZoom(s.script.Zoom)
	}
	for i, st := range s.script.Steps {
		if err := s.step(st); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if s.err != nil {
			err := s.err
			s.err = nil
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if n := len(s.answers); n > 0 {
		s.logger.Warn("unused dialog answers", "count", n)
	}
	return nil
}

func (s *Session) step(st Step) error {
	c := s.win.Canvas()
	switch {
	case st.Open != "":
		return s.win.Open(s.script.Resolve(st.Open))
	case st.Mode != "":
		m, ok := canvas.ParseEditMode(st.Mode)
		if !ok {
			return fmt.Errorf("unknown mode %q", st.Mode)
		}
		s.win.SetMode(m)
	case st.Zoom != nil:
		c.SetZoom(*st.Zoom)
	case st.Page != nil:
		if *st.Page != c.Page() && !c.SetPage(*st.Page) {
			return fmt.Errorf("page %d out of range", *st.Page)
		}

	case st.Text != nil:
		s.answers = append(s.answers, answer{text: st.Text})
	case st.Image != "":
		s.answers = append(s.answers, answer{image: st.Image})
	case st.Doodle != nil:
		s.answers = append(s.answers, answer{drawing: st.Doodle})
	case st.Cancel:
		s.answers = append(s.answers, answer{})

	case st.Press != nil:
		_, err := c.Press(st.Press.point2D())
		return err
	case st.Move != nil:
		c.Move(st.Move.point2D())
	case st.Release != nil:
		c.Release(st.Release.point2D())
	case st.Drag != nil:
		if _, err := c.Press(st.Drag.From.point2D()); err != nil {
			return err
		}
		c.Move(st.Drag.To.point2D())
		c.Release(st.Drag.To.point2D())
	case st.DoubleClick != nil:
		_, err := c.DoubleClick(st.DoubleClick.point2D())
		return err

	case st.DeletePage != nil:
		return s.win.State().DeletePage(*st.DeletePage)
	case st.MovePage != nil:
		return s.win.State().MovePage(st.MovePage.From, st.MovePage.To)
	case st.Merge != "":
		return s.win.Merge(s.script.Resolve(st.Merge))
	case st.Save != nil:
		rep, err := s.win.Save(s.script.Resolve(*st.Save))
		if err != nil {
			return err
		}
		s.Saves = append(s.Saves, rep)
		for _, sk := range rep.Skipped {
			s.logger.Warn("annotation skipped", "page", sk.Page, "kind", sk.Kind, "error", sk.Err)
		}

	case st.Expect != nil:
		return s.check(*st.Expect)
	}
	return nil
}

func (s *Session) check(e Expect) error {
	state, c := s.win.State(), s.win.Canvas()
	var errs []error
	expectInt := func(name string, want *int, got int) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Errorf("%s: want %d, got %d", name, *want, got))
		}
	}
	expectInt("annotations", e.Annotations, state.Count())
	expectInt("on_page", e.OnPage, len(c.Annotations()))
	expectInt("page", e.Page, c.Page())
	expectInt("pages", e.Pages, state.PageCount())
	if e.Modified != nil && *e.Modified != state.Modified {
		errs = append(errs, fmt.Errorf("modified: want %t, got %t", *e.Modified, state.Modified))
	}
	return errors.Join(errs...)
}
