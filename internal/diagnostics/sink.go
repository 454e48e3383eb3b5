package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/pytype/internal/token"
)

// CollectingSink accumulates diagnostics in memory, deduplicated by
// position+rule (spec.md §8's idempotence property: re-reporting the
// same finding on a later fixpoint pass must not grow the output) and
// filtered by Settings so a rule configured to SeverityNone never
// appears. This is the sink tests and the incremental cache use.
type CollectingSink struct {
	Settings   *Settings
	Path       string
	seen       map[string]bool
	items      []Diagnostic
	unusedCode []UnusedCodeHint
}

// NewCollectingSink creates a sink for one file's analysis.
func NewCollectingSink(path string, settings *Settings) *CollectingSink {
	return &CollectingSink{Settings: settings, Path: path, seen: make(map[string]bool)}
}

func (s *CollectingSink) Report(d Diagnostic) {
	if d.Path == "" {
		d.Path = s.Path
	}
	d.Severity = s.Settings.Severity(d.Rule)
	if d.Severity == SeverityNone {
		return
	}
	key := d.dedupeKey()
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.items = append(s.items, d)
}

// Diagnostics returns every reported finding in deterministic order.
func (s *CollectingSink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	Sort(out)
	return out
}

// AddUnusedCode records a dead-code marker on the separate channel
// spec.md §6 names; unlike Report, it carries no rule or severity to
// filter on, so every call is kept as-is.
func (s *CollectingSink) AddUnusedCode(message string, r token.Range) {
	s.unusedCode = append(s.unusedCode, UnusedCodeHint{Message: message, Path: s.Path, Range: r})
}

// UnusedCode returns every dead-code marker reported so far.
func (s *CollectingSink) UnusedCode() []UnusedCodeHint {
	out := make([]UnusedCodeHint, len(s.unusedCode))
	copy(out, s.unusedCode)
	return out
}

// ConsoleSink writes diagnostics to a writer as they are reported,
// coloring severities when the writer is a terminal. Grounded on the
// teacher's use of github.com/mattn/go-isatty to gate ANSI color codes
// on CLI output only when stdout is actually a tty.
type ConsoleSink struct {
	inner  *CollectingSink
	w      io.Writer
	color  bool
}

// NewConsoleSink wraps w (typically os.Stdout) with color auto-detected
// via go-isatty; pass an *os.File for color detection to work, any other
// io.Writer disables color.
func NewConsoleSink(path string, settings *Settings, w io.Writer) *ConsoleSink {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &ConsoleSink{inner: NewCollectingSink(path, settings), w: w, color: color}
}

func (c *ConsoleSink) Report(d Diagnostic) {
	before := len(c.inner.items)
	c.inner.Report(d)
	if len(c.inner.items) == before {
		return // deduplicated or filtered out, nothing to print
	}
	printed := c.inner.items[len(c.inner.items)-1]
	fmt.Fprintln(c.w, c.format(printed))
}

func (c *ConsoleSink) format(d Diagnostic) string {
	if !c.color {
		return d.String()
	}
	code := severityColorCode(d.Severity)
	return fmt.Sprintf("\x1b[%sm%s\x1b[0m", code, d.String())
}

func severityColorCode(s Severity) string {
	switch s {
	case SeverityError:
		return "31"
	case SeverityWarning:
		return "33"
	case SeverityInformation:
		return "36"
	default:
		return "0"
	}
}

// AddUnusedCode forwards to the underlying CollectingSink and prints the
// hint dimmed (rather than colored by severity, since it has none).
func (c *ConsoleSink) AddUnusedCode(message string, r token.Range) {
	c.inner.AddUnusedCode(message, r)
	line := fmt.Sprintf("%s:%s: %s (unused)", c.inner.Path, r.Start.String(), message)
	if c.color {
		line = fmt.Sprintf("\x1b[2m%s\x1b[0m", line)
	}
	fmt.Fprintln(c.w, line)
}

// Diagnostics returns everything reported so far, sorted.
func (c *ConsoleSink) Diagnostics() []Diagnostic { return c.inner.Diagnostics() }

// UnusedCode returns every dead-code marker reported so far.
func (c *ConsoleSink) UnusedCode() []UnusedCodeHint { return c.inner.UnusedCode() }
