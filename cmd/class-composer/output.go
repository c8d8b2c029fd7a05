package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"class-composer/internal/config"
	"class-composer/internal/diagnostic"
)

// printer writes diagnostics, colored when the destination allows it.
type printer struct {
	w     io.Writer
	err   *color.Color
	warn  *color.Color
	info  *color.Color
	faint *color.Color
	ok    *color.Color
}

func newPrinter(w io.Writer, mode string) *printer {
	p := &printer{
		w:     w,
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		info:  color.New(color.FgCyan),
		faint: color.New(color.Faint),
		ok:    color.New(color.FgGreen, color.Bold),
	}

	enable := useColor(w, mode)
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.faint, p.ok} {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

// useColor resolves auto against NO_COLOR and whether w is a terminal.
func useColor(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) severity(s diagnostic.DiagnosticSeverity) string {
	switch s {
	case diagnostic.DiagnosticError:
		return p.err.Sprint(s.String())
	case diagnostic.DiagnosticWarning:
		return p.warn.Sprint(s.String())
	default:
		return p.info.Sprint(s.String())
	}
}

// diagnostics prints one line per diagnostic, errors first.
func (p *printer) diagnostics(file string, diags *diagnostic.Diagnostics) {
	if diags == nil {
		return
	}

	for _, d := range diags.All() {
		fmt.Fprintf(p.w, "%s: %s: %s\n", p.faint.Sprint(file), p.severity(d.Severity), d.String())
	}
}

// summary prints the totals line.
func (p *printer) summary(files, errors, warnings int) {
	status := p.ok.Sprint("ok")
	if errors > 0 {
		status = p.err.Sprint("failed")
	}

	fmt.Fprintf(p.w, "%s: %d file(s), %d error(s), %d warning(s)\n", status, files, errors, warnings)
}
