package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"RootGrep/internal"
)

type printer struct {
	w    io.Writer
	path *color.Color
	line *color.Color
}

func newPrinter(w io.Writer, mode string) *printer {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
	return &printer{
		w:    w,
		path: color.New(color.FgMagenta),
		line: color.New(color.FgGreen),
	}
}

// Files prints one path per line.
func (p *printer) Files(files []string) {
	for _, f := range files {
		p.path.Fprintln(p.w, f)
	}
}

// Matches prints path:line:text in file order.
func (p *printer) Matches(res *internal.RunResult) {
	for _, f := range res.Files {
		for _, m := range res.Lines[f] {
			p.path.Fprint(p.w, f)
			fmt.Fprint(p.w, ":")
			p.line.Fprint(p.w, m.Line)
			fmt.Fprintf(p.w, ":%s\n", m.Text)
		}
	}
}
