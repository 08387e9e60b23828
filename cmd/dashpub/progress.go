package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"dashpub/internal/dashboard"
	"dashpub/internal/generator"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
)

// progressPrinter reports one line per dashboard.
type progressPrinter struct {
	out      io.Writer
	colorize bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, colorize: shouldColorize(out)}
}

func (p *progressPrinter) Start(index, total int, target generator.Target) {
	fmt.Fprintf(p.out, "%s %s\n", p.paint(ansiBlue, counter(index, total)), target)
}

func (p *progressPrinter) Done(index, total int, result dashboard.Result) {
	status := p.paint(ansiGreen, "done")
	if failed := result.FailedFields(); failed > 0 {
		status = p.paint(ansiYellow, fmt.Sprintf("done, %d asset(s) kept as remote references", failed))
	}
	fmt.Fprintf(p.out, "%s %s: %s (%d data sources)\n", counter(index, total), result.Target, status, len(result.DataSources))
	for _, field := range result.Fields {
		if !field.Resolution.OK() {
			fmt.Fprintf(p.out, "    %s %s: %v\n", p.paint(ansiYellow, "!"), field.Field, field.Resolution.Err)
		}
	}
}

func (p *progressPrinter) Failed(index, total int, target generator.Target, err error) {
	fmt.Fprintf(p.out, "%s %s: %s\n", counter(index, total), target, p.paint(ansiRed, "failed: "+err.Error()))
}

func (p *progressPrinter) paint(color, value string) string {
	if !p.colorize || strings.TrimSpace(value) == "" {
		return value
	}
	return color + value + ansiReset
}

func counter(index, total int) string {
	width := len(fmt.Sprint(total))
	return fmt.Sprintf("[%*d/%d]", width, index+1, total)
}

func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
