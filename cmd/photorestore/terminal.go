package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const progressBarWidth = 30

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorize(s, color string, enabled bool) string {
	if !enabled || color == "" {
		return s
	}
	return color + s + ansiReset
}

// progressPrinter redraws a single progress line per phase on a terminal.
// It stays silent when the writer is not a terminal so piped output and log
// files only carry the sampled progress log lines.
type progressPrinter struct {
	w       io.Writer
	enabled bool

	mu     sync.Mutex
	active string
}

func newProgressPrinter(w io.Writer, want bool) *progressPrinter {
	return &progressPrinter{w: w, enabled: want && isTerminal(w)}
}

func (p *progressPrinter) Update(phase string, completed, total int) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != "" && p.active != phase {
		fmt.Fprintln(p.w)
	}
	p.active = phase
	fmt.Fprintf(p.w, "\r%s", progressLine(phase, completed, total))
	if completed >= total {
		fmt.Fprintln(p.w)
		p.active = ""
	}
}

// Done terminates an unfinished progress line.
func (p *progressPrinter) Done() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != "" {
		fmt.Fprintln(p.w)
		p.active = ""
	}
}

func progressLine(phase string, completed, total int) string {
	filled := progressBarWidth
	percent := 100.0
	if total > 0 {
		filled = completed * progressBarWidth / total
		percent = float64(completed) * 100 / float64(total)
	}
	filled = min(max(filled, 0), progressBarWidth)
	bar := strings.Repeat("#", filled) + strings.Repeat(".", progressBarWidth-filled)
	return fmt.Sprintf("%-16s [%s] %5.1f%% (%d/%d)", phase, bar, percent, completed, total)
}
