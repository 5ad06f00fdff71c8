package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/huangsam/codetrend/internal/contract"
)

// progressBarWidth is the number of cells in the rendered bar.
const progressBarWidth = 30

// Progress tracks completed revision x collector units of a build.
// On a terminal it redraws a single status line; elsewhere it stays silent
// apart from debug lines.
type Progress struct {
	mu    sync.Mutex
	out   io.Writer
	tty   bool
	total int
	done  int
	label string
}

// NewProgress creates a progress indicator for total units written to stderr.
func NewProgress(total int) *Progress {
	return newProgress(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), total)
}

func newProgress(out io.Writer, tty bool, total int) *Progress {
	return &Progress{out: out, tty: tty, total: total}
}

// SetLabel changes the text shown next to the bar, usually the revision in flight.
func (p *Progress) SetLabel(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label = label
	p.render()
}

// Advance marks n more units as done.
func (p *Progress) Advance(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = min(p.done+n, p.total)
	if !p.tty {
		contract.LogDebug("Progress %d/%d %s", p.done, p.total, p.label)
		return
	}
	p.render()
}

// Done returns the number of completed units.
func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Finish terminates the status line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty && p.total > 0 {
		_, _ = fmt.Fprintln(p.out)
	}
}

func (p *Progress) render() {
	if !p.tty || p.total == 0 {
		return
	}
	filled := p.done * progressBarWidth / p.total
	bar := strings.Repeat("#", filled) + strings.Repeat("-", progressBarWidth-filled)
	_, _ = fmt.Fprintf(p.out, "\r[%s] %d/%d %s\033[K", bar, p.done, p.total, p.label)
}
