package progress

import (
	"fmt"
	"io"
	"sync"
)

// Lines is a Display for non-terminal output: it appends one line each time
// the whole-number percentage changes instead of redrawing in place.
type Lines struct {
	mu      sync.Mutex
	w       io.Writer
	title   string
	total   int64
	sized   bool
	current int64
	lastPct int
	steps   int64
}

// NewLines returns a line display writing to w. A total <= 0 starts unsized.
func NewLines(w io.Writer, total int64) *Lines {
	l := &Lines{w: w, lastPct: -1}
	if total > 0 {
		l.total = total
		l.sized = true
	}
	return l
}

func (l *Lines) SetTotal(total int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total = total
	l.sized = true
	l.lastPct = -1
	l.emit()
}

func (l *Lines) SetProgress(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = n
	l.emit()
}

func (l *Lines) Increment() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps++
}

func (l *Lines) SetTitle(title string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.title = title
}

func (l *Lines) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.sized {
		return
	}
	l.current = l.total
	if l.lastPct != 100 {
		l.write(100)
	}
}

func (l *Lines) emit() {
	if !l.sized || l.total <= 0 {
		return
	}
	pct := int(l.current * 100 / l.total)
	if pct > 100 {
		pct = 100
	}
	if pct == l.lastPct {
		return
	}
	l.write(pct)
}

func (l *Lines) write(pct int) {
	l.lastPct = pct
	prefix := ""
	if l.title != "" {
		prefix = l.title + " "
	}
	fmt.Fprintf(l.w, "%s%d/%d bytes (%d%%)\n", prefix, l.current, l.total, pct)
}

// NewLinesRenderer renders to a Lines display on w.
func NewLinesRenderer(w io.Writer) *Renderer {
	return NewRenderer(func(total int64) Display { return NewLines(w, total) }, w)
}
