package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var titleStyle = lipgloss.NewStyle().Bold(true)

// Bar is a single-line terminal Display redrawn in place with '\r'.
type Bar struct {
	mu       sync.Mutex
	w        io.Writer
	model    bprogress.Model
	title    string
	total    int64
	sized    bool
	current  int64
	steps    int64
	started  time.Time
	now      func() time.Time
	finished bool
}

// NewBar returns a bar writing to w. A total <= 0 starts in activity mode.
func NewBar(w io.Writer, total int64) *Bar {
	return NewBarWithNow(w, total, time.Now)
}

// NewBarWithNow returns a bar with a custom time source (for tests).
func NewBarWithNow(w io.Writer, total int64, now func() time.Time) *Bar {
	if now == nil {
		now = time.Now
	}
	b := &Bar{
		w:       w,
		model:   bprogress.New(bprogress.WithWidth(30), bprogress.WithoutPercentage()),
		now:     now,
		started: now(),
	}
	if total > 0 {
		b.total = total
		b.sized = true
	}
	return b
}

func (b *Bar) SetTotal(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
	b.sized = true
	b.draw()
}

func (b *Bar) SetProgress(n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = n
	b.draw()
}

func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.steps++
	b.draw()
}

func (b *Bar) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
	b.draw()
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	if b.sized {
		b.current = b.total
	}
	b.draw()
	fmt.Fprintln(b.w)
	b.finished = true
}

// RateMbps returns the average rate since the bar was created.
func (b *Bar) RateMbps() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rateMbps()
}

func (b *Bar) rateMbps() float64 {
	elapsed := b.now().Sub(b.started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(b.current) / elapsed / MbpsDivisor
}

// Line renders the current state without the leading carriage return.
func (b *Bar) Line() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.line()
}

func (b *Bar) line() string {
	var parts []string
	if b.title != "" {
		parts = append(parts, titleStyle.Render(b.title))
	}
	if !b.sized {
		parts = append(parts, fmt.Sprintf("%s waiting for size (%d)", b.model.ViewAs(0), b.steps))
		return strings.Join(parts, " ")
	}
	pct := 0.0
	if b.total > 0 {
		pct = float64(b.current) / float64(b.total)
	}
	if pct > 1 {
		pct = 1
	}
	parts = append(parts,
		b.model.ViewAs(pct),
		fmt.Sprintf("%5.1f%%", pct*100),
		fmt.Sprintf("%.2f Mbps", b.rateMbps()),
	)
	if eta := b.eta(); eta > 0 {
		parts = append(parts, "ETA "+eta.Round(time.Second).String())
	}
	return strings.Join(parts, " ")
}

func (b *Bar) eta() time.Duration {
	elapsed := b.now().Sub(b.started).Seconds()
	if elapsed <= 0 || b.current <= 0 || b.current >= b.total {
		return 0
	}
	rate := float64(b.current) / elapsed
	return time.Duration(float64(b.total-b.current) / rate * float64(time.Second))
}

func (b *Bar) draw() {
	if b.finished {
		return
	}
	fmt.Fprintf(b.w, "\r%s", b.line())
}
