package progress

import (
	"fmt"
	"io"

	"faspmgr/internal/fasp"
)

// Renderer shows progress for one transfer session. The display is created
// when the pre-transfer size arrives; until then each STATS prints a dot.
type Renderer struct {
	newDisplay func(total int64) Display
	out        io.Writer
	display    Display
	base       int64 // bytes of files already stopped
}

// NewRenderer returns a renderer creating displays with newDisplay and
// writing placeholder dots to out.
func NewRenderer(newDisplay func(total int64) Display, out io.Writer) *Renderer {
	return &Renderer{newDisplay: newDisplay, out: out}
}

// NewBarRenderer renders to a terminal Bar on w.
func NewBarRenderer(w io.Writer) *Renderer {
	return NewRenderer(func(total int64) Display { return NewBar(w, total) }, w)
}

// OnEvent implements fasp.Listener for FormatEnhanced registrations.
func (r *Renderer) OnEvent(e fasp.Event) error {
	if e.Format != fasp.FormatEnhanced {
		return nil
	}
	ev := e.Enhanced
	switch ev.Type() {
	case "NOTIFICATION":
		if total, ok := ev.Int("pre_transfer_bytes"); ok {
			r.display = r.newDisplay(total)
		}
	case "STOP":
		if n, ok := ev.Int("size"); ok {
			r.base += n
		}
	case "STATS":
		if r.display == nil {
			_, err := io.WriteString(r.out, ".")
			return err
		}
		if n, ok := ev.Int("bytes_cont"); ok {
			r.display.SetProgress(r.base + n)
		} else if n, ok := ev.Int("transfer_bytes"); ok {
			r.display.SetProgress(n)
		}
	case "DONE":
		if r.display == nil {
			_, err := fmt.Fprintln(r.out)
			return err
		}
		r.display.Finish()
		r.display = nil
	}
	return nil
}

// Active reports whether a display is currently shown.
func (r *Renderer) Active() bool { return r.display != nil }
