package progress

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"faspmgr/internal/fasp"
)

// Session is the per-session state behind the aggregate.
type Session struct {
	ID         string `json:"id"`
	Cumulative int64  `json:"cumulative"` // bytes of completed files
	JobSize    int64  `json:"job_size"`
	Sized      bool   `json:"sized"` // JobSize was reported
	Current    int64  `json:"current"`
	// Stale is set when the transfer owning the session ended without DONE.
	Stale bool `json:"stale"`
}

// Aggregator sums progress over every live session. It is not safe for
// concurrent use; wrap it with fasp.Synchronized when several transfers
// share it.
type Aggregator struct {
	display  Display // may be nil; updates are then skipped
	log      zerolog.Logger
	sessions map[string]*Session
	title    string
	steps    int64
}

// NewAggregator returns an aggregator driving display, which may be nil.
func NewAggregator(display Display, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		display:  display,
		log:      log.With().Str("component", "aggregator").Logger(),
		sessions: make(map[string]*Session),
	}
}

// SetDisplay attaches a display after construction.
func (a *Aggregator) SetDisplay(d Display) { a.display = d }

// OnEvent implements fasp.Listener for FormatEnhanced registrations.
func (a *Aggregator) OnEvent(e fasp.Event) error {
	if e.Format != fasp.FormatEnhanced {
		return nil
	}
	ev := e.Enhanced
	id, ok := ev.SessionID()
	if !ok {
		a.log.Error().Str("type", ev.Type()).Msg("internal error: event without session_id, dropped")
		return nil
	}
	s := a.sessions[id]
	if s == nil {
		s = &Session{ID: id}
		a.sessions[id] = s
	}
	switch typ := ev.Type(); typ {
	case "INIT", "SESSION":
	case "NOTIFICATION":
		if n, ok := ev.Int("pre_transfer_bytes"); ok {
			s.JobSize = n
			s.Sized = true
			a.pushTotal()
		}
	case "STATS":
		if _, known := a.Total(); known {
			if n, ok := ev.Int("bytes_cont"); ok {
				s.Current = s.Cumulative + n
			} else {
				n, _ := ev.Int("transfer_bytes")
				s.Current = n
			}
			a.pushProgress()
		} else {
			a.steps++
			if a.display != nil {
				a.display.Increment()
			}
		}
	case "STOP":
		if n, ok := ev.Int("size"); ok {
			s.Cumulative += n
		}
	case "DONE":
		delete(a.sessions, id)
		if _, known := a.Total(); known {
			a.pushTotal()
		} else if a.display != nil {
			// No sized session is left.
			a.display.SetTotal(0)
		}
		a.pushProgress()
	default:
		a.log.Debug().Str("type", typ).Str("session_id", id).Msg("ignored event type")
	}
	a.updateTitle()
	return nil
}

// Total sums job sizes over live sessions. It is known once any live session
// reported a size.
func (a *Aggregator) Total() (int64, bool) {
	var total int64
	known := false
	for _, s := range a.sessions {
		if s.Sized {
			total += s.JobSize
			known = true
		}
	}
	return total, known
}

// Progress sums the current position over live sessions. A session's
// position already includes the bytes of its completed files.
func (a *Aggregator) Progress() int64 {
	var p int64
	for _, s := range a.sessions {
		p += s.Current
	}
	return p
}

// MarkStale flags live sessions whose transfer ended without a DONE frame.
// They stay in the aggregate; only DONE removes a session.
func (a *Aggregator) MarkStale(ids ...string) {
	for _, id := range ids {
		if s := a.sessions[id]; s != nil {
			s.Stale = true
		}
	}
}

// Steps returns the activity counter advanced while no total was known.
func (a *Aggregator) Steps() int64 { return a.steps }

// Title returns the current display title.
func (a *Aggregator) Title() string { return a.title }

// Sessions returns a copy of the live sessions ordered by id.
func (a *Aggregator) Sessions() []Session {
	out := make([]Session, 0, len(a.sessions))
	for _, s := range a.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (a *Aggregator) pushTotal() {
	if a.display == nil {
		return
	}
	if total, known := a.Total(); known {
		a.display.SetTotal(total)
	}
}

func (a *Aggregator) pushProgress() {
	if a.display == nil {
		return
	}
	a.display.SetProgress(a.Progress())
}

func (a *Aggregator) updateTitle() {
	title := ""
	if n := len(a.sessions); n >= 2 {
		title = fmt.Sprintf("multi=%d", n)
	}
	if title == a.title {
		return
	}
	a.title = title
	if a.display != nil {
		a.display.SetTitle(title)
	}
}
