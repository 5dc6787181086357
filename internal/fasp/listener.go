package fasp

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Format selects the representation a listener receives.
type Format int

const (
	// FormatText delivers the raw accumulated frame text.
	FormatText Format = iota + 1
	// FormatStruct delivers the raw field mapping.
	FormatStruct
	// FormatEnhanced delivers the normalized event.
	FormatEnhanced
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatStruct:
		return "struct"
	case FormatEnhanced:
		return "enhanced"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat maps "text", "struct" or "enhanced" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText, nil
	case "struct":
		return FormatStruct, nil
	case "enhanced":
		return FormatEnhanced, nil
	}
	return 0, fmt.Errorf("unknown listener format %q", s)
}

func (f Format) valid() bool { return f >= FormatText && f <= FormatEnhanced }

// Event is the tagged value handed to listeners. Only the member matching
// Format is set.
type Event struct {
	Format   Format
	Text     string
	Fields   map[string]string
	Enhanced Enhanced
}

// Listener consumes events in the format chosen at registration.
// A returned error aborts delivery of the current frame.
type Listener interface {
	OnEvent(Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event) error

func (f ListenerFunc) OnEvent(e Event) error { return f(e) }

type binding struct {
	listener Listener
	format   Format
}

// Registry fans frames out to listeners in registration order. Registration
// is expected to finish before dispatch starts.
type Registry struct {
	bindings []binding
}

// Register adds a listener. Unknown formats are rejected here rather than at
// dispatch time.
func (r *Registry) Register(l Listener, format Format) error {
	if l == nil {
		return fmt.Errorf("nil listener")
	}
	if !format.valid() {
		return fmt.Errorf("unknown listener format %s", format)
	}
	r.bindings = append(r.bindings, binding{listener: l, format: format})
	return nil
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int { return len(r.bindings) }

// Dispatch delivers f to every listener. The normalized event is computed at
// most once and shared. The first listener error stops delivery.
func (r *Registry) Dispatch(f Frame) error {
	var enhanced Enhanced
	for _, b := range r.bindings {
		ev := Event{Format: b.format}
		switch b.format {
		case FormatText:
			ev.Text = f.Raw
		case FormatStruct:
			ev.Fields = f.Fields
		case FormatEnhanced:
			if enhanced == nil {
				enhanced = Normalize(f.Fields)
			}
			ev.Enhanced = enhanced
		}
		if err := b.listener.OnEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// Synchronized serializes calls into l. Use it when one listener, such as a
// multi-session aggregator, is registered with several concurrent transfers.
func Synchronized(l Listener) *SyncListener {
	return &SyncListener{next: l}
}

// SyncListener is a Listener guarded by a mutex.
type SyncListener struct {
	mu   sync.Mutex
	next Listener
}

func (s *SyncListener) OnEvent(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.OnEvent(e)
}

// Do runs fn while holding the listener lock, so state behind the wrapped
// listener can be read consistently.
func (s *SyncListener) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// WriterListener dumps events to w: raw text as-is, field maps as sorted
// "Key: Value" lines, enhanced events as one JSON object per line.
type WriterListener struct {
	W io.Writer
}

func (wl WriterListener) OnEvent(e Event) error {
	switch e.Format {
	case FormatText:
		_, err := io.WriteString(wl.W, e.Text)
		return err
	case FormatStruct:
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, e.Fields[k])
		}
		b.WriteByte('\n')
		_, err := io.WriteString(wl.W, b.String())
		return err
	case FormatEnhanced:
		return json.NewEncoder(wl.W).Encode(e.Enhanced)
	}
	return nil
}
