package fasp

import "sync"

// Event names published over the lifetime of one transfer.
const (
	EventSpawnStart      = "spawn_start"
	EventChannelAccepted = "channel_accepted"
	EventFrame           = "frame"
	EventTransferDone    = "transfer_done"
	EventTransferError   = "transfer_error"
	EventChannelClosed   = "channel_closed"
)

// LifecycleEvent is an agent-side lifecycle notification, distinct from the
// frames the child emits. Fields carry small key/values such as pid and port.
type LifecycleEvent struct {
	Name   string
	PID    int
	Fields map[string]any
}

// EventPublisher receives lifecycle events. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(LifecycleEvent)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(LifecycleEvent) {}

// MemoryPublisher stores events in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []LifecycleEvent
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e LifecycleEvent) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []LifecycleEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]LifecycleEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Names returns the published event names in order.
func (p *MemoryPublisher) Names() []string {
	evts := p.Events()
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.Name
	}
	return out
}
