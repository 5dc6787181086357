package manager

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"faspmgr/internal/fasp"
	"faspmgr/internal/progress"
	"faspmgr/internal/resolver"
	"faspmgr/pkg/types"
)

type transfer struct {
	status types.TransferStatus
	cancel context.CancelFunc
	done   chan struct{}
}

type Manager struct {
	mu         sync.RWMutex
	agent      *fasp.Agent
	resolver   *resolver.Cache
	executable string
	maxActive  int
	log        zerolog.Logger

	transfers map[string]*transfer
	order     []string
	active    int
	started   int
	closed    bool
	bootTime  time.Time
	wg        sync.WaitGroup

	agg   *progress.Aggregator
	aggMu *fasp.SyncListener
	snap  *progress.SnapshotDisplay
	now   func() time.Time
	newID func() string
}

// NewWithConfig builds a Manager and registers the shared aggregator with
// its agent.
func NewWithConfig(cfg ManagerConfig) *Manager {
	cfg = cfg.withDefaults()
	log := cfg.Logger.With().Str("component", "manager").Logger()
	snap := progress.NewSnapshotDisplay()
	agg := progress.NewAggregator(snap, *cfg.Logger)
	m := &Manager{
		agent:      fasp.NewAgent(cfg.Agent),
		resolver:   resolver.New(cfg.SearchPaths),
		executable: cfg.Executable,
		maxActive:  cfg.MaxActive,
		log:        log,
		transfers:  make(map[string]*transfer),
		bootTime:   time.Now(),
		agg:        agg,
		aggMu:      fasp.Synchronized(agg),
		snap:       snap,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	// The aggregator is the first listener so status reflects an event
	// before any feed subscriber sees it.
	_ = m.agent.RegisterListener(m.aggMu, fasp.FormatEnhanced)
	return m
}

// RegisterListener adds a listener for transfers started afterwards.
func (m *Manager) RegisterListener(l fasp.Listener, format fasp.Format) error {
	return m.agent.RegisterListener(l, format)
}

// Ready reports whether the manager accepts new transfers.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed
}

// InvalidateExecutables drops cached executable lookups.
func (m *Manager) InvalidateExecutables() { m.resolver.Invalidate() }

// Start launches a transfer in the background and returns its initial status.
// A requested executable must be a bare name found in the configured search
// paths; anything else is rejected before spawning. Failures to resolve the
// configured executable are reported as *fasp.LaunchError.
func (m *Manager) Start(req types.TransferRequest) (types.TransferStatus, error) {
	path, err := m.executableFor(req.Executable)
	if err != nil {
		return types.TransferStatus{}, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return types.TransferStatus{}, ErrClosed
	}
	if m.active >= m.maxActive {
		m.mu.Unlock()
		return types.TransferStatus{}, tooBusyError{limit: m.maxActive}
	}
	ctx, cancel := context.WithCancel(context.Background())
	tr := &transfer{
		status: types.TransferStatus{
			ID:         m.newID(),
			State:      types.StateRunning,
			Executable: path,
			Args:       append([]string(nil), req.Args...),
			StartedAt:  m.now().Unix(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.transfers[tr.status.ID] = tr
	m.order = append(m.order, tr.status.ID)
	m.active++
	m.started++
	m.wg.Add(1)
	st := tr.status
	m.mu.Unlock()

	m.log.Info().Str("id", st.ID).Str("path", path).Strs("args", st.Args).Msg("transfer started")
	spec := fasp.ProcessSpec{Path: path, Args: st.Args, Env: req.Env}
	go m.run(ctx, tr, spec)
	return st, nil
}

func (m *Manager) executableFor(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == m.executable {
		path, err := m.resolver.Resolve(m.executable)
		if err != nil {
			return "", &fasp.LaunchError{Path: m.executable, Err: err}
		}
		return path, nil
	}
	path, err := m.resolver.Find(name)
	if err != nil {
		return "", invalidRequestError{msg: err.Error()}
	}
	return path, nil
}

func (m *Manager) run(ctx context.Context, tr *transfer, spec fasp.ProcessSpec) {
	defer m.wg.Done()
	defer close(tr.done)
	var sessions []string
	track := fasp.ListenerFunc(func(e fasp.Event) error {
		if id, ok := e.Enhanced.SessionID(); ok && !slices.Contains(sessions, id) {
			sessions = append(sessions, id)
		}
		return nil
	})
	err := m.agent.StartTransferWith(ctx, spec, track, fasp.FormatEnhanced)
	if err != nil && len(sessions) > 0 {
		m.aggMu.Do(func() { m.agg.MarkStale(sessions...) })
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tr.cancel()
	tr.status.Sessions = sessions
	m.active--
	tr.status.EndedAt = m.now().Unix()
	switch {
	case err == nil:
		tr.status.State = types.StateDone
	case fasp.IsInterrupted(err):
		tr.status.State = types.StateInterrupted
		tr.status.Error = err.Error()
	default:
		tr.status.State = types.StateFailed
		tr.status.Error = err.Error()
		if te, ok := fasp.AsTransfer(err); ok {
			tr.status.Code = te.Code
		}
	}
	m.log.Info().Str("id", tr.status.ID).Str("state", tr.status.State).Msg("transfer finished")
}

// Get returns the status of one transfer.
func (m *Manager) Get(id string) (types.TransferStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tr, ok := m.transfers[id]
	if !ok {
		return types.TransferStatus{}, ErrTransferNotFound(id)
	}
	return copyStatus(tr.status), nil
}

// List returns every known transfer in start order.
func (m *Manager) List() []types.TransferStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.TransferStatus, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, copyStatus(m.transfers[id].status))
	}
	return out
}

// Cancel interrupts a running transfer. Cancelling a finished transfer is a
// no-op.
func (m *Manager) Cancel(id string) error {
	m.mu.RLock()
	tr, ok := m.transfers[id]
	m.mu.RUnlock()
	if !ok {
		return ErrTransferNotFound(id)
	}
	tr.cancel()
	return nil
}

// Wait blocks until the transfer ends or ctx is done.
func (m *Manager) Wait(ctx context.Context, id string) (types.TransferStatus, error) {
	m.mu.RLock()
	tr, ok := m.transfers[id]
	m.mu.RUnlock()
	if !ok {
		return types.TransferStatus{}, ErrTransferNotFound(id)
	}
	select {
	case <-tr.done:
		return m.Get(id)
	case <-ctx.Done():
		return types.TransferStatus{}, ctx.Err()
	}
}

// Close stops accepting transfers, interrupts running ones and waits for
// every child to be reaped or ctx to end.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	for _, tr := range m.transfers {
		tr.cancel()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for transfers: %w", ctx.Err())
	}
}

func copyStatus(s types.TransferStatus) types.TransferStatus {
	s.Args = append([]string(nil), s.Args...)
	s.Sessions = append([]string(nil), s.Sessions...)
	return s
}
