package fasp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Agent runs transfers and fans their management events out to listeners.
// Independent transfers may run concurrently; each gets its own process,
// channel and parser.
type Agent struct {
	cfg AgentConfig
	log zerolog.Logger

	mu        sync.Mutex
	listeners Registry
}

// NewAgent constructs an Agent; unset config fields take package defaults.
func NewAgent(cfg AgentConfig) *Agent {
	cfg = cfg.withDefaults()
	return &Agent{cfg: cfg, log: cfg.Logger.With().Str("component", "agent").Logger()}
}

// RegisterListener adds a listener for transfers started afterwards.
func (a *Agent) RegisterListener(l Listener, format Format) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listeners.Register(l, format)
}

// StartTransfer launches spec and blocks until its management channel closes.
// It returns nil after a DONE frame, a *TransferError after an ERROR frame,
// or the launch/protocol/interrupt error that ended the session. The child is
// reaped before StartTransfer returns.
func (a *Agent) StartTransfer(ctx context.Context, spec ProcessSpec) error {
	return a.run(ctx, spec, a.snapshot())
}

// StartTransferWith is StartTransfer with one extra listener that sees only
// this transfer's events, after the agent's own listeners.
func (a *Agent) StartTransferWith(ctx context.Context, spec ProcessSpec, l Listener, format Format) error {
	reg := a.snapshot()
	if err := reg.Register(l, format); err != nil {
		return err
	}
	return a.run(ctx, spec, reg)
}

func (a *Agent) run(ctx context.Context, spec ProcessSpec, reg *Registry) error {
	started := time.Now()
	ch, err := Launch(ctx, spec, a.cfg)
	if err != nil {
		transfersTotal.WithLabelValues(resultLabel(err)).Inc()
		return err
	}
	acceptDuration.Observe(time.Since(started).Seconds())
	transfersActive.Inc()
	defer transfersActive.Dec()

	log := a.log.With().Int("pid", ch.PID).Int("port", ch.Port).Logger()
	stop := context.AfterFunc(ctx, ch.Abort)
	defer stop()

	parser := NewParser(log)
	var listenerErr error
	err = Run(ch, parser, func(f Frame) error {
		typ := f.Type()
		framesTotal.WithLabelValues(typ).Inc()
		log.Debug().Str("type", typ).Int("fields", len(f.Fields)).Msg("frame")
		a.cfg.Publisher.Publish(LifecycleEvent{Name: EventFrame, PID: ch.PID, Fields: map[string]any{"type": typ}})
		listenerErr = reg.Dispatch(f)
		return listenerErr
	})
	if err != nil && ctx.Err() != nil && endedByAbort(err, listenerErr) {
		err = &InterruptedError{Err: ctx.Err()}
	}

	if err != nil {
		ch.Abort()
	} else if werr := ch.Close(); werr != nil {
		log.Debug().Err(werr).Msg("child exit status")
	}
	a.cfg.Publisher.Publish(LifecycleEvent{Name: EventChannelClosed, PID: ch.PID})

	transfersTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		if tail := ch.StderrTail(); tail != "" {
			log.Debug().Str("stderr", tail).Msg("child stderr")
		}
		log.Error().Err(err).Msg("transfer failed")
		a.cfg.Publisher.Publish(LifecycleEvent{Name: EventTransferError, PID: ch.PID, Fields: map[string]any{"error": err.Error()}})
		return err
	}
	log.Info().Dur("elapsed", time.Since(started)).Msg("transfer done")
	a.cfg.Publisher.Publish(LifecycleEvent{Name: EventTransferDone, PID: ch.PID})
	return nil
}

// snapshot copies the listener set so registration during a transfer does
// not affect it.
func (a *Agent) snapshot() *Registry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &Registry{bindings: append([]binding(nil), a.listeners.bindings...)}
}

// endedByAbort reports whether err is what Run yields once Abort closed the
// connection under it: a read error, or end of stream before a terminal
// frame. Listener, protocol and transfer errors keep their own cause.
func endedByAbort(err, listenerErr error) bool {
	if listenerErr != nil && errors.Is(err, listenerErr) {
		return false
	}
	if IsProtocol(err) {
		return false
	}
	if _, ok := AsTransfer(err); ok {
		return false
	}
	return true
}
