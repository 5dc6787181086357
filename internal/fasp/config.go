package fasp

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding AgentConfig fields are unset.
const (
	defaultAcceptTimeout  = 3 * time.Second
	defaultInterruptGrace = 2 * time.Second
	defaultListenHost     = "127.0.0.1"
)

// AgentConfig encapsulates all tunables for Agent construction.
type AgentConfig struct {
	// AcceptTimeout bounds the wait for the child to connect back.
	AcceptTimeout time.Duration
	// InterruptGrace is how long the release path waits after os.Interrupt
	// before killing the child. The reap that follows is always blocking.
	InterruptGrace time.Duration
	// ListenHost is the loopback address the management listener binds.
	ListenHost string
	Logger     *zerolog.Logger
	Publisher  EventPublisher
}

func (c AgentConfig) withDefaults() AgentConfig {
	if c.AcceptTimeout <= 0 {
		c.AcceptTimeout = defaultAcceptTimeout
	}
	if c.InterruptGrace <= 0 {
		c.InterruptGrace = defaultInterruptGrace
	}
	if c.ListenHost == "" {
		c.ListenHost = defaultListenHost
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
	return c
}
