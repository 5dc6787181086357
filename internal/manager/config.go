package manager

import (
	"github.com/rs/zerolog"

	"faspmgr/internal/fasp"
)

// Default number of transfers allowed to run at once.
const defaultMaxActive = 8

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Executable is used when a request does not name one.
	Executable string
	// SearchPaths are searched for the executable before PATH.
	SearchPaths []string
	// MaxActive bounds concurrently running transfers; 0 uses the default.
	MaxActive int
	Agent     fasp.AgentConfig
	Logger    *zerolog.Logger
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.MaxActive <= 0 {
		c.MaxActive = defaultMaxActive
	}
	if c.Executable == "" {
		c.Executable = "ascp"
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	if c.Agent.Logger == nil {
		c.Agent.Logger = c.Logger
	}
	return c
}
