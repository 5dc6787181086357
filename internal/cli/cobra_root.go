package cli

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"faspmgr/internal/config"
)

// ConfigEnv names the environment variable holding the default config path.
const ConfigEnv = "FASPMGR_CONFIG"

// app is the state shared by subcommands once persistent flags are applied.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

// Execute runs the command tree with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		root.PrintErrln("faspmgr:", err)
	}
	return ExitCode(err)
}

// NewRootCmd constructs the command tree writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, log: zerolog.Nop()}
	var configPath, logLevel, logFormat string

	root := &cobra.Command{
		Use:           "faspmgr",
		Short:         "Drive FASP transfers through their management channel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&configPath, "config", envStr(ConfigEnv, ""), "Config file (.yaml|.json|.toml); defaults to $"+ConfigEnv)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace|debug|info|warn|error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console|json")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var cfg config.Config
		if configPath != "" {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = c
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if logFormat != "" {
			cfg.LogFormat = logFormat
		}
		cfg = cfg.WithDefaults()
		if err := cfg.Validate(); err != nil {
			return err
		}
		l, err := newLogger(cfg.LogLevel, cfg.LogFormat, stderr)
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.log = l
		return nil
	}

	root.AddCommand(newRunCmd(a), newServeCmd(a))
	return root
}
