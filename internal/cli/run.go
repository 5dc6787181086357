package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"faspmgr/internal/fasp"
	"faspmgr/internal/progress"
	"faspmgr/internal/resolver"
)

type runOptions struct {
	executable string
	progress   string
	events     string
	env        map[string]string
	acceptMS   int
	graceMS    int
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run [flags] -- <transfer arguments>",
		Short: "Run one transfer in the foreground",
		Example: "  faspmgr run -- -l 100m /data/file.bin user@host:/incoming\n" +
			"  faspmgr run --progress multi --events enhanced -- -P 33001 src dst",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			agent, spec, err := a.prepareRun(cmd, o, args)
			if err != nil {
				return err
			}
			return agent.StartTransfer(ctx, spec)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.executable, "executable", "", "Transfer executable name or path (default from config)")
	f.StringVar(&o.progress, "progress", "", "Progress display: bar|plain|multi|none (default from config)")
	f.StringVar(&o.events, "events", "", "Dump events to stdout: text|struct|enhanced")
	f.StringToStringVar(&o.env, "env", nil, "Extra environment for the transfer (KEY=VALUE)")
	f.IntVar(&o.acceptMS, "accept-timeout-ms", 0, "Wait bound for the management connection")
	f.IntVar(&o.graceMS, "interrupt-grace-ms", 0, "Grace period between interrupt and kill")
	return cmd
}

// prepareRun resolves the executable and wires listeners for one transfer.
func (a *app) prepareRun(cmd *cobra.Command, o runOptions, args []string) (*fasp.Agent, fasp.ProcessSpec, error) {
	cfg := a.cfg
	if o.executable != "" {
		cfg.Executable = o.executable
	}
	if o.progress != "" {
		cfg.Progress = o.progress
	}
	if o.acceptMS > 0 {
		cfg.AcceptTimeoutMS = o.acceptMS
	}
	if o.graceMS > 0 {
		cfg.InterruptGraceMS = o.graceMS
	}
	if err := cfg.Validate(); err != nil {
		return nil, fasp.ProcessSpec{}, err
	}

	path, err := resolver.New(cfg.SearchPaths).Resolve(cfg.Executable)
	if err != nil {
		return nil, fasp.ProcessSpec{}, &fasp.LaunchError{Path: cfg.Executable, Err: err}
	}

	agent := fasp.NewAgent(fasp.AgentConfig{
		AcceptTimeout:  cfg.AcceptTimeout(),
		InterruptGrace: cfg.InterruptGrace(),
		Logger:         &a.log,
	})
	if o.events != "" {
		format, err := fasp.ParseFormat(o.events)
		if err != nil {
			return nil, fasp.ProcessSpec{}, err
		}
		if err := agent.RegisterListener(fasp.WriterListener{W: cmd.OutOrStdout()}, format); err != nil {
			return nil, fasp.ProcessSpec{}, err
		}
	}
	if l := a.progressListener(cfg.Progress, cmd); l != nil {
		if err := agent.RegisterListener(l, fasp.FormatEnhanced); err != nil {
			return nil, fasp.ProcessSpec{}, err
		}
	}
	return agent, fasp.ProcessSpec{Path: path, Args: args, Env: o.env}, nil
}

func (a *app) progressListener(mode string, cmd *cobra.Command) fasp.Listener {
	w := cmd.ErrOrStderr()
	switch mode {
	case "bar":
		return progress.NewBarRenderer(w)
	case "plain":
		return progress.NewLinesRenderer(w)
	case "multi":
		return progress.NewAggregator(progress.NewBar(w, 0), a.log)
	}
	return nil
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := fasp.AsTransfer(err); ok {
		return 1
	}
	switch {
	case fasp.IsInterrupted(err):
		return 130
	case fasp.IsLaunch(err), fasp.IsAcceptTimeout(err):
		return 3
	case fasp.IsProtocol(err), fasp.IsInternal(err):
		return 4
	}
	return 2
}
