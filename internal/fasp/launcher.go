package fasp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// stderrTailBytes bounds how much child stderr is kept for diagnostics.
const stderrTailBytes = 4096

// ProcessSpec is the executable invocation handed to the launcher. It is not
// modified; the management port flag is prepended to a copy of Args.
type ProcessSpec struct {
	Path string
	Args []string
	Env  map[string]string
}

// Channel is the accepted management connection plus the child that owns the
// other end. It must be released with Close or Abort; both reap the child.
type Channel struct {
	Port int
	PID  int

	conn   net.Conn
	cmd    *exec.Cmd
	stderr *tailBuffer
	grace  time.Duration
	log    zerolog.Logger

	once    sync.Once
	exited  chan struct{}
	waitErr error
}

// Launch binds an ephemeral loopback listener, starts the child with
// "-M <port>" prepended to its arguments and waits for exactly one inbound
// connection. Every failure path interrupts and reaps the child before
// returning.
func Launch(ctx context.Context, spec ProcessSpec, cfg AgentConfig) (*Channel, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger.With().Str("component", "launcher").Logger()

	path, err := exec.LookPath(spec.Path)
	if err != nil {
		return nil, &LaunchError{Path: spec.Path, Err: err}
	}

	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP(cfg.ListenHost), Port: 0})
	if err != nil {
		return nil, &LaunchError{Path: path, Err: fmt.Errorf("bind management port: %w", err)}
	}
	port := ln.Addr().(*net.TCPAddr).Port

	args := make([]string, 0, len(spec.Args)+2)
	args = append(args, "-M", strconv.Itoa(port))
	args = append(args, spec.Args...)

	cmd := exec.Command(path, args...)
	cmd.Env = mergeEnv(os.Environ(), spec.Env)
	tail := &tailBuffer{max: stderrTailBytes}
	cmd.Stderr = tail
	if err := cmd.Start(); err != nil {
		_ = ln.Close()
		return nil, &LaunchError{Path: path, Err: err}
	}

	ch := &Channel{
		Port:   port,
		PID:    cmd.Process.Pid,
		cmd:    cmd,
		stderr: tail,
		grace:  cfg.InterruptGrace,
		log:    log,
		exited: make(chan struct{}),
	}
	go ch.reap()
	log.Info().Str("path", path).Int("pid", ch.PID).Int("port", port).Msg("spawned")
	cfg.Publisher.Publish(LifecycleEvent{Name: EventSpawnStart, PID: ch.PID, Fields: map[string]any{"port": port, "path": path}})

	type acceptResult struct {
		conn net.Conn
		err  error
	}
	res := make(chan acceptResult, 1)
	go func() {
		c, err := ln.Accept()
		res <- acceptResult{conn: c, err: err}
	}()
	// Stop accepting and discard a connection that raced with the close.
	abandon := func() {
		_ = ln.Close()
		if r := <-res; r.conn != nil {
			_ = r.conn.Close()
		}
	}

	timer := time.NewTimer(cfg.AcceptTimeout)
	defer timer.Stop()
	select {
	case r := <-res:
		_ = ln.Close()
		if r.err != nil {
			ch.Abort()
			return nil, &LaunchError{Path: path, PID: ch.PID, Err: fmt.Errorf("accept: %w", r.err)}
		}
		ch.conn = r.conn
	case <-timer.C:
		abandon()
		ch.Abort()
		log.Error().Int("pid", ch.PID).Dur("wait", cfg.AcceptTimeout).Msg("accept timeout")
		return nil, &AcceptTimeoutError{Port: port, PID: ch.PID, Wait: cfg.AcceptTimeout.String()}
	case <-ctx.Done():
		abandon()
		ch.Abort()
		return nil, &InterruptedError{Err: ctx.Err()}
	}

	log.Info().Int("pid", ch.PID).Str("remote", ch.conn.RemoteAddr().String()).Msg("management channel accepted")
	cfg.Publisher.Publish(LifecycleEvent{Name: EventChannelAccepted, PID: ch.PID, Fields: map[string]any{"port": port}})
	return ch, nil
}

// Read reads from the management connection.
func (c *Channel) Read(p []byte) (int, error) {
	if c.conn == nil {
		return 0, io.EOF
	}
	return c.conn.Read(p)
}

// Close releases the channel after a normal end of stream: the child gets a
// grace period to exit on its own before it is interrupted.
func (c *Channel) Close() error {
	c.release(false)
	return c.waitErr
}

// Abort releases the channel on an error or cancellation path: the child is
// interrupted immediately, then killed if it outlives the grace period.
func (c *Channel) Abort() {
	c.release(true)
}

// Exited reports whether the child has been reaped.
func (c *Channel) Exited() bool {
	select {
	case <-c.exited:
		return true
	default:
		return false
	}
}

// StderrTail returns the last bytes the child wrote to stderr.
func (c *Channel) StderrTail() string { return c.stderr.String() }

func (c *Channel) reap() {
	c.waitErr = c.cmd.Wait()
	close(c.exited)
}

func (c *Channel) release(interrupt bool) {
	c.once.Do(func() {
		if c.conn != nil {
			_ = c.conn.Close()
		}
		if !interrupt {
			select {
			case <-c.exited:
				return
			case <-time.After(c.grace):
			}
		}
		if c.Exited() {
			return
		}
		_ = c.cmd.Process.Signal(os.Interrupt)
		select {
		case <-c.exited:
		case <-time.After(c.grace):
			c.log.Warn().Int("pid", c.PID).Msg("child ignored interrupt, killing")
			_ = c.cmd.Process.Kill()
			<-c.exited
		}
		c.log.Debug().Int("pid", c.PID).Msg("child reaped")
	})
}

// mergeEnv overlays extra onto base in a stable order.
func mergeEnv(base []string, extra map[string]string) []string {
	out := append([]string(nil), base...)
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
