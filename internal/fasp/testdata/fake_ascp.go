package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

// A stand-in transfer executable. It connects back to the management port
// given with -M and plays the scenario named by -scenario.
func main() {
	port := flag.Int("M", 0, "management port")
	scenario := flag.String("scenario", "done", "done|error|error-then-done|no-terminal|bad-line|silent|stubborn|hang|env")
	flag.Parse()

	switch *scenario {
	case "silent":
		waitSignal()
		return
	case "stubborn":
		signal.Ignore(syscall.SIGINT)
		time.Sleep(time.Minute)
		return
	}

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", *port))
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(2)
	}
	defer conn.Close()

	send := func(kv ...string) {
		var b strings.Builder
		b.WriteString("FASPMGR 2\n")
		for i := 0; i+1 < len(kv); i += 2 {
			fmt.Fprintf(&b, "%s: %s\n", kv[i], kv[i+1])
		}
		b.WriteString("\n")
		_, _ = conn.Write([]byte(b.String()))
	}

	switch *scenario {
	case "done":
		send("Type", "INIT", "SessionId", "s1")
		send("Type", "NOTIFICATION", "SessionId", "s1", "PreTransferBytes", "100")
		send("Type", "STATS", "SessionId", "s1", "Bytescont", "40", "Elapsedusec", "1000")
		send("Type", "STOP", "SessionId", "s1", "Size", "100")
		send("Type", "DONE", "SessionId", "s1", "Encryption", "Yes")
	case "error":
		send("Type", "INIT", "SessionId", "s1")
		send("Type", "ERROR", "SessionId", "s1", "Description", "Disk full", "Code", "12")
	case "error-then-done":
		send("Type", "ERROR", "SessionId", "s1", "Description", "transient", "Code", "5")
		send("Type", "DONE", "SessionId", "s1")
	case "no-terminal":
		send("Type", "STATS", "SessionId", "s1", "TransferBytes", "10")
	case "bad-line":
		_, _ = conn.Write([]byte("Type: STATS\n"))
	case "hang":
		send("Type", "INIT", "SessionId", "s1")
		waitSignal()
	case "env":
		send("Type", "DONE", "SessionId", "s1", "Env", os.Getenv("FAKE_ASCP_ENV"), "Args", strings.Join(os.Args[1:], " "))
	}
}

func waitSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ch:
	case <-time.After(time.Minute):
	}
}
