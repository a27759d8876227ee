package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndrewLester/ntpc/internal/rpc"
	"github.com/AndrewLester/ntpc/pkg/ntpc"
)

const (
	appName      = "ntpc"
	versionMajor = 1
	versionMinor = 0
)

// buildMode is replaced with -ldflags "-X main.buildMode=debug".
var buildMode = "release"

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	opts, err := parseOptions(os.Args[1:], ntpc.DefaultConfigPath, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(exitSuccess)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}

	switch {
	case opts.version:
		printVersion(os.Stdout)
	case opts.status:
		handleStatusCommand(opts.config.Socket)
	case opts.query != "":
		handleQueryCommand(opts.query, opts.config.Port, opts.config.Count)
	case opts.daemon:
		os.Exit(handleDaemon(opts.config))
	default:
		os.Exit(newRunner(opts.config, nil).run())
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s version %d.%d (%s)\n", appName, versionMajor, versionMinor, buildMode)
}

// refresher is the part of ntpc.Client the refresh loop needs.
type refresher interface {
	Refresh(autowait bool) (int64, error)
	LastUpdate() time.Time
	UpdateInterval() time.Duration
}

type runner struct {
	config ntpc.Config
	status *rpc.StatusServer

	stdout   io.Writer
	stderr   io.Writer
	setClock func(epoch int64) error
	cleanup  []func()
}

func newRunner(config ntpc.Config, status *rpc.StatusServer) *runner {
	r := &runner{
		config:   config,
		status:   status,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		setClock: ntpc.SetSystemTime,
	}
	if config.Slew {
		r.setClock = ntpc.AdjustSystemTime
	}
	return r
}

// run refreshes once, count times or forever and returns the exit code of
// the last cycle.
func (r *runner) run() int {
	socket := ntpc.NewUDPSocket()
	socket.TOS = r.config.TOS
	client := ntpc.NewClient(r.config.Host, r.config.Port, socket)
	defer client.Close()

	r.cleanup = append(r.cleanup, func() { client.Close() })
	r.handleSignals()

	return r.loop(client)
}

func (r *runner) loop(client refresher) int {
	loopWait := r.config.Continuous || r.config.Count != 0
	ret := exitFailure
	for cycle := uint32(1); ; cycle++ {
		ret = r.processRefresh(client, loopWait, ret)
		if !loopWait || (r.config.Count != 0 && cycle >= r.config.Count) {
			return ret
		}
	}
}

func (r *runner) processRefresh(client refresher, loopWait bool, ret int) int {
	epoch, err := client.Refresh(loopWait)
	result := ntpc.ResultOf(err)

	if r.status != nil && result != ntpc.Timeout {
		r.status.Record(epoch, client.LastUpdate(), client.UpdateInterval(), err)
	}

	switch result {
	case ntpc.Timeout:
		return ret
	case ntpc.Error:
		debug("Refresh failed:", err)
		fmt.Fprintln(r.stderr, "Unable to retrieve date and time from NTP server!")
		return exitFailure
	}

	fmt.Fprintln(r.stdout, "Network date/time:", time.Unix(epoch, 0).Format(time.DateTime))
	if r.config.Update {
		if err := r.setClock(epoch); err != nil {
			printSystemError(r.stderr, "Unable to change system date and time", err)
			return ret
		}
	}
	return exitSuccess
}

// handleSignals ends the process with a zero exit code on SIGINT or SIGTERM.
func (r *runner) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		for _, cleanup := range r.cleanup {
			cleanup()
		}
		os.Exit(exitSuccess)
	}()
}

func printSystemError(w io.Writer, title string, err error) {
	code := -1
	message := err.Error()

	var errno syscall.Errno
	if errors.As(err, &errno) {
		code = int(errno)
		switch errno {
		case syscall.EFAULT:
			message = "Pointer outside the accessible address space."
		case syscall.EINVAL:
			message = "Timezone (or something else) is invalid."
		case syscall.EPERM:
			message = "The calling process has insufficient privilege to call settimeofday(); under Linux the CAP_SYS_TIME capability is required."
		}
	}
	fmt.Fprintf(w, "%s, error: (%d) %s\n", title, code, message)
}

func debug(v ...any) {
	if os.Getenv("DEBUG") == "1" {
		log.Println(v...)
	}
}
