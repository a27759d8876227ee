package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/AndrewLester/ntpc/internal/rpc"
	"github.com/AndrewLester/ntpc/pkg/ntpc"
	"github.com/sevlyar/go-daemon"
)

const daemonName = "ntpcd"

var daemonCtx = &daemon.Context{
	PidFileName: fmt.Sprintf("/var/run/%s.pid", daemonName),
	PidFilePerm: 0644,
	LogFileName: fmt.Sprintf("/var/log/%s.log", daemonName),
	LogFilePerm: 0640,
	WorkDir:     "./",
	Umask:       027,
	Args:        append([]string{daemonName}, os.Args[1:]...),
}

// handleDaemon forks the refresh loop into the background, or stops the
// daemon when one is already running.
func handleDaemon(config ntpc.Config) int {
	d, err := daemonCtx.Reborn()
	if err != nil {
		if errors.Is(err, daemon.ErrWouldBlock) {
			if err := killDaemon(); err != nil {
				fmt.Fprintln(os.Stderr, "Couldn't stop ntpc daemon:", err)
				return exitFailure
			}
			fmt.Println("Successfully stopped ntpc daemon.")
			return exitSuccess
		}
		log.Fatal("Unable to run: ", err)
	}
	if d != nil {
		fmt.Printf("Daemon process (%s, %d) started successfully.\n", daemonName, d.Pid)
		return exitSuccess
	}
	defer daemonCtx.Release()

	log.Print("- - - - - - - - - - - - - - -")
	log.Print("daemon started ", os.Args)

	status := rpc.NewStatusServer(config.Socket, config.Host, config.Port)
	if err := status.Listen(); err != nil {
		log.Print("status socket error: ", err)
		return exitFailure
	}
	defer status.Close()

	config.Continuous = true
	config.Count = 0

	r := newRunner(config, status)
	r.cleanup = append(r.cleanup, func() {
		status.Close()
		daemonCtx.Release()
	})
	return r.run()
}

func killDaemon() error {
	process, err := daemonCtx.Search()
	if err != nil {
		return fmt.Errorf("error finding daemon: %w", err)
	}
	return process.Signal(syscall.SIGTERM)
}
