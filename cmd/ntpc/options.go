package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/AndrewLester/ntpc/pkg/ntpc"
)

type options struct {
	config     ntpc.Config
	configPath string
	version    bool
	query      string
	daemon     bool
	status     bool
}

// parseOptions reads the config file, when there is one, and lets flags
// given on the command line override it. The default config file may be
// missing; one named with -config may not.
func parseOptions(args []string, defaultConfigPath string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		printVersion(output)
		fmt.Fprintf(output, "usage: %s [options]\n", appName)
		fs.PrintDefaults()
	}

	var address, port, count, socket, configPath, query string
	var update, slew, continuous, version, daemonMode, status bool
	fs.StringVar(&address, "address", "", "The remote host address (or name).")
	fs.StringVar(&address, "a", "", "The remote host address (or name).")
	fs.StringVar(&port, "port", "", "The remote host port.")
	fs.StringVar(&port, "p", "", "The remote host port.")
	fs.BoolVar(&update, "update", false, "Update the system with the new date/time (requires sufficient rights).")
	fs.BoolVar(&update, "u", false, "Update the system with the new date/time (requires sufficient rights).")
	fs.BoolVar(&slew, "slew", false, "Like -update, but apply the offset through adjtime (adjtimex on Linux) instead of settimeofday.")
	fs.BoolVar(&continuous, "continue", false, "Continuous execution.")
	fs.BoolVar(&continuous, "c", false, "Continuous execution.")
	fs.StringVar(&count, "count", "", "Performs a defined number of requests (in conflict with continue option).")
	fs.BoolVar(&version, "version", false, "Print the version.")
	fs.BoolVar(&version, "v", false, "Print the version.")
	fs.StringVar(&configPath, "config", defaultConfigPath, "Path to the config file.")
	fs.StringVar(&query, "query", "", "Address to measure the clock offset against.")
	fs.StringVar(&query, "q", "", "Address to measure the clock offset against.")
	fs.BoolVar(&daemonMode, "daemon", false, "Run continuously in the background; run again to stop.")
	fs.BoolVar(&status, "status", false, "Show the status of the running daemon.")
	fs.StringVar(&socket, "socket", "", "Path of the daemon status socket.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	opts := &options{
		configPath: configPath,
		version:    version,
		query:      query,
		daemon:     daemonMode,
		status:     status,
	}
	if version {
		return opts, nil
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	config := ntpc.DefaultConfig()
	if configPath != "" {
		parsed, err := ntpc.ParseConfig(configPath)
		switch {
		case err == nil:
			config = parsed
		case errors.Is(err, os.ErrNotExist) && !set["config"]:
		default:
			return nil, err
		}
	}

	var errs []error
	if set["a"] || set["address"] {
		config.Host = address
	}
	if set["p"] || set["port"] {
		p, err := ntpc.ParsePort(port)
		if err != nil {
			errs = append(errs, err)
		} else {
			config.Port = p
		}
	}
	if update {
		config.Update = true
	}
	if slew {
		config.Update = true
		config.Slew = true
	}
	if continuous {
		config.Continuous = true
	}
	if set["count"] {
		c, err := ntpc.ParseInt(count)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid count value: %w", err))
		} else {
			config.Count = c
		}
	}
	if set["socket"] {
		config.Socket = socket
	}

	switch {
	case status:
	case query != "":
		if config.Port == 0 {
			errs = append(errs, ntpc.ErrInvalidPort)
		}
	default:
		if err := config.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	opts.config = config
	return opts, nil
}
