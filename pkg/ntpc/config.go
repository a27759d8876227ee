package ntpc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/AndrewLester/ntpc/internal/ntp"
)

const DefaultConfigPath = "/etc/ntpc.conf"
const DefaultSocket = "/var/run/ntpc.sock"

var (
	ErrConfig      = errors.New("config parse error")
	ErrInvalidPort = errors.New("invalid port value: 0 < port <= 65535")
)

// Config is what a run of the client needs to know. It is filled from the
// config file and then from command line flags.
type Config struct {
	Host       string
	Port       uint16
	TOS        int
	Update     bool // set the system clock after a successful exchange
	Slew       bool // adjust instead of stepping
	Continuous bool
	Count      uint32
	Socket     string
}

func DefaultConfig() Config {
	return Config{
		Port:   ntp.Port,
		Socket: DefaultSocket,
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("invalid host address"))
	}
	if c.Port == 0 {
		errs = append(errs, ErrInvalidPort)
	}
	if c.Count != 0 && c.Continuous {
		errs = append(errs, errors.New("count option conflicts with continue option"))
	}
	return errors.Join(errs...)
}

func ParseConfig(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	return parseConfig(file, DefaultConfig())
}

func parseConfig(r io.Reader, config Config) (Config, error) {
	lineNumber := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNumber++
		arguments := strings.Fields(scanner.Text())
		if len(arguments) == 0 || strings.HasPrefix(arguments[0], "#") {
			continue
		}

		if err := parseDirective(&config, arguments); err != nil {
			return Config{}, fmt.Errorf("%w: line %d: %v", ErrConfig, lineNumber, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func parseDirective(config *Config, arguments []string) error {
	switch arguments[0] {
	case "server":
		if len(arguments) < 2 {
			return errors.New("missing required argument \"address\"")
		}

		port, err := stringArgument("port", strconv.Itoa(ntp.Port), &arguments)
		if err != nil {
			return err
		}
		tos, err := integerArgument("tos", 0, &arguments)
		if err != nil {
			return err
		}

		if len(arguments) > 2 {
			return fmt.Errorf("invalid arguments supplied to command. One was: %q", arguments[2])
		}

		config.Port, err = ParsePort(port)
		if err != nil {
			return err
		}
		if tos > math.MaxUint8 {
			return errors.New("tos must fit in a byte")
		}
		config.Host = arguments[1]
		config.TOS = int(tos)
	case "update":
		config.Update = true
	case "slew":
		config.Update = true
		config.Slew = true
	case "continue":
		config.Continuous = true
	case "count":
		if len(arguments) < 2 {
			return errors.New("missing required argument \"count\"")
		}
		count, err := ParseInt(arguments[1])
		if err != nil {
			return fmt.Errorf("invalid count value: %w", err)
		}
		config.Count = count
	case "socket":
		if len(arguments) < 2 {
			return errors.New("missing required argument \"path\"")
		}
		config.Socket = arguments[1]
	default:
		return fmt.Errorf("invalid command: %s", arguments[0])
	}
	return nil
}

// ParseInt reads a decimal or 0x-prefixed hexadecimal value. Negative values
// become 0.
func ParseInt(value string) (uint32, error) {
	var parsed int64
	var err error
	if hex, ok := strings.CutPrefix(value, "0x"); ok {
		parsed, err = strconv.ParseInt(hex, 16, 64)
	} else {
		parsed, err = strconv.ParseInt(value, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return 0, nil
	}
	if parsed > math.MaxUint32 {
		return 0, strconv.ErrRange
	}
	return uint32(parsed), nil
}

func ParsePort(value string) (uint16, error) {
	port, err := ParseInt(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPort, err)
	}
	if port == 0 || port > math.MaxUint16 {
		return 0, ErrInvalidPort
	}
	return uint16(port), nil
}

func integerArgument(name string, initial uint32, arguments *[]string) (uint32, error) {
	valueStr, err := stringArgument(name, strconv.FormatUint(uint64(initial), 10), arguments)
	if err != nil {
		return 0, err
	}
	value, err := ParseInt(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s argument requires an integer value", name)
	}
	return value, nil
}

func stringArgument(name string, initial string, arguments *[]string) (string, error) {
	for i, argument := range *arguments {
		if name == argument {
			if i == len(*arguments)-1 {
				return "", fmt.Errorf("no value supplied for argument: %s", argument)
			}

			value := (*arguments)[i+1]
			removeIndex(arguments, i)
			removeIndex(arguments, i)
			return value, nil
		}
	}
	return initial, nil
}

func removeIndex[T any](s *[]T, index int) {
	ret := make([]T, 0)
	ret = append(ret, (*s)[:index]...)
	ret = append(ret, (*s)[index+1:]...)
	*s = ret
}
