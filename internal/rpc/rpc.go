package rpc

import (
	"errors"
	"net"
	"net/rpc"
	"os"
	"sync"
	"time"
)

const serviceName = "StatusServer"

// Status is what the daemon reports about its refresh loop.
type Status struct {
	Server         string
	Port           uint16
	Epoch          int64 // last network time fetched, Unix seconds
	LastUpdate     time.Time
	UpdateInterval time.Duration
	Successes      uint64
	Failures       uint64
	LastError      string
}

type StatusServer struct {
	Socket string

	mu       sync.Mutex
	status   Status
	listener net.Listener
}

func NewStatusServer(socket string, server string, port uint16) *StatusServer {
	return &StatusServer{
		Socket: socket,
		status: Status{Server: server, Port: port},
	}
}

// Record stores the outcome of one refresh cycle.
func (s *StatusServer) Record(epoch int64, lastUpdate time.Time, interval time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.UpdateInterval = interval
	if err != nil {
		s.status.Failures++
		s.status.LastError = err.Error()
		return
	}
	s.status.Successes++
	s.status.Epoch = epoch
	s.status.LastUpdate = lastUpdate
	s.status.LastError = ""
}

func (s *StatusServer) FetchStatus(args int, reply *Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*reply = s.status
	return nil
}

// Listen serves FetchStatus on the unix socket until Close. A socket file
// left behind by a previous run is replaced.
func (s *StatusServer) Listen() error {
	server := rpc.NewServer()
	if err := server.RegisterName(serviceName, s); err != nil {
		return err
	}

	err := os.Remove(s.Socket)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	l, err := net.Listen("unix", s.Socket)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go server.Accept(l)
	return nil
}

func (s *StatusServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.listener = nil
	return err
}

type Client struct {
	client *rpc.Client
}

func Dial(socket string) (*Client, error) {
	client, err := rpc.Dial("unix", socket)
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

func (c *Client) FetchStatus() (Status, error) {
	var reply Status
	err := c.client.Call(serviceName+".FetchStatus", 0, &reply)
	return reply, err
}

func (c *Client) Close() error {
	return c.client.Close()
}
