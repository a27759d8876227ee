package rpc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func socketPath(t *testing.T) string {
	t.Helper()
	// unix socket paths are limited to ~100 bytes, t.TempDir can be longer
	dir, err := os.MkdirTemp("", "ntpc")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestStatusServer_Record(t *testing.T) {
	s := NewStatusServer("", "pool.ntp.org", 123)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Record(1704067200, at, 64*time.Second, nil)
	s.Record(0, time.Time{}, 64*time.Second, errors.New("server did not respond"))

	var status Status
	if err := s.FetchStatus(0, &status); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if status.Successes != 1 || status.Failures != 1 {
		t.Fatalf("unexpected counters: got=%d/%d want=1/1", status.Successes, status.Failures)
	}
	if status.Epoch != 1704067200 || !status.LastUpdate.Equal(at) {
		t.Fatalf("failure overwrote last success: %+v", status)
	}
	if status.LastError != "server did not respond" {
		t.Fatalf("unexpected last error: %q", status.LastError)
	}

	s.Record(1704067264, at.Add(64*time.Second), 128*time.Second, nil)
	s.FetchStatus(0, &status)
	if status.LastError != "" || status.UpdateInterval != 128*time.Second {
		t.Fatalf("success did not reset state: %+v", status)
	}
}

func TestStatusServer_ListenAndDial(t *testing.T) {
	socket := socketPath(t)

	// stale file from a previous run
	if err := os.WriteFile(socket, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := NewStatusServer(socket, "192.0.2.1", 10123)
	if err := s.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer s.Close()

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Record(1704067200, at, 64*time.Second, nil)

	client, err := Dial(socket)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	status, err := client.FetchStatus()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if status.Server != "192.0.2.1" || status.Port != 10123 {
		t.Fatalf("unexpected server: got=%s:%d want=192.0.2.1:10123", status.Server, status.Port)
	}
	if status.Epoch != 1704067200 || !status.LastUpdate.Equal(at) || status.UpdateInterval != 64*time.Second {
		t.Fatalf("unexpected status: %+v", status)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
