package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/AndrewLester/ntpc/internal/rpc"
	"github.com/AndrewLester/ntpc/pkg/ntpc"
)

type stubRefresher struct {
	results []error
	calls   []bool
	epoch   int64
}

func (s *stubRefresher) Refresh(autowait bool) (int64, error) {
	s.calls = append(s.calls, autowait)
	err := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	if err != nil {
		return 0, err
	}
	return s.epoch, nil
}

func (s *stubRefresher) LastUpdate() time.Time         { return time.Unix(s.epoch, 0) }
func (s *stubRefresher) UpdateInterval() time.Duration { return 64 * time.Second }

func newTestRunner(config ntpc.Config) (*runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	r := newRunner(config, nil)
	r.stdout = &stdout
	r.stderr = &stderr
	r.setClock = func(int64) error { return nil }
	return r, &stdout, &stderr
}

func TestRunner_SingleShot(t *testing.T) {
	r, stdout, stderr := newTestRunner(ntpc.Config{Host: "192.0.2.1", Port: 123})
	client := &stubRefresher{results: []error{nil}, epoch: 1704067200}

	if code := r.loop(client); code != exitSuccess {
		t.Fatalf("unexpected exit code: got=%d want=%d", code, exitSuccess)
	}
	if len(client.calls) != 1 || client.calls[0] {
		t.Fatalf("unexpected refresh calls: %v", client.calls)
	}

	want := "Network date/time: " + time.Unix(1704067200, 0).Format("2006-01-02 15:04:05") + "\n"
	if stdout.String() != want {
		t.Fatalf("unexpected output: got=%q want=%q", stdout.String(), want)
	}
	if stderr.Len() != 0 {
		t.Fatalf("unexpected errors: %q", stderr.String())
	}
}

func TestRunner_Failure(t *testing.T) {
	r, stdout, stderr := newTestRunner(ntpc.Config{Host: "192.0.2.1", Port: 123})
	client := &stubRefresher{results: []error{ntpc.ErrReceiveTimeout}}

	if code := r.loop(client); code != exitFailure {
		t.Fatalf("unexpected exit code: got=%d want=%d", code, exitFailure)
	}
	if stdout.Len() != 0 {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
	if stderr.String() != "Unable to retrieve date and time from NTP server!\n" {
		t.Fatalf("unexpected errors: %q", stderr.String())
	}
}

func TestRunner_CountKeepsLastResult(t *testing.T) {
	r, _, _ := newTestRunner(ntpc.Config{Host: "192.0.2.1", Port: 123, Count: 3})
	client := &stubRefresher{results: []error{nil, ntpc.ErrReceiveTimeout, nil}, epoch: 1704067200}

	if code := r.loop(client); code != exitSuccess {
		t.Fatalf("unexpected exit code: got=%d want=%d", code, exitSuccess)
	}
	if len(client.calls) != 3 {
		t.Fatalf("unexpected cycles: got=%d want=3", len(client.calls))
	}
	for _, autowait := range client.calls {
		if !autowait {
			t.Fatalf("counted cycles must wait for the interval")
		}
	}
}

func TestRunner_NotDueKeepsResult(t *testing.T) {
	r, stdout, stderr := newTestRunner(ntpc.Config{})
	client := &stubRefresher{results: []error{ntpc.ErrNotDue}}

	if code := r.processRefresh(client, false, exitSuccess); code != exitSuccess {
		t.Fatalf("unexpected exit code: got=%d want=%d", code, exitSuccess)
	}
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Fatalf("output for a refresh that was not due: %q %q", stdout.String(), stderr.String())
	}
}

func TestRunner_UpdateClock(t *testing.T) {
	r, _, stderr := newTestRunner(ntpc.Config{Host: "192.0.2.1", Port: 123, Update: true})
	var set []int64
	r.setClock = func(epoch int64) error {
		set = append(set, epoch)
		return fmt.Errorf("%w: %w", ntpc.ErrClockSet, syscall.EPERM)
	}
	client := &stubRefresher{results: []error{nil}, epoch: 1704067200}

	if code := r.loop(client); code != exitFailure {
		t.Fatalf("unexpected exit code: got=%d want=%d", code, exitFailure)
	}
	if len(set) != 1 || set[0] != 1704067200 {
		t.Fatalf("unexpected clock updates: %v", set)
	}
	want := fmt.Sprintf("Unable to change system date and time, error: (%d) The calling process", int(syscall.EPERM))
	if !strings.HasPrefix(stderr.String(), want) {
		t.Fatalf("unexpected error output: %q", stderr.String())
	}
}

func TestRunner_ClockFailureKeepsResult(t *testing.T) {
	r, stdout, stderr := newTestRunner(ntpc.Config{Host: "192.0.2.1", Port: 123, Update: true, Count: 2})
	calls := 0
	r.setClock = func(int64) error {
		calls++
		if calls == 2 {
			return fmt.Errorf("%w: %w", ntpc.ErrClockSet, syscall.EPERM)
		}
		return nil
	}
	client := &stubRefresher{results: []error{nil, nil}, epoch: 1704067200}

	if code := r.loop(client); code != exitSuccess {
		t.Fatalf("unexpected exit code: got=%d want=%d", code, exitSuccess)
	}
	if strings.Count(stdout.String(), "Network date/time: ") != 2 {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
	if !strings.HasPrefix(stderr.String(), "Unable to change system date and time") {
		t.Fatalf("unexpected error output: %q", stderr.String())
	}
}

func TestRunner_RecordsStatus(t *testing.T) {
	r, _, _ := newTestRunner(ntpc.Config{Host: "192.0.2.1", Port: 123, Count: 3})
	r.status = rpc.NewStatusServer("", "192.0.2.1", 123)
	client := &stubRefresher{results: []error{nil, ntpc.ErrNotDue, ntpc.ErrShortRead}, epoch: 1704067200}

	r.loop(client)

	var status rpc.Status
	r.status.FetchStatus(0, &status)
	if status.Successes != 1 || status.Failures != 1 {
		t.Fatalf("unexpected counters: got=%d/%d want=1/1", status.Successes, status.Failures)
	}
	if status.Epoch != 1704067200 || status.UpdateInterval != 64*time.Second {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestPrintSystemError(t *testing.T) {
	var output bytes.Buffer
	printSystemError(&output, "Unable to change system date and time", errors.New("operation not supported"))
	if output.String() != "Unable to change system date and time, error: (-1) operation not supported\n" {
		t.Fatalf("unexpected output: %q", output.String())
	}

	output.Reset()
	printSystemError(&output, "title", syscall.EINVAL)
	want := fmt.Sprintf("title, error: (%d) Timezone (or something else) is invalid.\n", int(syscall.EINVAL))
	if output.String() != want {
		t.Fatalf("unexpected output: got=%q want=%q", output.String(), want)
	}
}

func TestPrintVersion(t *testing.T) {
	var output bytes.Buffer
	printVersion(&output)
	if output.String() != "ntpc version 1.0 (release)\n" {
		t.Fatalf("unexpected version: %q", output.String())
	}
}

func TestFormatQueryResult(t *testing.T) {
	result := &ntpc.QueryResult{Offset: 1500 * time.Microsecond, Err: 23 * time.Millisecond}
	got := formatQueryResult(result, "pool.ntp.org", "192.0.2.1")
	if got != "+0.0015 +/- 0.023 pool.ntp.org 192.0.2.1" {
		t.Fatalf("unexpected result: %q", got)
	}

	result.Offset = -2 * time.Millisecond
	got = formatQueryResult(result, "pool.ntp.org", "192.0.2.1")
	if !strings.HasPrefix(got, "-0.002 +/- ") {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestStatusRow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 1, 4, 0, time.UTC)
	status := rpc.Status{
		Server:         "192.0.2.1",
		Port:           123,
		Epoch:          1704067200,
		LastUpdate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdateInterval: 64 * time.Second,
		Successes:      2,
		Failures:       1,
	}
	row := statusRow(status, now)
	if row[0] != "192.0.2.1:123" || row[2] != "1m4s" || row[3] != "1m4s ago" || row[4] != "2" || row[5] != "1" {
		t.Fatalf("unexpected row: %v", row)
	}

	row = statusRow(rpc.Status{Server: "192.0.2.1", Port: 123}, now)
	if row[1] != "-" || row[3] != "never" {
		t.Fatalf("unexpected row without update: %v", row)
	}
}
