package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/AndrewLester/ntpc/internal/rpc"
	"github.com/AndrewLester/ntpc/internal/sugar"
	"github.com/AndrewLester/ntpc/internal/ui"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func handleStatusCommand(socket string) {
	m := statusUIModel{socket: socket, table: setupTable()}

	if _, err := sugar.RunProgramWithErrors(m); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(exitFailure)
	}
}

const fetchStatusPeriod = time.Second * 5

type statusUIModel struct {
	socket string
	client *rpc.Client

	table            table.Model
	status           rpc.Status
	daemonKillStatus string
	err              error
}

type dialSocketMessage *rpc.Client
type fetchStatusMessage rpc.Status
type statusErrorMessage error
type tickMsg time.Time

func dialSocketCommand(socket string) tea.Cmd {
	return func() tea.Msg {
		client, err := rpc.Dial(socket)
		if err != nil {
			return statusErrorMessage(fmt.Errorf("error connecting to ntpc daemon: %w", err))
		}
		return dialSocketMessage(client)
	}
}

func fetchStatusCommand(client *rpc.Client) tea.Cmd {
	return func() tea.Msg {
		status, err := client.FetchStatus()
		if err != nil {
			return statusErrorMessage(fmt.Errorf("error getting status from daemon: %w", err))
		}
		return fetchStatusMessage(status)
	}
}

func stopDaemonCommand() tea.Cmd {
	return func() tea.Msg {
		if err := killDaemon(); err != nil {
			return statusErrorMessage(err)
		}
		return nil
	}
}

func tickCommand(duration time.Duration) tea.Cmd {
	return tea.Tick(duration, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m statusUIModel) Init() tea.Cmd {
	return dialSocketCommand(m.socket)
}

func (m statusUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "stop", "s":
			m.daemonKillStatus = "Stopping " + daemonName
			return m, tea.Sequence(stopDaemonCommand(), tea.Quit)
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	case dialSocketMessage:
		m.client = msg
		return m, tickCommand(0)
	case fetchStatusMessage:
		m.status = rpc.Status(msg)
		m.table.SetRows([]table.Row{statusRow(m.status, time.Now())})
		return m, nil
	case statusErrorMessage:
		m.err = msg
		return m, tea.Quit
	case tickMsg:
		return m, tea.Batch(tickCommand(fetchStatusPeriod), fetchStatusCommand(m.client))
	default:
		return m, nil
	}
}

func statusRow(status rpc.Status, now time.Time) table.Row {
	networkTime := "-"
	lastUpdate := "never"
	if !status.LastUpdate.IsZero() {
		networkTime = time.Unix(status.Epoch, 0).Format(time.DateTime)
		lastUpdate = fmt.Sprintf("%s ago", now.Sub(status.LastUpdate).Truncate(time.Second))
	}
	return table.Row{
		fmt.Sprintf("%s:%d", status.Server, status.Port),
		networkTime,
		status.UpdateInterval.String(),
		lastUpdate,
		strconv.FormatUint(status.Successes, 10),
		strconv.FormatUint(status.Failures, 10),
		status.LastError,
	}
}

func (m statusUIModel) View() (s string) {
	if m.err != nil {
		return
	}

	s += ui.Title("ntpc") + "\n"
	s += ui.TableBase(m.table.View()) + "\n\n"
	if m.daemonKillStatus != "" {
		s += m.daemonKillStatus + "\n"
	} else if m.status.LastError != "" {
		s += ui.Failure(m.status.LastError) + "\n"
		s += ui.Help("q: exit, s: stop daemon") + "\n"
	} else {
		s += ui.Help("q: exit, s: stop daemon") + "\n"
	}
	return
}

func (m statusUIModel) GetError() error {
	return m.err
}

func setupTable() table.Model {
	columns := []table.Column{
		{Title: "Server", Width: 24},
		{Title: "Network Time", Width: 20},
		{Title: "Interval", Width: 10},
		{Title: "Last Update", Width: 14},
		{Title: "OK", Width: 6},
		{Title: "Failed", Width: 6},
		{Title: "Last Error", Width: 30},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(3),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.TableGray).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("218")).
		Background(lipgloss.Color("70")).
		Bold(false)
	t.SetStyles(s)

	return t
}
