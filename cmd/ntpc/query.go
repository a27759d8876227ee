package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AndrewLester/ntpc/internal/sugar"
	"github.com/AndrewLester/ntpc/internal/ui"
	"github.com/AndrewLester/ntpc/pkg/ntpc"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	padding  = 10
	maxWidth = 80
)

const defaultMessages = 5

func handleQueryCommand(address string, port uint16, count uint32) {
	messages := defaultMessages
	if count != 0 {
		messages = int(count)
	}

	m := queryCommandModel{
		address:  address,
		port:     port,
		messages: messages,
		updates:  make(chan struct{}, messages),
		progress: progress.New(progress.WithScaledGradient("#68b1b1", "#6ea4ff")),
	}

	if _, err := sugar.RunProgramWithErrors(m); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(exitFailure)
	}
}

type queryCommandModel struct {
	progress progress.Model
	address  string
	port     uint16
	messages int
	updates  chan struct{}

	percentage float64
	result     string
	err        error
}

type ntpQueryMessage string
type ntpQueryError error
type progressUpdateMessage struct{}

func ntpQueryCommand(m queryCommandModel) tea.Cmd {
	return func() tea.Msg {
		result, err := ntpc.Query(m.address, m.port, m.messages, m.updates)
		if err != nil {
			return ntpQueryError(err)
		}

		addr, err := ntpc.ResolveIPv4(m.address)
		if err != nil {
			return ntpQueryError(err)
		}
		return ntpQueryMessage(formatQueryResult(result, m.address, addr.String()))
	}
}

func formatQueryResult(result *ntpc.QueryResult, address string, ip string) string {
	offsetString := strconv.FormatFloat(result.Offset.Seconds(), 'G', 5, 64)
	if result.Offset > 0 {
		offsetString = "+" + offsetString
	}
	errString := strconv.FormatFloat(result.Err.Seconds(), 'G', 5, 64)
	return fmt.Sprint(offsetString, " +/- ", errString, " ", address, " ", ip)
}

func progressListenCommand(m queryCommandModel) tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return progressUpdateMessage{}
	}
}

func (m queryCommandModel) Init() tea.Cmd {
	return tea.Batch(ntpQueryCommand(m), progressListenCommand(m))
}

func (m queryCommandModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}
		return m, nil
	case progressUpdateMessage:
		m.percentage += 1 / float64(m.messages)
		return m, progressListenCommand(m)
	case ntpQueryMessage:
		m.result = string(msg)
		return m, tea.Quit
	case ntpQueryError:
		m.err = msg
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m queryCommandModel) View() (s string) {
	if m.err != nil {
		return
	}

	if m.result == "" {
		s += ui.Title("ntpc - Query") + "\n\n"
		s += m.progress.ViewAs(m.percentage) + "\n\n"
		s += ui.Help("q: exit") + "\n"
	} else {
		s += m.result + "\n"
	}
	return
}

func (m queryCommandModel) GetError() error {
	return m.err
}
