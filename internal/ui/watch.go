package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusSnapshot carries one refresh of the connected account's on-chain
// view for the live status screen.
type StatusSnapshot struct {
	Account    string
	Network    string
	Vendor     string
	Registered bool
	UserID     uint64
	Level      uint64
	Earnings   string
	Balance    string
	Allowance  string
	ErrMsg     string
	At         time.Time
}

// WatchModel is the Bubble Tea model for the live account status screen.
// Fetch runs off the update loop and its snapshot is delivered as a message.
type WatchModel struct {
	Fetch       func() StatusSnapshot
	Interval    time.Duration
	ExplorerURL string

	snapshot StatusSnapshot
	haveData bool
	fetching bool
	Frame    int
	Quitting bool
	flash    string
}

type (
	watchSpinMsg    struct{}
	watchRefreshMsg struct{}
)

func watchSpinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return watchSpinMsg{}
	})
}

func watchRefreshTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return watchRefreshMsg{}
	})
}

func (m WatchModel) fetchCmd() tea.Cmd {
	fetch := m.Fetch
	return func() tea.Msg {
		return fetch()
	}
}

func (m WatchModel) Init() tea.Cmd {
	m.fetching = true
	return tea.Batch(watchSpinTick(), m.fetchCmd())
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit

		case "r":
			if !m.fetching {
				m.fetching = true
				return m, m.fetchCmd()
			}

		case "o":
			if m.ExplorerURL != "" && m.snapshot.Account != "" {
				openBrowser(strings.TrimRight(m.ExplorerURL, "/") + "/address/" + m.snapshot.Account)
				m.flash = "Opening in browser…"
			} else {
				m.flash = "No explorer URL configured"
			}

		case "c":
			if m.snapshot.Account == "" {
				m.flash = "Not connected"
				break
			}
			if err := copyToClipboard(m.snapshot.Account); err == nil {
				m.flash = "Copied: " + TruncateAddr(m.snapshot.Account)
			} else {
				m.flash = "Copy failed"
			}
		}

	case watchSpinMsg:
		m.Frame = (m.Frame + 1) % len(spinnerFrames)
		return m, watchSpinTick()

	case watchRefreshMsg:
		if m.fetching {
			return m, watchRefreshTick(m.Interval)
		}
		m.fetching = true
		return m, m.fetchCmd()

	case StatusSnapshot:
		m.snapshot = msg
		m.haveData = true
		m.fetching = false
		return m, watchRefreshTick(m.Interval)
	}

	return m, nil
}

func (m WatchModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	spin := spinnerFrames[m.Frame]

	title := fmt.Sprintf("👁  Account Status  ·  %s  ·  %s",
		TruncateAddr(m.snapshot.Account), m.snapshot.Network)
	sb.WriteString(StyleTitle.Render(title) + "\n")

	switch {
	case m.snapshot.ErrMsg != "":
		sb.WriteString(StyleError.Render("✗ "+m.snapshot.ErrMsg) + "\n\n")
	case m.fetching:
		sb.WriteString(StyleInfo.Render(fmt.Sprintf("%s refreshing…", spin)) + "\n\n")
	case m.haveData:
		sb.WriteString(StyleMeta.Render("  last refreshed: "+m.snapshot.At.Format("15:04:05")) + "\n\n")
	default:
		sb.WriteString(StyleMeta.Render("  connecting…") + "\n\n")
	}

	if m.haveData {
		sb.WriteString(m.renderStatus())
	}

	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(watchControls())
	}
	sb.WriteString("\n")

	return sb.String()
}

func (m WatchModel) renderStatus() string {
	s := m.snapshot
	const wKey = 14

	line := func(key, val string) string {
		return "  " + padR(StyleMeta.Render(key), wKey) + " " + val + "\n"
	}

	var sb strings.Builder
	sb.WriteString(line("wallet", StyleValue.Render(s.Vendor)))
	sb.WriteString(line("account", StyleAddress.Render(s.Account)))
	if s.Registered {
		sb.WriteString(line("registered", StyleSuccess.Render("yes")))
		sb.WriteString(line("user id", StyleValue.Render(fmt.Sprintf("#%d", s.UserID))))
		sb.WriteString(line("level", StyleAccent.Render(fmt.Sprintf("%d", s.Level))))
		sb.WriteString(line("earnings", StyleValue.Render(s.Earnings)))
	} else {
		sb.WriteString(line("registered", StyleWarning.Render("no")))
	}
	sb.WriteString(line("balance", StyleValue.Render(s.Balance)))
	sb.WriteString(line("allowance", StyleValue.Render(s.Allowance)))
	return sb.String()
}

func watchControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ r ]"))
	sb.WriteString(StyleMeta.Render(" refresh"))
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ o ]"))
	sb.WriteString(StyleMeta.Render(" open in explorer"))
	sb.WriteString(sep)
	sb.WriteString(StyleWarning.Render("[ c ]"))
	sb.WriteString(StyleMeta.Render(" copy address"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ]"))
	sb.WriteString(StyleMeta.Render(" quit"))
	return sb.String()
}

// RunWatch starts the live status screen and blocks until the user quits.
func RunWatch(model WatchModel) error {
	p := tea.NewProgram(model, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
