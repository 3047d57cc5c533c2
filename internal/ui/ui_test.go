package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessContainsPrefixAndMessage(t *testing.T) {
	result := Success("registered")
	assert.Contains(t, result, "✓")
	assert.Contains(t, result, "registered")
}

func TestWarnContainsPrefixAndMessage(t *testing.T) {
	result := Warn("careful")
	assert.Contains(t, result, "⚠")
	assert.Contains(t, result, "careful")
}

func TestErrContainsPrefixAndMessage(t *testing.T) {
	result := Err("reverted")
	assert.Contains(t, result, "✗")
	assert.Contains(t, result, "reverted")
}

func TestAddrContainsAddress(t *testing.T) {
	assert.Contains(t, Addr("0xABCDEF"), "0xABCDEF")
}

func TestBannerMentionsName(t *testing.T) {
	assert.NotEmpty(t, Banner())
}

func TestTruncateAddr(t *testing.T) {
	addr := "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	short := TruncateAddr(addr)
	assert.Equal(t, "0xf39F…2266", short)

	// Short strings pass through untouched.
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
}

func TestPadRIgnoresANSI(t *testing.T) {
	styled := StyleSuccess.Render("ok")
	padded := padR(styled, 10)
	assert.True(t, strings.HasSuffix(padded, strings.Repeat(" ", 8)))
}

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Account", [][2]string{
		{"level", "3"},
		{"earnings", "12.5 USDT"},
	})
	assert.Contains(t, result, "Account")
	assert.Contains(t, result, "level")
	assert.Contains(t, result, "3")
	assert.Contains(t, result, "earnings")
	assert.Contains(t, result, "12.5 USDT")
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("", [][2]string{
		{"first", "1"},
		{"second", "2"},
	})
	assert.Less(t, strings.Index(result, "first"), strings.Index(result, "second"))
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "POS", Width: 4},
		{Title: "ID", Width: 8},
	})
	tbl.AddRow(Row{"1", "#42"})
	tbl.AddRow(Row{"2", "#7"})

	out := tbl.Render()
	assert.Contains(t, out, "POS")
	assert.Contains(t, out, "#42")
	assert.Contains(t, out, "#7")
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestTableTruncatesWideCells(t *testing.T) {
	tbl := NewTable([]Column{{Title: "ADDR", Width: 6}})
	tbl.AddRow(Row{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"})

	out := tbl.Render()
	assert.Contains(t, out, "0xf39F")
	assert.NotContains(t, out, "0xf39Fd6e")
}

func snapshot() StatusSnapshot {
	return StatusSnapshot{
		Account:    "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Network:    "BSC",
		Vendor:     "MetaMask",
		Registered: true,
		UserID:     42,
		Level:      3,
		Earnings:   "12.5",
		Balance:    "100.0",
		Allowance:  "50.0",
		At:         time.Now(),
	}
}

func TestWatchModelSnapshotEndsFetch(t *testing.T) {
	m := WatchModel{Fetch: snapshot, Interval: time.Second}

	updated, cmd := m.Update(snapshot())
	wm := updated.(WatchModel)
	assert.True(t, wm.haveData)
	assert.False(t, wm.fetching)
	require.NotNil(t, cmd) // next refresh tick scheduled
}

func TestWatchModelView(t *testing.T) {
	m := WatchModel{Fetch: snapshot, Interval: time.Second}
	updated, _ := m.Update(snapshot())

	view := updated.(WatchModel).View()
	assert.Contains(t, view, "0xf39F…2266")
	assert.Contains(t, view, "BSC")
	assert.Contains(t, view, "MetaMask")
	assert.Contains(t, view, "#42")
	assert.Contains(t, view, "12.5")
}

func TestWatchModelUnregisteredView(t *testing.T) {
	s := snapshot()
	s.Registered = false
	m := WatchModel{Fetch: func() StatusSnapshot { return s }, Interval: time.Second}
	updated, _ := m.Update(s)

	view := updated.(WatchModel).View()
	assert.Contains(t, view, "no")
	assert.NotContains(t, view, "user id")
}

func TestWatchModelQuit(t *testing.T) {
	m := WatchModel{Fetch: snapshot, Interval: time.Second}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.True(t, updated.(WatchModel).Quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWatchModelErrorView(t *testing.T) {
	s := snapshot()
	s.ErrMsg = "rpc unreachable"
	m := WatchModel{Fetch: func() StatusSnapshot { return s }, Interval: time.Second}
	updated, _ := m.Update(s)

	assert.Contains(t, updated.(WatchModel).View(), "rpc unreachable")
}

func TestSpinnerWritesMessageAndClearsLine(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Waiting for confirmation...")
	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Waiting for confirmation...")
	assert.True(t, strings.HasSuffix(out, "\r"), "line must be released on stop")
}

func TestSpinnerStopBeforeFirstFrame(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Registering...")
	s.Start()
	s.Stop()

	assert.True(t, strings.HasSuffix(buf.String(), "\r"))
}
