package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bearanvil/trafficled/internal/fetch"
	"github.com/bearanvil/trafficled/internal/speeds"
)

func testSnapshot() fetch.Snapshot {
	return fetch.Snapshot{
		{Direction: fetch.North, Category: fetch.Live}:    speeds.Table{1: 30},
		{Direction: fetch.North, Category: fetch.Typical}: speeds.Table{1: 100},
		{Direction: fetch.South, Category: fetch.Live}:    speeds.Table{2: 90},
		{Direction: fetch.South, Category: fetch.Typical}: speeds.Table{2: 100},
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWatchModel_FetchCycle(t *testing.T) {
	calls := 0
	fn := func(context.Context) (fetch.Snapshot, error) {
		calls++
		return testSnapshot(), nil
	}
	m := NewWatchModel(context.Background(), fn, "http://localhost:8080", 0, DefaultCutoffs())
	if !m.Loading() {
		t.Fatal("a new model should start loading")
	}

	msg := m.fetchCmd()()
	next, cmd := m.Update(msg)
	m = next.(WatchModel)
	if cmd != nil {
		t.Error("no refresh should be scheduled with a zero interval")
	}
	if m.Loading() || m.Err() != nil || m.Snapshot() == nil {
		t.Fatalf("after fetch: loading=%v err=%v snap=%v", m.Loading(), m.Err(), m.Snapshot())
	}

	view := m.View()
	for _, want := range []string{"TRAFFIC WATCH", "NORTH", "SOUTH", "0001  30%", "updated"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	next, cmd = m.Update(keyMsg("r"))
	m = next.(WatchModel)
	if cmd == nil || !m.Loading() {
		t.Fatal("r should start a refresh")
	}
	next, _ = m.Update(cmd())
	m = next.(WatchModel)
	if calls != 2 {
		t.Errorf("fetch calls = %d, want 2", calls)
	}

	// A refresh while loading is ignored.
	m.loading = true
	if _, cmd := m.Update(refreshMsg{gen: m.gen}); cmd != nil {
		t.Error("refresh while loading should not fetch again")
	}
}

func TestWatchModel_KeepsSnapshotOnError(t *testing.T) {
	m := NewWatchModel(context.Background(), nil, "srv", time.Minute, DefaultCutoffs())

	next, _ := m.Update(fetchedMsg{snap: testSnapshot(), at: time.Now()})
	m = next.(WatchModel)

	boom := errors.New("connection refused")
	next, cmd := m.Update(fetchedMsg{err: boom})
	m = next.(WatchModel)
	if !errors.Is(m.Err(), boom) {
		t.Errorf("Err() = %v, want %v", m.Err(), boom)
	}
	if m.Snapshot() == nil {
		t.Error("failed fetch should keep the previous snapshot")
	}
	if cmd == nil {
		t.Error("a refresh should still be scheduled after a failure")
	}
	if !strings.Contains(m.View(), "fetch failed: connection refused") {
		t.Error("View() should show the fetch error")
	}
}

func TestWatchModel_ManualRefreshReplacesTick(t *testing.T) {
	fn := func(context.Context) (fetch.Snapshot, error) { return testSnapshot(), nil }
	m := NewWatchModel(context.Background(), fn, "srv", time.Minute, DefaultCutoffs())

	next, _ := m.Update(fetchedMsg{snap: testSnapshot(), at: time.Now()})
	m = next.(WatchModel)
	first := refreshMsg{gen: m.gen}

	next, cmd := m.Update(keyMsg("r"))
	m = next.(WatchModel)
	next, _ = m.Update(cmd())
	m = next.(WatchModel)
	second := refreshMsg{gen: m.gen}

	next, cmd = m.Update(first)
	m = next.(WatchModel)
	if cmd != nil || m.Loading() {
		t.Error("the tick scheduled before a manual refresh should be dropped")
	}

	next, cmd = m.Update(second)
	m = next.(WatchModel)
	if cmd == nil || !m.Loading() {
		t.Error("the tick scheduled by the latest fetch should refresh")
	}
}

func TestWatchModel_Quit(t *testing.T) {
	m := NewWatchModel(context.Background(), nil, "srv", 0, DefaultCutoffs())
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce tea.QuitMsg")
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if got := next.(WatchModel).width; got != 80 {
		t.Errorf("width = %d, want 80", got)
	}
}
