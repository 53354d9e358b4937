package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/bearanvil/trafficled/internal/speeds"
)

func TestCutoffs_Classify(t *testing.T) {
	c := DefaultCutoffs()
	tests := []struct {
		live, typical uint32
		want          SpeedClass
	}{
		{10, 100, ClassSlow},
		{49, 100, ClassSlow},
		{50, 100, ClassMedium},
		{74, 100, ClassMedium},
		{75, 100, ClassFast},
		{130, 100, ClassFast},
		{0, 100, ClassSlow},
		{40, 0, ClassUnknown},
		{speeds.RemoveSpeed, 100, ClassUnknown},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.live, tt.typical); got != tt.want {
			t.Errorf("Classify(%d, %d) = %v, want %v", tt.live, tt.typical, got, tt.want)
		}
	}
}

func TestSpeedClass_String(t *testing.T) {
	for class, want := range map[SpeedClass]string{
		ClassSlow: "slow", ClassMedium: "medium", ClassFast: "fast", ClassUnknown: "unknown",
	} {
		if got := class.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestBoard_Summary(t *testing.T) {
	b := &Board{
		Live:    speeds.Table{1: 20, 2: 60, 3: 90, 4: 50},
		Typical: speeds.Table{1: 100, 2: 100, 3: 100},
		Cutoffs: DefaultCutoffs(),
	}
	got := b.Summary()
	want := Summary{Slow: 1, Medium: 1, Fast: 1, Unknown: 1}
	if got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
	if got.Total() != 4 {
		t.Errorf("Total() = %d, want 4", got.Total())
	}
}

func TestRenderBoard(t *testing.T) {
	out := RenderBoard("north",
		speeds.Table{7: 45, 12: 80},
		speeds.Table{7: 90, 12: 80},
		DefaultCutoffs(), 60)

	for _, want := range []string{"NORTH", "2 LEDs", "0007  50%", "0012 100%", "medium 1", "fast 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderBoard() missing %q in:\n%s", want, out)
		}
	}

	empty := RenderBoard("south", nil, nil, DefaultCutoffs(), 60)
	if !strings.Contains(empty, "no live data") {
		t.Errorf("empty board should say so:\n%s", empty)
	}
}

func TestRenderBoard_WrapsRows(t *testing.T) {
	live := speeds.Table{}
	for led := uint32(1); led <= 12; led++ {
		live[led] = 10
	}
	out := RenderBoard("north", live, nil, DefaultCutoffs(), 60)
	rows := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "--") {
			rows++
		}
	}
	if rows < 2 {
		t.Errorf("12 LEDs at width 60 should wrap, got %d rows:\n%s", rows, out)
	}
}

func TestResult_Render(t *testing.T) {
	out := NewSuccessResult("Update available").
		SetWidth(70).
		AddDetail("Server", "V2_0 v1.7.0").
		AddDetail("Installed", "V2_0 v1.6.3").
		Render()
	for _, want := range []string{"SUCCESS", "Update available", "Server:", "V2_0 v1.7.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "Server:") > strings.Index(out, "Installed:") {
		t.Error("details should keep insertion order")
	}

	out = NewFailureResult("Update check failed", errors.New("HTTP 503"), "is the server running?").SetWidth(70).Render()
	for _, want := range []string{"FAILED", "Error: HTTP 503", "is the server running?"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}

	out = NewWarningResult("No update").SetWidth(70).String()
	if !strings.Contains(out, "WARNING") {
		t.Errorf("warning box missing label:\n%s", out)
	}
}

func TestHeader_Render(t *testing.T) {
	out := NewHeader("speeds", "trafficled speeds",
		Detail{"Server", "http://localhost:8080"},
	).SetWidth(60).String()
	for _, want := range []string{"SPEEDS", "trafficled speeds", "Server:", "http://localhost:8080"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
}

func TestClampWidth(t *testing.T) {
	tests := []struct {
		width int
		err   error
		want  int
	}{
		{80, nil, 80},
		{20, nil, MinTerminalWidth},
		{300, nil, MaxContentWidth},
		{80, errors.New("not a tty"), MinTerminalWidth},
	}
	for _, tt := range tests {
		if got := clampWidth(tt.width, tt.err); got != tt.want {
			t.Errorf("clampWidth(%d, %v) = %d, want %d", tt.width, tt.err, got, tt.want)
		}
	}
}
