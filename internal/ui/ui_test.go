package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/remote-jupyter/rjy/internal/model"
	"github.com/remote-jupyter/rjy/internal/registry"
)

func testRows() []registry.Row {
	return []registry.Row{
		{Key: "alpha:1111", PID: "4321", Status: model.StatusConnected, Link: "https://a.example.com:1111/?token=aaa"},
		{Key: "beta:2222", PID: "", Status: model.StatusDisconnected, Link: "https://b.example.com:2222/?token=bbb"},
	}
}

func TestApplyFilterMatchesKeyAndLink(t *testing.T) {
	m := dashboardModel{rows: testRows(), filterIn: textinput.New()}

	m.filterIn.SetValue("beta")
	m.applyFilter()
	if len(m.filtered) != 1 || m.filtered[0].Key != "beta:2222" {
		t.Fatalf("unexpected filter result: %+v", m.filtered)
	}

	// Link text matches too.
	m.filterIn.SetValue("a.example.com")
	m.applyFilter()
	if len(m.filtered) != 1 || m.filtered[0].Key != "alpha:1111" {
		t.Fatalf("unexpected filter result: %+v", m.filtered)
	}

	m.filterIn.SetValue("")
	m.applyFilter()
	if len(m.filtered) != 2 {
		t.Fatalf("expected all rows with empty filter, got %+v", m.filtered)
	}
}

func TestApplyFilterClampsSelection(t *testing.T) {
	m := dashboardModel{rows: testRows(), filterIn: textinput.New(), sel: 1}
	m.filterIn.SetValue("alpha")
	m.applyFilter()
	if m.sel != 0 {
		t.Fatalf("expected selection clamped to 0, got %d", m.sel)
	}

	m.filterIn.SetValue("nothing-matches")
	m.applyFilter()
	if m.sel != 0 {
		t.Fatalf("expected selection pinned at 0 with no rows, got %d", m.sel)
	}
}
