package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestPersonListNavigation(t *testing.T) {
	m := NewPersonListModel(sortedPersons(selectorTree(t)))

	next, _ := m.Update(keyMsg("j"))
	m = next.(PersonListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d after j, want 1", m.Cursor)
	}

	next, _ = m.Update(keyMsg("k"))
	m = next.(PersonListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after k, want 0", m.Cursor)
	}

	// Cursor stops at the top.
	next, _ = m.Update(keyMsg("k"))
	m = next.(PersonListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after k at top, want 0", m.Cursor)
	}
}

func TestPersonListSelect(t *testing.T) {
	m := NewPersonListModel(sortedPersons(selectorTree(t)))

	next, _ := m.Update(keyMsg("j"))
	m = next.(PersonListModel)
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(PersonListModel)

	// Second row in display order is Johann Schmidt.
	if m.Selected != "I1" {
		t.Errorf("Selected = %s, want I1", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestPersonListQuitWithoutSelection(t *testing.T) {
	m := NewPersonListModel(sortedPersons(selectorTree(t)))

	next, cmd := m.Update(keyMsg("q"))
	m = next.(PersonListModel)
	if m.Selected != "" {
		t.Errorf("Selected = %s after quit, want empty", m.Selected)
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestPersonListView(t *testing.T) {
	m := NewPersonListModel(sortedPersons(selectorTree(t)))
	view := m.View()

	for _, want := range []string{"Select Root Person", "Anna Braun", "Johann Schmidt", "1854"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
