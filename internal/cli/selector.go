package cli

import (
	"os"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// sortedPersons returns the tree's persons in display order: surname,
// given name, then ID. Numeric selectors index into this order.
func sortedPersons(tr *tree.Tree) []*tree.Person {
	persons := make([]*tree.Person, 0, tr.Len())
	for _, id := range tr.SortedIDs() {
		p, _ := tr.Person(id)
		persons = append(persons, p)
	}
	sort.SliceStable(persons, func(i, j int) bool {
		a, b := persons[i].Record, persons[j].Record
		if sa, sb := strings.ToLower(a.Surname), strings.ToLower(b.Surname); sa != sb {
			return sa < sb
		}
		if ga, gb := strings.ToLower(a.GivenName), strings.ToLower(b.GivenName); ga != gb {
			return ga < gb
		}
		return a.ID < b.ID
	})
	return persons
}

// resolveRoot turns a selector into a person ID. The selector is
// either a 1-based index into the name-sorted person list or a person
// ID (with or without the @ delimiters).
func resolveRoot(tr *tree.Tree, selector string) (string, error) {
	selector = strings.Trim(strings.TrimSpace(selector), "@")
	if selector == "" {
		return "", apperrors.New(apperrors.ErrCodeInvalidSelector, "empty root selector")
	}

	if n, err := strconv.Atoi(selector); err == nil {
		persons := sortedPersons(tr)
		if n < 1 || n > len(persons) {
			return "", apperrors.New(apperrors.ErrCodePersonNotFound,
				"index %d out of range (1-%d)", n, len(persons))
		}
		return persons[n-1].ID, nil
	}

	if _, ok := tr.Person(selector); ok {
		return selector, nil
	}
	return "", apperrors.New(apperrors.ErrCodePersonNotFound, "no person with ID %s", selector)
}

// selectRoot resolves the root person: from the selector when given,
// otherwise interactively when attached to a terminal.
func (c *CLI) selectRoot(tr *tree.Tree, selector string) (string, error) {
	if selector != "" {
		return resolveRoot(tr, selector)
	}
	if !isTerminal(os.Stdin) {
		return "", apperrors.New(apperrors.ErrCodeInvalidSelector,
			"no root given; pass --root with a person ID or list index")
	}
	return selectRootTUI(tr)
}

// selectRootTUI runs the interactive person picker.
func selectRootTUI(tr *tree.Tree) (string, error) {
	model := NewPersonListModel(sortedPersons(tr))
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", err
	}

	result, ok := final.(PersonListModel)
	if !ok || result.Selected == "" {
		return "", apperrors.New(apperrors.ErrCodeInvalidSelector, "no root person selected")
	}
	return result.Selected, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
