package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// IndexFilename is the default name of the generated index note.
const IndexFilename = "Index.md"

// Index renders the alphabetical index note: every person grouped by
// the first letter of their surname, sorted by surname then given
// name. Persons without a surname land under "#".
func Index(tr *tree.Tree) string {
	type entry struct {
		surname, given string
		fileName       string
		lifespan       string
	}

	entries := make([]entry, 0, tr.Len())
	for _, id := range tr.SortedIDs() {
		p, _ := tr.Person(id)
		entries = append(entries, entry{
			surname:  strings.ToLower(p.Record.Surname),
			given:    strings.ToLower(p.Record.GivenName),
			fileName: p.Record.FileName(),
			lifespan: p.Record.Lifespan(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].surname != entries[j].surname {
			return entries[i].surname < entries[j].surname
		}
		return entries[i].given < entries[j].given
	})

	var b strings.Builder
	b.WriteString("# Family Tree Index\n\n")
	fmt.Fprintf(&b, "Total individuals: %d\n\n", len(entries))

	currentLetter := ""
	for _, e := range entries {
		letter := "#"
		if e.surname != "" {
			// First rune, not first byte: surnames like Ölsen or Žagar
			// must group under their own letter.
			r, _ := utf8.DecodeRuneInString(e.surname)
			letter = string(unicode.ToUpper(r))
		}
		if letter != currentLetter {
			currentLetter = letter
			fmt.Fprintf(&b, "\n## %s\n\n", currentLetter)
		}

		if e.lifespan != "" {
			fmt.Fprintf(&b, "- [[%s]] (%s)\n", e.fileName, e.lifespan)
		} else {
			fmt.Fprintf(&b, "- [[%s]]\n", e.fileName)
		}
	}

	return b.String()
}

// WriteIndex renders the index and writes it into outputDir.
func WriteIndex(tr *tree.Tree, outputDir string) (string, error) {
	path := filepath.Join(outputDir, IndexFilename)
	if err := os.WriteFile(path, []byte(Index(tr)), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
