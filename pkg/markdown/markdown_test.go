package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/gedcom"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

const noteFixture = `0 @I1@ INDI
1 NAME Johann /Schmidt/
1 SEX M
1 BIRT
2 DATE 12 MAR 1854
2 PLAC Heidelberg
1 DEAT
2 DATE 1930
1 OCCU Blacksmith
2 DATE 1880
1 OBJE
2 FILE johann.jpg
1 NOTE Kept the forge running for fifty years.
1 FAMS @F1@
0 @I2@ INDI
1 NAME Maria /Weber/
1 SEX F
1 BIRT
2 DATE 1860
1 FAMS @F1@
0 @I3@ INDI
1 NAME Karl /Schmidt/
1 SEX M
1 BIRT
2 DATE 1885
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 MARR
2 DATE 1883
2 PLAC Heidelberg
0 TRLR
`

func fixtureTree(t *testing.T) *tree.Tree {
	t.Helper()
	doc, err := gedcom.Decode(strings.NewReader(noteFixture))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	tr, err := tree.Build(doc)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return tr
}

func TestNoteSections(t *testing.T) {
	tr := fixtureTree(t)
	g, err := NewGenerator(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewGenerator error: %v", err)
	}

	johann, _ := tr.Person("I1")
	note := g.Note(tr, johann)

	for _, want := range []string{
		"# Johann Schmidt\n",
		"[ID:: I1]\n",
		"[Lived:: 1854-1930]\n",
		"[Sex:: male]\n",
		"[Born:: 12 MAR 1854]\n",
		"[Place of birth:: Heidelberg]\n",
		"### Occupation\n",
		"- **Details**: Blacksmith\n",
		"(Partner:: [[Weber Maria 1860]])\n",
		"(Marriage date:: 1883)\n",
		"(Child:: [[Schmidt Karl 1885]])\n",
		"![Image](johann.jpg)\n",
		"Kept the forge running for fifty years.\n",
	} {
		if !strings.Contains(note, want) {
			t.Errorf("note missing %q\n%s", want, note)
		}
	}
}

func TestNoteParentsSection(t *testing.T) {
	tr := fixtureTree(t)
	g, _ := NewGenerator(t.TempDir(), "")

	karl, _ := tr.Person("I3")
	note := g.Note(tr, karl)

	if !strings.Contains(note, "## Parents\n") {
		t.Error("note missing parents section")
	}
	if !strings.Contains(note, "(Parent:: [[Schmidt Johann 1854]])") {
		t.Error("note missing father link")
	}
	if !strings.Contains(note, "(Parent:: [[Weber Maria 1860]])") {
		t.Error("note missing mother link")
	}
	// Karl has no family of his own, so no families section.
	if strings.Contains(note, "## Families") {
		t.Error("unexpected families section")
	}
}

func TestNoteMediaSubdir(t *testing.T) {
	tr := fixtureTree(t)
	g, _ := NewGenerator(t.TempDir(), "images")

	johann, _ := tr.Person("I1")
	note := g.Note(tr, johann)
	if !strings.Contains(note, "![Image](images/johann.jpg)") {
		t.Error("media subdir not prefixed to image path")
	}
}

func TestWriteAll(t *testing.T) {
	tr := fixtureTree(t)
	dir := t.TempDir()
	g, _ := NewGenerator(dir, "")

	paths, failed := g.WriteAll(tr)
	if len(failed) != 0 {
		t.Fatalf("unexpected failures: %v", failed)
	}
	if len(paths) != 3 {
		t.Fatalf("wrote %d notes, want 3", len(paths))
	}

	data, err := os.ReadFile(filepath.Join(dir, "Schmidt Johann 1854.md"))
	if err != nil {
		t.Fatalf("expected note file: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Johann Schmidt") {
		t.Error("note file has wrong header")
	}
}

func TestNewGeneratorMissingDir(t *testing.T) {
	_, err := NewGenerator(filepath.Join(t.TempDir(), "missing"), "")
	if !apperrors.Is(err, apperrors.ErrCodeInvalidPath) {
		t.Errorf("expected INVALID_PATH, got %v", err)
	}
}

func TestIndex(t *testing.T) {
	tr := fixtureTree(t)
	idx := Index(tr)

	if !strings.Contains(idx, "# Family Tree Index\n") {
		t.Error("missing index header")
	}
	if !strings.Contains(idx, "Total individuals: 3\n") {
		t.Error("missing total count")
	}
	// Surnames group under their initial letter.
	sPos := strings.Index(idx, "\n## S\n")
	wPos := strings.Index(idx, "\n## W\n")
	if sPos < 0 || wPos < 0 || sPos > wPos {
		t.Errorf("letter groups missing or out of order:\n%s", idx)
	}
	if !strings.Contains(idx, "- [[Schmidt Johann 1854]] (1854-1930)\n") {
		t.Error("missing entry with lifespan")
	}

	// Johann sorts before Karl inside S.
	if strings.Index(idx, "Schmidt Johann") > strings.Index(idx, "Schmidt Karl") {
		t.Error("entries not sorted by given name within surname")
	}
}

func TestIndexNonASCIISurname(t *testing.T) {
	ged := `0 @I1@ INDI
1 NAME Sören /Ölsen/
1 BIRT
2 DATE 1870
0 @I2@ INDI
1 NAME Ana /Žagar/
1 BIRT
2 DATE 1880
0 TRLR
`
	doc, err := gedcom.Decode(strings.NewReader(ged))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	tr, err := tree.Build(doc)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	idx := Index(tr)
	for _, heading := range []string{"\n## Ö\n", "\n## Ž\n"} {
		if !strings.Contains(idx, heading) {
			t.Errorf("missing letter group %q in:\n%s", strings.TrimSpace(heading), idx)
		}
	}
	if strings.Contains(idx, "�") {
		t.Error("index contains a replacement character")
	}
}

func TestWriteIndex(t *testing.T) {
	tr := fixtureTree(t)
	dir := t.TempDir()

	path, err := WriteIndex(tr, dir)
	if err != nil {
		t.Fatalf("WriteIndex error: %v", err)
	}
	if filepath.Base(path) != IndexFilename {
		t.Errorf("index written as %s, want %s", filepath.Base(path), IndexFilename)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("index file missing: %v", err)
	}
}
