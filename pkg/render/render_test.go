package render

import (
	"strings"
	"testing"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/gedcom"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

const dotFixture = `0 @I1@ INDI
1 NAME Johann /Schmidt/
1 SEX M
1 BIRT
2 DATE 1854
2 PLAC Heidelberg
1 FAMS @F1@
0 @I2@ INDI
1 NAME Maria /Weber/
1 SEX F
1 FAMS @F1@
0 @I3@ INDI
1 NAME Karl /Schmidt/
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
0 TRLR
`

func fixtureTree(t *testing.T) *tree.Tree {
	t.Helper()
	doc, err := gedcom.Decode(strings.NewReader(dotFixture))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	tr, err := tree.Build(doc)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return tr
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(fixtureTree(t), Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Error("missing digraph header")
	}
	for _, want := range []string{
		`"I1" [label="Johann Schmidt"];`,
		`"I1" -> "I3";`,
		`"I2" -> "I3";`,
		`"I1" -> "I2" [dir=none, style=dashed, constraint=false];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}

	// One edge per couple.
	if strings.Count(dot, "dir=none") != 1 {
		t.Errorf("expected a single spouse edge:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(fixtureTree(t), Options{Detailed: true})

	if !strings.Contains(dot, `"I1" [label="Johann Schmidt\n1854-\nHeidelberg"];`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	a := ToDOT(fixtureTree(t), Options{})
	b := ToDOT(fixtureTree(t), Options{})
	if a != b {
		t.Error("DOT output not deterministic")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="100pt" viewBox="0.00 0.12 200.50 100.25">rest</svg>`)
	got := string(normalizeViewBox(svg))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200.50 100.25" width="200" height="100">rest</svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s, want %s", got, want)
	}
}

func TestNormalizeViewBoxNoMatch(t *testing.T) {
	svg := []byte("<svg>no viewbox</svg>")
	if got := normalizeViewBox(svg); string(got) != string(svg) {
		t.Error("SVG without viewBox should pass through unchanged")
	}
}
