// Package markdown renders Obsidian notes for persons in a family
// tree: one note per person plus an alphabetical index, cross-linked
// with WikiLinks that match the canvas node links.
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// Generator renders person notes into an output directory.
type Generator struct {
	outputDir   string
	mediaSubdir string
}

// NewGenerator validates the output directory and returns a generator.
// mediaSubdir, when set, is prefixed to image paths in the notes.
func NewGenerator(outputDir, mediaSubdir string) (*Generator, error) {
	info, err := os.Stat(outputDir)
	if os.IsNotExist(err) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidPath, "output directory does not exist: %s", outputDir)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", outputDir, err)
	}
	if !info.IsDir() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidPath, "output path is not a directory: %s", outputDir)
	}
	return &Generator{outputDir: outputDir, mediaSubdir: mediaSubdir}, nil
}

// NoteError records a person whose note could not be written.
type NoteError struct {
	PersonID string
	Err      error
}

// WriteAll renders a note for every person. A failing note is recorded
// and the rest still get written.
func (g *Generator) WriteAll(tr *tree.Tree) (paths []string, failed []NoteError) {
	for _, id := range tr.SortedIDs() {
		p, _ := tr.Person(id)
		path, err := g.WriteNote(tr, p)
		if err != nil {
			failed = append(failed, NoteError{PersonID: id, Err: err})
			continue
		}
		paths = append(paths, path)
	}
	return paths, failed
}

// WriteNote renders and writes one person's note, returning its path.
func (g *Generator) WriteNote(tr *tree.Tree, p *tree.Person) (string, error) {
	name := p.Record.FileName()
	if err := apperrors.ValidateNoteFilename(name); err != nil {
		return "", err
	}
	path := filepath.Join(g.outputDir, name+".md")
	if err := os.WriteFile(path, []byte(g.Note(tr, p)), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Note renders one person's note body.
func (g *Generator) Note(tr *tree.Tree, p *tree.Person) string {
	var b strings.Builder
	rec := p.Record

	fmt.Fprintf(&b, "# %s\n\n", rec.Name())
	g.writeAttributes(&b, p)
	g.writeEvents(&b, p)
	g.writeFamilies(&b, tr, p)
	g.writeParents(&b, tr, p)
	g.writeChildren(&b, tr, p)
	g.writeImages(&b, p)
	g.writeNotes(&b, p)

	return b.String()
}

// metadata writes a visible Dataview inline field.
func metadata(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "[%s:: %s]\n", key, value)
}

// metadataHidden writes a Dataview field that Obsidian hides in
// reading view.
func metadataHidden(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "(%s:: %s)\n", key, value)
}

func wikiLink(name string) string {
	return "[[" + name + "]]"
}

func (g *Generator) writeAttributes(b *strings.Builder, p *tree.Person) {
	rec := p.Record

	b.WriteString("## Attributes\n")
	metadata(b, "ID", rec.ID)
	metadata(b, "Name", rec.Name())
	if lived := rec.Lifespan(); lived != "" {
		metadata(b, "Lived", lived)
	}
	metadata(b, "Sex", rec.Gender.String())
	if rec.BirthDate != "" {
		metadata(b, "Born", rec.BirthDate)
	}
	if rec.BirthPlace != "" {
		metadata(b, "Place of birth", rec.BirthPlace)
	}
	if rec.DeathDate != "" {
		metadata(b, "Passed away", rec.DeathDate)
	}
	if rec.DeathPlace != "" {
		metadata(b, "Place of death", rec.DeathPlace)
	}
	b.WriteString("\n")
}

func (g *Generator) writeEvents(b *strings.Builder, p *tree.Person) {
	if len(p.Record.Events) == 0 {
		return
	}

	b.WriteString("## Life Events\n")
	for _, ev := range p.Record.Events {
		fmt.Fprintf(b, "### %s\n", ev.Label)
		if ev.Date != "" {
			fmt.Fprintf(b, "- **Date**: %s\n", ev.Date)
		}
		if ev.Place != "" {
			fmt.Fprintf(b, "- **Place**: %s\n", ev.Place)
		}
		if ev.Value != "" {
			fmt.Fprintf(b, "- **Details**: %s\n", ev.Value)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (g *Generator) writeFamilies(b *strings.Builder, tr *tree.Tree, p *tree.Person) {
	unions := unionsWithPartner(tr, p)
	if len(unions) == 0 {
		return
	}

	b.WriteString("## Families\n")
	for i, u := range unions {
		partner, _ := tr.Person(u.Spouse)

		if len(unions) > 1 {
			fmt.Fprintf(b, "### Marriage %d\n", i+1)
		} else {
			b.WriteString("### Marriage\n")
		}
		metadataHidden(b, "Partner", wikiLink(partner.Record.FileName()))

		if u.MarriageDate != "" {
			metadataHidden(b, "Marriage date", u.MarriageDate)
		}
		if u.MarriagePlace != "" {
			metadataHidden(b, "Marriage place", u.MarriagePlace)
		}

		if len(u.Children) > 0 {
			b.WriteString("\n**Children:**\n")
			for _, childID := range u.Children {
				child, _ := tr.Person(childID)
				metadataHidden(b, "Child", wikiLink(child.Record.FileName()))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (g *Generator) writeParents(b *strings.Builder, tr *tree.Tree, p *tree.Person) {
	if len(p.Parents) == 0 {
		return
	}

	b.WriteString("## Parents\n")
	for _, parentID := range p.Parents {
		parent, _ := tr.Person(parentID)
		metadataHidden(b, "Parent", wikiLink(parent.Record.FileName()))
	}
	b.WriteString("\n")
}

// writeChildren only fires for persons without a partnered union, so
// children are never listed twice.
func (g *Generator) writeChildren(b *strings.Builder, tr *tree.Tree, p *tree.Person) {
	if len(unionsWithPartner(tr, p)) > 0 {
		return
	}
	children := p.Children()
	if len(children) == 0 {
		return
	}

	b.WriteString("## Children\n")
	for _, childID := range children {
		child, _ := tr.Person(childID)
		metadataHidden(b, "Child", wikiLink(child.Record.FileName()))
	}
	b.WriteString("\n")
}

func (g *Generator) writeImages(b *strings.Builder, p *tree.Person) {
	if len(p.Record.Images) == 0 {
		return
	}

	b.WriteString("## Images\n")
	for _, img := range p.Record.Images {
		path := img
		if g.mediaSubdir != "" {
			path = g.mediaSubdir + "/" + img
		}
		fmt.Fprintf(b, "![Image](%s)\n\n", path)
	}
	b.WriteString("\n")
}

func (g *Generator) writeNotes(b *strings.Builder, p *tree.Person) {
	if len(p.Record.Notes) == 0 {
		return
	}

	b.WriteString("## Notes\n")
	for _, note := range p.Record.Notes {
		fmt.Fprintf(b, "%s\n\n", note)
	}
	b.WriteString("\n")
}

// unionsWithPartner filters a person's unions down to those whose
// partner resolved to a person in the tree.
func unionsWithPartner(tr *tree.Tree, p *tree.Person) []tree.Union {
	var out []tree.Union
	for _, u := range p.Unions {
		if u.Spouse == "" {
			continue
		}
		if _, ok := tr.Person(u.Spouse); ok {
			out = append(out, u)
		}
	}
	return out
}
