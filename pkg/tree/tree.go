// Package tree builds an in-memory family graph from decoded GEDCOM
// records and partitions it into connected family clusters.
//
// The graph is an arena of Person nodes keyed by ID. Relationships are
// stored as ID lists rather than pointers, so the structure stays cheap
// to hash and serialize and lookups stay O(1) through the arena map.
package tree

import (
	"sort"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/gedcom"
	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
)

// Union is one marriage of a person: the partner and the children of
// that marriage. Unions keep the FAMS record order, which is the
// marriage order.
type Union struct {
	FamilyID string
	Spouse   string // partner's person ID, "" when the family has none recorded
	Children []string

	MarriageDate  string
	MarriagePlace string
}

// Person is one node in the family graph.
type Person struct {
	ID     string
	Record *gedcom.Individual

	// Parents holds the IDs of this person's parents, father first when
	// both are recorded.
	Parents []string

	// Unions holds this person's marriages in marriage order.
	Unions []Union
}

// Spouses returns the partner IDs across all unions, in marriage order.
func (p *Person) Spouses() []string {
	var out []string
	for _, u := range p.Unions {
		if u.Spouse != "" {
			out = append(out, u.Spouse)
		}
	}
	return out
}

// Children returns the child IDs across all unions, in marriage order.
func (p *Person) Children() []string {
	var out []string
	for _, u := range p.Unions {
		out = append(out, u.Children...)
	}
	return out
}

// DanglingRef records a relationship pointing at an ID that is not in
// the person set. Dangling references are reported, never fatal: a
// partially exported GEDCOM file should still produce a tree.
type DanglingRef struct {
	From string // person holding the reference
	Ref  string // the missing ID
	Kind string // "family", "parent", "spouse", or "child"
}

// Tree is the complete family graph.
type Tree struct {
	persons map[string]*Person
	ids     []string // sorted person IDs

	// Dangling lists every unresolved reference found during Build.
	Dangling []DanglingRef
}

// Build constructs the family graph from a decoded document.
// Every individual becomes a node; family records are folded into
// parent and union lists on the persons they connect.
func Build(doc *gedcom.Document) (*Tree, error) {
	if doc == nil || len(doc.Individuals) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyTree, "no individuals to build a tree from")
	}

	t := &Tree{persons: make(map[string]*Person, len(doc.Individuals))}
	for _, indi := range doc.Individuals {
		t.persons[indi.ID] = &Person{ID: indi.ID, Record: indi}
		t.ids = append(t.ids, indi.ID)
	}
	sort.Strings(t.ids)

	for _, indi := range doc.Individuals {
		p := t.persons[indi.ID]

		for _, famID := range indi.ChildOf {
			fam, ok := doc.Family(famID)
			if !ok {
				t.dangling(p.ID, famID, "family")
				continue
			}
			for _, parentID := range []string{fam.Husband, fam.Wife} {
				if parentID == "" {
					continue
				}
				if _, ok := t.persons[parentID]; !ok {
					t.dangling(p.ID, parentID, "parent")
					continue
				}
				p.Parents = append(p.Parents, parentID)
			}
		}

		for _, famID := range indi.SpouseIn {
			fam, ok := doc.Family(famID)
			if !ok {
				t.dangling(p.ID, famID, "family")
				continue
			}
			u := Union{
				FamilyID:      famID,
				MarriageDate:  fam.MarriageDate,
				MarriagePlace: fam.MarriagePlace,
			}

			spouse := fam.Husband
			if spouse == p.ID {
				spouse = fam.Wife
			}
			if spouse != "" {
				if _, ok := t.persons[spouse]; ok {
					u.Spouse = spouse
				} else {
					t.dangling(p.ID, spouse, "spouse")
				}
			}

			for _, childID := range fam.Children {
				if _, ok := t.persons[childID]; !ok {
					t.dangling(p.ID, childID, "child")
					continue
				}
				u.Children = append(u.Children, childID)
			}
			p.Unions = append(p.Unions, u)
		}
	}

	return t, nil
}

func (t *Tree) dangling(from, ref, kind string) {
	t.Dangling = append(t.Dangling, DanglingRef{From: from, Ref: ref, Kind: kind})
}

// Person looks up a node by ID.
func (t *Tree) Person(id string) (*Person, bool) {
	p, ok := t.persons[id]
	return p, ok
}

// Len returns the number of persons in the graph.
func (t *Tree) Len() int {
	return len(t.persons)
}

// SortedIDs returns all person IDs in lexicographic order.
// The returned slice is shared and must not be modified.
func (t *Tree) SortedIDs() []string {
	return t.ids
}

// Neighbors returns the IDs adjacent to a person over the undirected
// relationship graph: parents, spouses, and children.
func (t *Tree) Neighbors(id string) []string {
	p, ok := t.persons[id]
	if !ok {
		return nil
	}
	var out []string
	out = append(out, p.Parents...)
	for _, u := range p.Unions {
		if u.Spouse != "" {
			out = append(out, u.Spouse)
		}
		out = append(out, u.Children...)
	}
	return out
}
