package canvas

import (
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// EdgeKind distinguishes the two relationship edges on the canvas.
type EdgeKind string

const (
	EdgeParentChild EdgeKind = "parent-child"
	EdgeSpouse      EdgeKind = "spouse"
)

// Edge connects two placed persons. Parent-child edges run from the
// parent to the child; spouse edges carry the pair with the smaller ID
// first.
type Edge struct {
	Kind EdgeKind
	From string
	To   string
}

// BuildEdges connects every placed relative pair in one pass after all
// clusters are positioned. Spouse edges are deduplicated by unordered
// pair. Edges touching a person without a position are skipped and
// returned for logging; a skipped edge is never fatal.
func BuildEdges(tr *tree.Tree, l *Layout) (edges, skipped []Edge) {
	seen := make(map[Edge]bool)

	add := func(e Edge) {
		if seen[e] {
			return
		}
		seen[e] = true
		if _, ok := l.Position(e.From); !ok {
			skipped = append(skipped, e)
			return
		}
		if _, ok := l.Position(e.To); !ok {
			skipped = append(skipped, e)
			return
		}
		edges = append(edges, e)
	}

	// Sorted iteration keeps the edge list deterministic.
	for _, id := range tr.SortedIDs() {
		p, _ := tr.Person(id)

		for _, parentID := range p.Parents {
			add(Edge{Kind: EdgeParentChild, From: parentID, To: id})
		}

		for _, u := range p.Unions {
			if u.Spouse == "" {
				continue
			}
			a, b := id, u.Spouse
			if b < a {
				a, b = b, a
			}
			add(Edge{Kind: EdgeSpouse, From: a, To: b})
		}
	}

	return edges, skipped
}
