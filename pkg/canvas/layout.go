// Package canvas lays out a family tree and serializes it as a JSON
// Canvas document that Obsidian can open.
//
// Layout happens in three passes: a BFS assigns every person a
// generation column and a vertical slot, an edge pass connects placed
// relatives, and the serializer turns both into canvas nodes and edges
// with deterministic IDs.
package canvas

import (
	"sort"

	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/gedcom"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// Options holds the spacing constants for canvas layout.
// These come from configuration and are never derived from the data.
type Options struct {
	NodeWidth         float64
	NodeHeight        float64
	ImageHeight       float64
	GenerationSpacing float64
	SiblingSpacing    float64
	ClusterSpacing    float64
}

// Position is a person's placement on the canvas. Ancestors sit at
// positive generations and are drawn toward positive x; descendants at
// negative generations toward negative x.
type Position struct {
	X, Y       float64
	Generation int
	Slot       int // vertical slot within the generation column
}

// Layout maps person IDs to canvas positions.
type Layout struct {
	positions map[string]Position
	maxY      float64
}

// Position looks up a person's placement.
func (l *Layout) Position(id string) (Position, bool) {
	pos, ok := l.positions[id]
	return pos, ok
}

// Len returns the number of placed persons.
func (l *Layout) Len() int {
	return len(l.positions)
}

// PlacedIDs returns the placed person IDs in sorted order.
func (l *Layout) PlacedIDs() []string {
	ids := make([]string, 0, len(l.positions))
	for id := range l.positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Engine assigns canvas positions to every person in a tree.
type Engine struct {
	tree *tree.Tree
	opts Options
}

// NewEngine creates a layout engine over a built tree.
func NewEngine(tr *tree.Tree, opts Options) *Engine {
	return &Engine{tree: tr, opts: opts}
}

// Layout places every person, starting a BFS at the root. Disconnected
// clusters are laid out from their representative and stacked below
// everything placed so far, so cluster regions never overlap.
//
// A missing root is fatal and reported before any output exists.
func (e *Engine) Layout(rootID string) (*Layout, error) {
	if e.tree == nil || e.tree.Len() == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyTree, "no persons to lay out")
	}
	if _, ok := e.tree.Person(rootID); !ok {
		return nil, apperrors.New(apperrors.ErrCodePersonNotFound, "person %s not found in tree", rootID)
	}

	l := &Layout{positions: make(map[string]Position, e.tree.Len())}

	clusters := e.tree.Components()
	// The root's cluster is placed first, anchored at the root itself.
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Contains(rootID) && !clusters[j].Contains(rootID)
	})

	offsetY := 0.0
	for i, cluster := range clusters {
		start := cluster.Representative()
		if i == 0 {
			start = rootID
		}
		e.layoutCluster(l, start, offsetY)
		offsetY = l.maxY + e.opts.ClusterSpacing
	}

	return l, nil
}

// queueItem carries the generation a person was discovered at. The
// first placement wins; later discoveries at other generations are
// dropped when dequeued.
type queueItem struct {
	id  string
	gen int
}

// layoutCluster runs the BFS for one connected cluster.
// Vertical slots count per generation from the cluster's own baseline
// at offsetY.
func (e *Engine) layoutCluster(l *Layout, startID string, offsetY float64) {
	nextSlot := make(map[int]int)
	queued := map[string]bool{startID: true}

	place := func(id string, gen int) {
		slot := nextSlot[gen]
		nextSlot[gen]++
		y := float64(slot)*e.opts.SiblingSpacing + offsetY
		l.positions[id] = Position{
			X:          float64(gen) * e.opts.GenerationSpacing,
			Y:          y,
			Generation: gen,
			Slot:       slot,
		}
		if y > l.maxY {
			l.maxY = y
		}
	}

	queue := []queueItem{{id: startID, gen: 0}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if _, done := l.positions[item.id]; done {
			continue
		}
		place(item.id, item.gen)

		p, _ := e.tree.Person(item.id)

		enqueue := func(id string, gen int) {
			if _, done := l.positions[id]; done || queued[id] {
				return
			}
			queued[id] = true
			queue = append(queue, queueItem{id: id, gen: gen})
		}

		// Spouses share the generation and are placed immediately so
		// they end up in adjacent slots. Their own relatives still go
		// through the queue.
		for _, u := range p.Unions {
			if u.Spouse == "" {
				continue
			}
			if _, done := l.positions[u.Spouse]; !done {
				place(u.Spouse, item.gen)
				queued[u.Spouse] = true
				spouse, _ := e.tree.Person(u.Spouse)
				for _, parentID := range orderedParents(e.tree, spouse) {
					enqueue(parentID, item.gen+1)
				}
				// The placed spouse never goes through the queue, so
				// partners from their other marriages are reached here.
				for _, su := range spouse.Unions {
					if su.Spouse != "" {
						enqueue(su.Spouse, item.gen)
					}
					for _, childID := range su.Children {
						enqueue(childID, item.gen-1)
					}
				}
			}
		}

		// Parents one generation up, fathers before mothers.
		for _, parentID := range orderedParents(e.tree, p) {
			enqueue(parentID, item.gen+1)
		}

		// Children one generation down, each marriage's children
		// enqueued as a contiguous run.
		for _, u := range p.Unions {
			for _, childID := range u.Children {
				enqueue(childID, item.gen-1)
			}
		}
	}
}

// orderedParents returns a person's parent IDs ordered male, female,
// unknown, with ID as the tie-break inside each group.
func orderedParents(tr *tree.Tree, p *tree.Person) []string {
	parents := make([]string, len(p.Parents))
	copy(parents, p.Parents)
	sort.SliceStable(parents, func(i, j int) bool {
		ri, rj := genderRank(tr, parents[i]), genderRank(tr, parents[j])
		if ri != rj {
			return ri < rj
		}
		return parents[i] < parents[j]
	})
	return parents
}

func genderRank(tr *tree.Tree, id string) int {
	p, ok := tr.Person(id)
	if !ok {
		return 2
	}
	switch p.Record.Gender {
	case gedcom.GenderMale:
		return 0
	case gedcom.GenderFemale:
		return 1
	default:
		return 2
	}
}
