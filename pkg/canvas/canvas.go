package canvas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// rootColor is the Obsidian canvas color preset for the root person.
const rootColor = "4"

// Node is one JSON Canvas text node.
type Node struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Text   string `json:"text"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Color  string `json:"color,omitempty"`
}

// DocEdge is one JSON Canvas edge.
type DocEdge struct {
	ID       string `json:"id"`
	FromNode string `json:"fromNode"`
	FromSide string `json:"fromSide"`
	ToNode   string `json:"toNode"`
	ToSide   string `json:"toSide"`
	Label    string `json:"label,omitempty"`
}

// Document is a complete JSON Canvas file.
type Document struct {
	Nodes []Node    `json:"nodes"`
	Edges []DocEdge `json:"edges"`
}

// Report collects the non-fatal findings of a canvas build.
type Report struct {
	Clusters     int
	SkippedEdges []Edge
}

// idNamespace is the fixed UUIDv5 namespace for canvas IDs. Derived
// IDs are stable across runs, so identical input yields identical
// output bytes.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("gedmd.canvas"))

// NodeID returns the canvas node ID for a person.
func NodeID(personID string) string {
	return uuid.NewSHA1(idNamespace, []byte("node:"+personID)).String()
}

// EdgeID returns the canvas edge ID for a relationship edge.
func EdgeID(e Edge) string {
	return uuid.NewSHA1(idNamespace, []byte(string(e.Kind)+":"+e.From+":"+e.To)).String()
}

// Build lays out the tree from the root and assembles the canvas
// document. The root check happens here, before any output file
// exists, so a bad selector never leaves a partial canvas behind.
func Build(tr *tree.Tree, rootID string, opts Options) (*Document, *Report, error) {
	engine := NewEngine(tr, opts)
	layout, err := engine.Layout(rootID)
	if err != nil {
		return nil, nil, err
	}

	edges, skipped := BuildEdges(tr, layout)
	doc := compose(tr, layout, edges, rootID, opts)
	report := &Report{
		Clusters:     len(tr.Components()),
		SkippedEdges: skipped,
	}
	return doc, report, nil
}

// compose turns positions and edges into canvas nodes and edges.
// Nodes are emitted in sorted person-ID order.
func compose(tr *tree.Tree, l *Layout, edges []Edge, rootID string, opts Options) *Document {
	doc := &Document{
		Nodes: make([]Node, 0, l.Len()),
		Edges: make([]DocEdge, 0, len(edges)),
	}

	for _, id := range l.PlacedIDs() {
		pos, _ := l.Position(id)
		p, _ := tr.Person(id)

		node := Node{
			ID:     NodeID(id),
			Type:   "text",
			Text:   nodeText(p),
			X:      round(pos.X),
			Y:      round(pos.Y),
			Width:  round(opts.NodeWidth),
			Height: round(opts.NodeHeight),
		}
		if len(p.Record.Images) > 0 {
			node.Height = round(opts.ImageHeight)
		}
		if id == rootID {
			node.Color = rootColor
		}
		doc.Nodes = append(doc.Nodes, node)
	}

	for _, e := range edges {
		docEdge := DocEdge{
			ID:       EdgeID(e),
			FromNode: NodeID(e.From),
			ToNode:   NodeID(e.To),
		}
		switch e.Kind {
		case EdgeParentChild:
			// Parents sit to the right of their children.
			docEdge.FromSide = "left"
			docEdge.ToSide = "right"
			docEdge.Label = "Child"
		case EdgeSpouse:
			docEdge.FromSide = "bottom"
			docEdge.ToSide = "top"
			docEdge.Label = "Spouse"
		}
		doc.Edges = append(doc.Edges, docEdge)
	}

	return doc
}

// nodeText builds the node body: the first portrait as an embedded
// image, then a WikiLink matching the person's note filename.
func nodeText(p *tree.Person) string {
	var buf bytes.Buffer
	if len(p.Record.Images) > 0 {
		fmt.Fprintf(&buf, "![Image](%s)\n", p.Record.Images[0])
	}
	fmt.Fprintf(&buf, "[[%s]]", p.Record.FileName())
	return buf.String()
}

func round(v float64) int {
	return int(math.Round(v))
}

// Marshal encodes the document as indented JSON.
// Output is byte-identical for identical documents.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a canvas document, e.g. from the cache.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode canvas: %w", err)
	}
	return &doc, nil
}

// WriteFile marshals the document and writes it to path.
// The document is fully encoded before the file is created, and the
// handle is released on every path out.
func WriteFile(doc *Document, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
