// Package render produces node-link previews of a family tree via
// Graphviz: a DOT description and an SVG rendering of it. The preview
// is a quick sanity view of the graph, independent of the canvas
// layout.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// Options configures the node-link preview.
type Options struct {
	// Detailed adds lifespan and birthplace lines to node labels.
	// When false, only the person's name is shown.
	Detailed bool
}

// ToDOT converts a family tree to Graphviz DOT. Parent-child links are
// directed edges; couples are joined with undirected dashed edges.
// Nodes and edges are emitted in sorted-ID order for stable output.
func ToDOT(tr *tree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range tr.SortedIDs() {
		p, _ := tr.Person(id)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", id, fmtLabel(p, opts.Detailed))
	}

	buf.WriteString("\n")
	spouseDone := make(map[string]bool)
	for _, id := range tr.SortedIDs() {
		p, _ := tr.Person(id)
		for _, parentID := range p.Parents {
			fmt.Fprintf(&buf, "  %q -> %q;\n", parentID, id)
		}
		for _, spouseID := range p.Spouses() {
			a, b := id, spouseID
			if b < a {
				a, b = b, a
			}
			pair := a + ":" + b
			if spouseDone[pair] {
				continue
			}
			spouseDone[pair] = true
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed, constraint=false];\n", a, b)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p *tree.Person, detailed bool) string {
	name := p.Record.Name()
	if !detailed {
		return name
	}

	parts := []string{name}
	if lived := p.Record.Lifespan(); lived != "" {
		parts = append(parts, lived)
	}
	if p.Record.BirthPlace != "" {
		parts = append(parts, p.Record.BirthPlace)
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the view box
// starts at the origin and width/height match it. Graphviz emits
// offsets that confuse some viewers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
