package viewmode

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT renders the step graph in Graphviz DOT format. The active mode is
// filled; preview modes are drawn with a double border.
func ToDOT(active Mode) string {
	var buf bytes.Buffer
	buf.WriteString("digraph steps {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, m := range Modes {
		fmt.Fprintf(&buf, "  %q [%s];\n", m.String(), nodeAttrs(m, active))
	}

	buf.WriteString("\n")
	for _, m := range Modes {
		for _, n := range Next(m) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", m.String(), n.String())
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(m, active Mode) string {
	attrs := fmt.Sprintf("label=%q", m.Fragment())
	if m.Preview() {
		attrs += ", peripheries=2"
	}
	if m == active {
		attrs += ", fillcolor=\"#ff3d7f\", fontcolor=white"
	}
	return attrs
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
	return buf.Bytes(), nil
}
