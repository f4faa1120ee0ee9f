package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/sluice/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// Highlight marks nodes touched by the last edit.
	Highlight []string
}

// GenerateMermaid produces a Mermaid flowchart from a graph snapshot.
// It applies semantic styling:
// - Value: ((Circle)) labelled with the held number
// - Combinator: [Rectangle] labelled with the mirrored result
// Edges carry the target input port as their label.
func GenerateMermaid(view domain.GraphView, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range view.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		text := node.ID
		switch node.Kind {
		case domain.KindValue:
			opener, closer = "((", "))"
			if node.Value != nil {
				text = fmt.Sprintf("%s = %s", node.ID, formatNumber(*node.Value))
			}
		case domain.KindCombinator:
			if node.Result != nil {
				text = fmt.Sprintf("%s <br/> %s = %s", node.ID, node.Label, formatNumber(*node.Result))
			}
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(text), closer)
	}

	for _, c := range view.Connections {
		label := c.TargetInput
		if c.SourceOutput != domain.PortValue {
			label = c.SourceOutput + " → " + c.TargetInput
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", sanitizeMermaidID(c.Source), escapeLabel(label), sanitizeMermaidID(c.Target))
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef changed fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Highlight {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s changed;\n", safeID)
			}
		}
	}

	return sb.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
