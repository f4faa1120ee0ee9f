package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/sluice/internal/presentation/graph"
	"github.com/aretw0/sluice/pkg/domain"
)

func ptr(v float64) *float64 { return &v }

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		view     domain.GraphView
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Node Shapes",
			view: domain.GraphView{Nodes: []domain.NodeView{
				{ID: "a", Kind: domain.KindValue, Value: ptr(1.5)},
				{ID: "sum", Kind: domain.KindCombinator, Label: "Add", Result: ptr(6)},
			}},
			contains: []string{
				`a(("a = 1.5"))`,
				`sum["sum <br/> Add = 6"]`,
			},
		},
		{
			name: "Edges Labelled With Input Port",
			view: domain.GraphView{
				Nodes: []domain.NodeView{
					{ID: "a", Kind: domain.KindValue},
					{ID: "sum", Kind: domain.KindCombinator},
				},
				Connections: []domain.Connection{domain.Connect("a", domain.PortValue, "sum", domain.PortB)},
			},
			contains: []string{`a -- "b" --> sum`},
		},
		{
			name: "ID Sanitization",
			view: domain.GraphView{
				Nodes: []domain.NodeView{
					{ID: "ns.width", Kind: domain.KindValue},
					{ID: "hyphen-ated", Kind: domain.KindCombinator},
				},
				Connections: []domain.Connection{domain.Connect("ns.width", domain.PortValue, "hyphen-ated", domain.PortA)},
			},
			contains: []string{
				`ns_width(("ns.width"))`,
				`hyphen_ated["hyphen-ated"]`,
				`ns_width -- "a" --> hyphen_ated`,
			},
		},
		{
			name: "Overlay",
			view: domain.GraphView{Nodes: []domain.NodeView{{ID: "a", Kind: domain.KindValue}}},
			overlay: &graph.GraphOverlay{
				Highlight: []string{"a", "a"},
			},
			contains: []string{"classDef changed", "class a changed;"},
		},
		{
			name:     "No Overlay Styles Without Highlights",
			view:     domain.GraphView{Nodes: []domain.NodeView{{ID: "a", Kind: domain.KindValue}}},
			overlay:  &graph.GraphOverlay{},
			excludes: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.view, tt.overlay)
			if !strings.HasPrefix(got, "graph LR\n") {
				t.Errorf("expected flowchart header, got:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, got)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("expected output not to contain %q, got:\n%s", bad, got)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class a changed;") > 1 {
				t.Error("highlighted nodes should be deduplicated")
			}
		})
	}
}
