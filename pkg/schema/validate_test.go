package schema

import (
	"errors"
	"testing"

	"github.com/aretw0/sluice/pkg/domain"
)

func ptr(v float64) *float64 { return &v }

func addDefinition() *Definition {
	return &Definition{
		Name: "add",
		Nodes: []NodeSpec{
			{ID: "a", Kind: "value", Value: ptr(1)},
			{ID: "b", Kind: "value", Value: ptr(1)},
			{ID: "sum", Kind: "combinator"},
		},
		Connections: []ConnectionSpec{
			{From: "a.value", To: "sum.a"},
			{From: "b.value", To: "sum.b"},
		},
	}
}

func TestValidate_Success(t *testing.T) {
	if err := Validate(addDefinition()); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("Validate(nil) should fail")
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	def := &Definition{
		Nodes: []NodeSpec{
			{ID: "a", Kind: "value"},
			{ID: "a", Kind: "value"},
			{ID: "", Kind: "combinator"},
			{ID: "m", Kind: "multiplier"},
			{ID: "s", Kind: "combinator", Value: ptr(3)},
		},
		Connections: []ConnectionSpec{
			{From: "a", To: "s.a"},
			{From: "a.value", To: "ghost.b"},
		},
	}

	err := Validate(def)
	if err == nil {
		t.Fatal("Validate() should return error")
	}

	errs := ValidationErrors(err)
	want := []string{
		"nodes[1].id",
		"nodes[2].id",
		"nodes[3].kind",
		"nodes[4].value",
		"connections[0].from",
		"connections[1].to",
	}
	if len(errs) != len(want) {
		t.Fatalf("Validate() = %d errors, want %d: %v", len(errs), len(want), err)
	}
	for i, key := range want {
		var ve *ValidationError
		if !errors.As(errs[i], &ve) {
			t.Fatalf("error %d should be *ValidationError, got %T", i, errs[i])
		}
		if ve.Key != key {
			t.Errorf("error %d key = %q, want %q", i, ve.Key, key)
		}
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in       string
		node     string
		port     string
		wantsErr bool
	}{
		{in: "a.value", node: "a", port: "value"},
		{in: "ns.sum.a", node: "ns.sum", port: "a"},
		{in: "a", wantsErr: true},
		{in: ".a", wantsErr: true},
		{in: "a.", wantsErr: true},
	}
	for _, tt := range tests {
		node, port, err := ParseEndpoint(tt.in)
		if (err != nil) != tt.wantsErr {
			t.Errorf("ParseEndpoint(%q) error = %v, wantsErr %v", tt.in, err, tt.wantsErr)
			continue
		}
		if node != tt.node || port != tt.port {
			t.Errorf("ParseEndpoint(%q) = %q, %q; want %q, %q", tt.in, node, port, tt.node, tt.port)
		}
	}
}

func TestConnectionSpec_RoundTrip(t *testing.T) {
	c := domain.Connect("a", domain.PortValue, "sum", domain.PortB)
	got, err := ConnectionSpecOf(c).Connection()
	if err != nil {
		t.Fatalf("Connection() error = %v", err)
	}
	if got != c {
		t.Errorf("round trip = %v, want %v", got, c)
	}
}

func TestNodeSpec_Node(t *testing.T) {
	n, err := NodeSpec{ID: "a", Kind: "value", Label: "Width", Value: ptr(4)}.Node()
	if err != nil {
		t.Fatalf("Node() error = %v", err)
	}
	if n.Kind != domain.KindValue || n.Value() != 4 || n.Label != "Width" {
		t.Errorf("Node() = %+v", n.View())
	}

	if _, err := (NodeSpec{ID: "x", Kind: "nope"}).Node(); !errors.Is(err, domain.ErrUnknownKind) {
		t.Errorf("Node() error = %v, want ErrUnknownKind", err)
	}
}
