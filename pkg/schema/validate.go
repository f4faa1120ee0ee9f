package schema

import (
	"fmt"

	"github.com/aretw0/sluice/pkg/domain"
)

// Validate checks the structure of a definition and returns every failure
// found as an *AggregateError.
func Validate(def *Definition) error {
	if def == nil {
		return &AggregateError{Errors: []error{&ValidationError{Key: "definition", Reason: "required"}}}
	}

	var errs []error
	seen := make(map[string]bool, len(def.Nodes))

	for i, n := range def.Nodes {
		key := fmt.Sprintf("nodes[%d]", i)
		if n.ID == "" {
			errs = append(errs, &ValidationError{Key: key + ".id", Reason: "required"})
		} else if seen[n.ID] {
			errs = append(errs, &ValidationError{Key: key + ".id", Reason: "duplicate node id", Value: n.ID})
		}
		seen[n.ID] = true

		switch domain.Kind(n.Kind) {
		case domain.KindValue:
		case domain.KindCombinator:
			if n.Value != nil {
				errs = append(errs, &ValidationError{Key: key + ".value", Reason: "only value nodes carry a value", Value: *n.Value})
			}
		default:
			errs = append(errs, &ValidationError{Key: key + ".kind", Reason: "unknown node kind", Value: n.Kind})
		}
	}

	for i, c := range def.Connections {
		key := fmt.Sprintf("connections[%d]", i)
		for _, f := range [...]struct{ field, ep string }{{"from", c.From}, {"to", c.To}} {
			field, ep := f.field, f.ep
			node, _, err := ParseEndpoint(ep)
			if err != nil {
				errs = append(errs, &ValidationError{Key: key + "." + field, Reason: "expected node.port", Value: ep})
				continue
			}
			if !seen[node] {
				errs = append(errs, &ValidationError{Key: key + "." + field, Reason: "unknown node", Value: node})
			}
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
