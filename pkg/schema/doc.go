// Package schema describes graph definitions: the serializable form of a
// sluice graph that loaders read from files and the DSL builds in code.
//
// A definition lists nodes by id and kind, and connections as
// "node.port" endpoint pairs:
//
//	name: add
//	nodes:
//	  - {id: a, kind: value, value: 1}
//	  - {id: b, kind: value, value: 1}
//	  - {id: sum, kind: combinator}
//	connections:
//	  - {from: a.value, to: sum.a}
//	  - {from: b.value, to: sum.b}
//
// Validate checks the structure of a definition (ids, kinds, endpoint
// syntax, references). Port direction, fan-in and cycle rules are enforced
// by the graph itself when the definition is applied.
//
// This package only depends on pkg/domain and the standard library.
package schema
