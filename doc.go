/*
Package sluice is a reactive dataflow graph engine.

Value nodes hold numbers; Combinator nodes add their two inputs. Nodes are
wired output-to-input through named ports, and every edit (a value change, a
new or removed connection, a node added or removed) triggers a recompute pass
that re-evaluates the graph and pushes each Combinator's fresh result to the
configured display sinks.

# Concept

The graph enforces its invariants at edit time: node ids are unique, an input
port is fed by at most one connection, and no connection may close a
dependency cycle. A pass clears the evaluation cache and resolves each
Combinator by memoized recursive fetch of its upstream nodes, so every node is
evaluated at most once per pass.

Passes are serialized. An edit made while a pass is running (for instance from
inside a display sink) is coalesced into exactly one follow-up pass, and the
results of the last completed pass are authoritative.

# Usage

	ed := sluice.New(sluice.WithNotifiers(ports.NotifierFunc(
		func(ctx context.Context, id string, v float64) error {
			fmt.Println(id, v)
			return nil
		})))

	ed.AddValue("a", 1)
	ed.AddValue("b", 1)
	ed.AddCombinator("sum")
	ed.Connect("a", "value", "sum", "a")
	ed.Connect("b", "value", "sum", "b") // prints "sum 2"
	ed.SetValue("a", 5)                  // prints "sum 6"

Graphs can also be loaded from YAML, JSON or HCL files (pkg/adapters/file) or
built in code (pkg/dsl), and served over HTTP (pkg/adapters/http) or MCP
(pkg/adapters/mcp). The `sluice` command wraps all of these.
*/
package sluice
