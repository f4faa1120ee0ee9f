// Package graph holds the mutable dataflow topology: nodes keyed by id and the
// connections joining their ports.
//
// The Graph is the sole mutation surface for editor hosts. It enforces the
// connection invariants at edit time:
//   - both endpoints must exist, the source port must be an output and the
//     target port an input (domain.ErrInvalidEndpoint);
//   - an input port accepts at most one connection (domain.ErrPortOccupied),
//     while an output may fan out freely;
//   - a connection may not close a dependency cycle (domain.ErrCycle).
//
// Removing a node cascades to every connection touching it, so no connection
// ever references a missing node. A rejected edit leaves the graph unchanged.
//
// Node iteration follows insertion order. Observers registered with Subscribe
// receive a domain.TopologyEvent after every successful mutation; this is the
// hook the recompute controller uses to react to connection changes.
package graph
