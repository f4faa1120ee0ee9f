/*
Package domain contains the core domain models of the Sluice dataflow engine.

It defines the fundamental entities of a dataflow graph, such as Nodes, Ports,
Connections and the events emitted while the graph is recomputed. This package
is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Node: A unit of computation, tagged by Kind (Value source or Combinator).
  - Port: A named input or output slot on a Node.
  - Connection: A directed edge from one node's output port to another's input port.
  - PassEvent / NodeEvent: Observability payloads emitted by the recompute runtime.
*/
package domain
