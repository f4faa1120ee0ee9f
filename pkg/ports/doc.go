/*
Package ports defines the driven ports (interfaces) for the Sluice engine.
These interfaces decouple the recompute core from external implementations,
allowing the engine to push results to various display sinks and to read
graph definitions from various sources.

# Key Interfaces

  - DisplayNotifier: Receives the freshly computed mirrored value of a node after each recompute.
  - DisplayMirror: A DisplayNotifier whose last known values can be read back.
  - DefinitionLoader: Responsible for loading graph definitions (e.g., from YAML or HCL files).
  - DistributedLocker: Provides distributed locking so replicas do not interleave passes.
*/
package ports
