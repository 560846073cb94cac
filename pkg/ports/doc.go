/*
Package ports defines the driven ports (interfaces) of the flow graph service.

These interfaces decouple flow handling from storage backends and
coordination primitives.

# Key Interfaces

  - FlowStore: persists and loads flow definitions (memory, file, Redis).
  - DistributedLocker: serializes writers of the same flow across replicas.

A reusable contract suite for FlowStore implementations lives in the tests
subpackage.
*/
package ports
