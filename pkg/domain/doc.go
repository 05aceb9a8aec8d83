/*
Package domain contains the data model shared by the trace engine, the playback
controller and every presentation adapter.

It is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Graph: a weighted directed graph keyed by non-negative Vertex identifiers.
  - DistanceTable: best known distance per vertex, with Infinite for unreached ones.
  - Step: one immutable snapshot of the algorithm (kind, distances, visited set, focus, message, listing line).
  - StepDetail: the kind-specific payload of a Step.
  - Trace: the full ordered sequence of steps for one run, plus the final predecessor map.
  - LifecycleHooks: callbacks for builds, renders and playback state changes.
*/
package domain
