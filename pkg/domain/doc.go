/*
Package domain contains the core models of the Arbor analysis engine.

It defines the decision graph (Nodes, Connections, Graph), the analysis results
that flow through the engine (Conflict, ValidationResult), the repair vocabulary
(Resolution, Modification, Resolved) and the persisted Report. The package is kept
pure and free of I/O so every other layer can depend on it.

# Key Entities

  - Node: a question (decision point) or an outcome (terminal label).
  - Connection: a labeled edge. The codec records how the target arrived on the
    wire so the structural validator can report nested or invalid targets.
  - Graph: nodes keyed by id, optionally with an explicit start. Cycles are allowed.
  - Conflict: one of four defect kinds, each with its own payload.
  - Resolution: an advisor's proposed edits for a semantic conflict.
  - Report: validation, conflicts and repair summary for one document.
*/
package domain
