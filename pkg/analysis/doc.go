/*
Package analysis finds defects in decision graphs.

It provides the full-graph cycle search, simple-path enumeration and the four
conflict detectors:

  - contradictory_paths: question nodes sharing a predicate but reaching
    different outcome labels.
  - circular_dependency: one conflict per cycle.
  - redundant_paths: distinct paths to the same outcome with identical
    condition signatures.
  - overlapping_conditions: question pairs whose predicates share at least two
    significant words. The check is lexical, not semantic entailment, and both
    over- and under-reports real overlaps.

Every function is a pure function of its input graph and iterates node ids in
sorted order, so repeated calls on an unmodified graph give identical results.
*/
package analysis
