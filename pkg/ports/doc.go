/*
Package ports defines the driven ports (interfaces) for the Arbor engine.

These interfaces decouple the analysis core from external implementations, allowing
the engine to work with various report stores, document sources and repair advisors.

# Key Interfaces

  - RepairAdvisor: the external text-generation collaborator that proposes a
    Resolution for contradictory and overlapping conflicts.
  - DocumentLoader: Responsible for listing and reading raw graph documents.
  - ReportStore: Responsible for persisting and loading analysis Reports.
  - DistributedLocker: Provides distributed locking so one document is repaired by
    one replica at a time.
  - Engine: the facade consumed by driving adapters (HTTP, MCP).
*/
package ports
