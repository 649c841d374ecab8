/*
Package arbor checks decision trees for structural defects and logical conflicts, and repairs what it can.

A decision tree is a graph of question nodes, whose labelled connections lead to other nodes, and outcome nodes that carry a final decision. Trees produced by generators or edited by hand drift: edges point at missing nodes, branches loop back on themselves, the same question answers differently in two places. Arbor finds those defects and proposes targeted repairs.

# Pipeline

Every run goes through three stages:

  - Structural validation: referential integrity, malformed targets, self references and reachable cycles (internal/validator).
  - Conflict detection: contradictory paths, circular dependencies, redundant paths and overlapping conditions (pkg/analysis).
  - Resolution: cycles are broken and redundant branches pruned locally; contradictions and overlaps are sent to a RepairAdvisor, usually a chat model (pkg/resolver).

The input graph is never mutated. Repair works on a copy, detects again on the result and reports what is left.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/adapters/llm"
	)

	func main() {
		advisor, err := llm.New(llm.Config{APIKey: os.Getenv("OPENAI_API_KEY")})
		if err != nil {
			log.Fatal(err)
		}
		engine := arbor.New(arbor.WithAdvisor(advisor))

		report, err := engine.Repair(context.Background(), "loan", graph)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%d resolved, %d remaining\n", len(report.Resolved), len(report.Remaining))
	}

Reports are persisted in a ports.ReportStore (memory by default; file and Redis adapters are provided) and can be read back with Engine.Report.
Whole directories of documents are processed with Engine.AnalyzeAll and Engine.RepairAll.
*/
package arbor
