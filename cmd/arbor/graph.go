package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/analysis"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph FILE",
	Short: "Export the decision tree visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the decision tree. With --conflicts, nodes implicated in a conflict are coloured by severity.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withConflicts, _ := cmd.Flags().GetBool("conflicts")

		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.ConflictOverlay
		if withConflicts {
			overlay = graph.NewConflictOverlay(analysis.DetectAll(doc.Graph))
		}
		fmt.Print(graph.GenerateMermaid(doc.Graph, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("conflicts", false, "Highlight nodes implicated in conflicts")
}
