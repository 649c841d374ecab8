package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/arbor"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check the graph for structural defects",
	Long:  `Reports dangling or self references, malformed targets, misplaced connections and cycles reachable from a root.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := readDocument(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		engine := arbor.New(arbor.WithLogger(logger), arbor.WithTraversalConfig(cfg.Traversal))
		result := engine.Validate(context.Background(), doc.Graph)

		for _, issue := range result.Issues {
			fmt.Printf("[%s] %s\n", issue.Severity, issue.Message)
		}
		if !result.Valid {
			fmt.Printf("Validation failed: %d errors\n", len(result.Errors()))
			os.Exit(1)
		}
		fmt.Println("Graph is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
