package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/codec"
	"github.com/spf13/cobra"
)

var repairCmd = &cobra.Command{
	Use:   "repair FILE|DIR",
	Short: "Resolve conflicts and write the repaired graph",
	Long: `Breaks cycles, prunes redundant branches and, unless --offline is set, asks
the configured LLM advisor to resolve contradictory and overlapping conditions.
The input file is never modified; use -o to write the repaired graph.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		offline, _ := cmd.Flags().GetBool("offline")
		docID, _ := cmd.Flags().GetString("document")
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		engine, closeStore, err := newEngine(offline, nil)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx := cmd.Context()
		if isDir(args[0]) {
			if out != "" {
				return fmt.Errorf("--output is not supported for directories")
			}
			results, err := runBatch(ctx, engine, args[0], true)
			if err != nil {
				return err
			}
			return printBatch(results, format)
		}

		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		report, err := engine.Repair(ctx, documentID(docID, args[0], doc), doc.Graph)
		if err != nil {
			return err
		}

		if out != "" {
			data, err := codec.Encode(&codec.Document{Graph: report.Graph, Metadata: repairedMetadata(doc.Metadata, report.Graph)}, codec.FormatFor(out))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			logger.Info("repaired graph written", "path", out)
		}
		return printReport(os.Stdout, report, format)
	},
}

// printBatch prints one report per document and fails if any document failed.
func printBatch(results []arbor.BatchResult, format string) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.DocumentID, r.Err)
			continue
		}
		if err := printReport(os.Stdout, r.Report, format); err != nil {
			return err
		}
		if format == formatText {
			fmt.Println()
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(repairCmd)
	repairCmd.Flags().StringP("output", "o", "", "Write the repaired graph to this file (.json, .yaml)")
	repairCmd.Flags().Bool("offline", false, "Do not call the LLM advisor")
	repairCmd.Flags().String("document", "", "Document id recorded in the report (default: metadata or file name)")
	repairCmd.Flags().StringP("format", "f", formatText, "Output format: text, json or markdown")
}
