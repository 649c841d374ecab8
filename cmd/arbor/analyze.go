package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE|DIR",
	Short: "Detect conflicts without changing the graph",
	Long: `Validates the graph and runs every conflict detector: contradictory paths,
circular dependencies, redundant paths and overlapping conditions.
Given a directory, every .json/.yaml document under it is analyzed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		engine, closeStore, err := newEngine(true, nil)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx := cmd.Context()
		if isDir(args[0]) {
			results, err := runBatch(ctx, engine, args[0], false)
			if err != nil {
				return err
			}
			return printBatch(results, format)
		}

		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		report, err := engine.Analyze(ctx, documentID("", args[0], doc), doc.Graph)
		if err != nil {
			return err
		}
		if err := printReport(os.Stdout, report, format); err != nil {
			return err
		}
		if !report.Clean() {
			return fmt.Errorf("%d conflicts found", len(report.Conflicts))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("format", "f", formatText, "Output format: text, json or markdown")
}
