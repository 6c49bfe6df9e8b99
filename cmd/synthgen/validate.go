package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-synthgen/pkg/dataset"
	"github.com/goliatone/go-synthgen/pkg/validation"
)

func newValidateCmd() *cobra.Command {
	var (
		datasetDir string
		visualize  bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a generated dataset for consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetDir == "" {
				return fmt.Errorf("--dataset is required")
			}

			report, err := validation.ValidateDataset(datasetDir)
			if err != nil {
				return err
			}

			cmd.Printf("samples:         %d\n", report.Samples)
			for _, split := range dataset.SplitNames() {
				cmd.Printf("  %-14s %d\n", string(split)+":", report.PerSplit[split])
			}
			cmd.Printf("boxes:           %d\n", report.Boxes)
			cmd.Printf("background-only: %d\n", report.BackgroundOnly)

			for _, issue := range report.Issues {
				cmd.PrintErrf("issue: %s %s: %s\n", issue.Sample, issue.Path, issue.Message)
			}

			if visualize {
				outDir := filepath.Join(datasetDir, "visualizations")
				written, err := validation.Visualize(datasetDir, outDir)
				if err != nil {
					return err
				}
				cmd.Printf("visualizations:  %d written to %s\n", written, outDir)
			}

			if !report.Valid {
				return fmt.Errorf("dataset has %d issues", len(report.Issues))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetDir, "dataset", "", "dataset directory to validate")
	cmd.Flags().BoolVar(&visualize, "visualize", false, "write box-outline previews next to the dataset")

	return cmd
}
