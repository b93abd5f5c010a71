// Package cli implements the contribctl operator commands.
package cli

import (
	"fmt"

	"github.com/xingbinice/wuxianyijin/internal/ingest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	datasetCities   = "cities"
	datasetSalaries = "salaries"
)

var datasets = []string{datasetCities, datasetSalaries}

// NewRootCommand builds the contribctl command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "contribctl",
		Short:         "Validate and import payroll spreadsheets, then calculate contributions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr while running")

	root.AddCommand(
		newValidateCommand(),
		newImportCommand(),
		newCalculateCommand(),
	)
	return root
}

func datasetArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(2)(cmd, args); err != nil {
		return err
	}
	for _, d := range datasets {
		if args[0] == d {
			return nil
		}
	}
	return fmt.Errorf("unknown dataset %q, want one of %v", args[0], datasets)
}

// countValid runs the ingestion pipeline over rows without storing anything.
func countValid(dataset string, rows []ingest.RawRow) (int, error) {
	if dataset == datasetCities {
		records, err := ingest.Ingest(rows, ingest.CitySchema)
		return len(records), err
	}
	records, err := ingest.Ingest(rows, ingest.SalarySchema)
	return len(records), err
}
