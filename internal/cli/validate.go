package cli

import (
	"fmt"

	"github.com/xingbinice/wuxianyijin/internal/spreadsheet"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "validate cities|salaries FILE",
		Short:     "Check a spreadsheet offline without storing it",
		Args:      datasetArgs,
		ValidArgs: datasets,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := spreadsheet.ReadFile(args[1])
			if err != nil {
				return err
			}

			n, err := countValid(args[0], rows)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d valid records\n", args[1], n)
			return nil
		},
	}
}
