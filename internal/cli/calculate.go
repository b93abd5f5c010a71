package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xingbinice/wuxianyijin/internal/app"

	"github.com/spf13/cobra"
)

func newCalculateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Run a contribution calculation over everything in storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, services app.Services) error {
				resp, err := services.Contributions.Calculate(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(resp)
				}

				fmt.Fprintf(out, "%s (run %s)\n", resp.Message, resp.RunID)
				for _, r := range resp.Results {
					fmt.Fprintf(out, "%s\t%s\tbase=%.2f\tpersonal=%.2f\tcompany=%.2f\tnet=%.2f\n",
						r.EmployeeID, r.EmployeeName, r.ContributionBase,
						r.TotalPersonalFee, r.TotalCompanyFee, r.NetSalary)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}
