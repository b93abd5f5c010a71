package cli

import (
	"context"
	"fmt"

	"github.com/xingbinice/wuxianyijin/internal/app"
	"github.com/xingbinice/wuxianyijin/internal/bootstrap"
	"github.com/xingbinice/wuxianyijin/internal/config"
	"github.com/xingbinice/wuxianyijin/internal/spreadsheet"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "import cities|salaries FILE",
		Short:     "Validate a spreadsheet and store it in the configured database",
		Args:      datasetArgs,
		ValidArgs: datasets,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := spreadsheet.ReadFile(args[1])
			if err != nil {
				return err
			}

			return withServices(cmd.Context(), func(ctx context.Context, services app.Services) error {
				var msg string
				if args[0] == datasetCities {
					resp, err := services.CityRates.Import(ctx, rows)
					if err != nil {
						return err
					}
					msg = resp.Message
				} else {
					resp, err := services.Salaries.Import(ctx, rows)
					if err != nil {
						return err
					}
					msg = resp.Message
				}

				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
}

// withServices connects the configured infrastructure for the duration of fn.
func withServices(ctx context.Context, fn func(ctx context.Context, services app.Services) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := zap.L().Named("cli")
	infra, err := app.ConnectInfra(cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	services, err := app.NewServices(infra.DB, infra.Redis, cfg, bootstrap.NewStdoutAuditLogger(), zap.L())
	if err != nil {
		return err
	}
	return fn(ctx, services)
}
