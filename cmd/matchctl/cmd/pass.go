package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/accountabro/backend/internal/app"
	"github.com/accountabro/backend/internal/config"
)

// PassCmd runs one matching pass over a category and prints its summary.
func PassCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "pass <category-slug>",
		Short: "Run a matching pass for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			category, err := a.CategoryService.BySlug(ctx, args[0])
			if err != nil {
				return err
			}

			result, err := a.MatchingEngine.RunPass(ctx, category.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
