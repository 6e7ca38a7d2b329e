package cmd

import (
	"github.com/spf13/cobra"

	"github.com/accountabro/backend/internal/app"
	"github.com/accountabro/backend/internal/config"
)

type queueSummary struct {
	Category string `json:"category"`
	Pending  int    `json:"pending"`
}

func QueueCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "queue <category-slug>",
		Short: "Show how many requests are waiting in a category",
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

			pending, err := a.QueueService.PendingCount(ctx, category.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd, queueSummary{Category: category.Slug, Pending: pending})
		},
	}
}
