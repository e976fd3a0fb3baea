package cmd

import (
	"github.com/spf13/cobra"
)

func cardsCmd() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List the collection with its derived total",
		Example: `  cstash cards
  cstash cards --limit 20 --offset 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCards(cmd, limit, offset)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum cards to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "cards to skip")

	return cmd
}

func runCards(cmd *cobra.Command, limit, offset int) error {
	c := newClient()

	list, err := c.ListCards(cmd.Context(), limit, offset)
	if err != nil {
		return err
	}

	value, err := c.GetCollectionValue(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput() {
		return outputJSON(map[string]any{
			"cards":     list.Cards,
			"total":     list.Total,
			"total_cad": value.TotalCAD,
		})
	}

	return printCardsTable(list.Cards, value.TotalCAD)
}
