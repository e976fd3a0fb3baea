package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func lookupCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "lookup <query>",
		Short: "Look up a median price estimate for a card",
		Long: "Sends a price lookup to the API server and displays the median of\n" +
			"active eBay Canada listings matching the query.",
		Example: `  cstash lookup "2023 Connor McDavid RC PSA 10"
  cstash lookup "1986 Fleer Jordan" --limit 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, args[0], limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum listings to consider (server default 10)")

	return cmd
}

func runLookup(cmd *cobra.Command, query string, limit int) error {
	result, err := newClient().PriceLookup(cmd.Context(), query, limit)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return outputJSON(result)
	}

	tw := newTabWriter(os.Stdout)
	tw.writef("Marketplace:\t%s\n", result.Marketplace)
	tw.writef("Query:\t%s\n", result.Query)
	tw.writef("Median:\t%s\n", formatEstimate(result.MedianPriceCAD))
	tw.writef("Listings:\t%d\n", len(result.Results))
	if err := tw.finish(); err != nil {
		return err
	}

	if len(result.Results) == 0 {
		return nil
	}

	fmt.Println()
	tw = newTabWriter(os.Stdout)
	tw.writef("TITLE\tPRICE\tCONDITION\n")
	for i := range result.Results {
		item := &result.Results[i]
		tw.writef("%s\t%s %s\t%s\n",
			truncate(item.Title, 50),
			item.Price.Value,
			item.Price.Currency,
			item.Condition,
		)
	}
	return tw.finish()
}
