package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cardstash/cardstash/internal/ingest"
	"github.com/cardstash/cardstash/pkg/logger"
)

func addCmd() *cobra.Command {
	var fields ingest.FormFields

	cmd := &cobra.Command{
		Use:   "add <image>",
		Short: "Upload a card photo and save it to the collection",
		Long: "Runs the full ingestion flow for one card photo: builds a lookup\n" +
			"query from the supplied fields (or the file name), fetches a median\n" +
			"estimate, derives flags from the same text, and saves the card.\n" +
			"A failed price lookup saves the card without an estimate; a failed\n" +
			"save aborts without adding anything.",
		Example: `  cstash add scans/mcdavid.jpg --year 2023 --player "Connor McDavid" --brand "Upper Deck"
  cstash add scans/gretzky_rookie.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], fields)
		},
	}

	cmd.Flags().StringVar(&fields.Sport, "sport", "", "sport")
	cmd.Flags().StringVar(&fields.Player, "player", "", "player name")
	cmd.Flags().StringVar(&fields.Year, "year", "", "year")
	cmd.Flags().StringVar(&fields.Brand, "brand", "", "brand")
	cmd.Flags().StringVar(&fields.SetName, "set", "", "set name")
	cmd.Flags().StringVar(&fields.CardNumber, "number", "", "card number")

	return cmd
}

func runAdd(cmd *cobra.Command, path string, fields ingest.FormFields) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied CLI argument
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	upload := ingest.Upload{
		FileName:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
		Fields:      fields,
	}

	log := logger.New("warn", "text")
	o := ingest.NewOrchestrator(newClient(), log)
	session := &ingest.Session{}

	result, err := o.Run(cmd.Context(), session, upload)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return outputJSON(result)
	}

	fmt.Printf("Saved card (query %q)\n\n", result.Guess)
	if result.Price.MedianCAD == nil {
		fmt.Printf("No estimate: %s\n\n", result.Price.Unavailable)
	}
	if err := printCardDetail(result.Card); err != nil {
		return err
	}

	fmt.Printf("\nSession total:\t$%.2f CAD (%d cards)\n", session.Total(), len(session.Cards))
	return nil
}
