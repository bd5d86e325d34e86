package commands

import (
	"fmt"
	"os"
	"time"

	"reviewscrape/lib/reviewstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsDb *string

func init() {
	runsDb = runsCmd.Flags().String("db", "reviews.db", "The archive to read.")
	rootCmd.AddCommand(runsCmd)
}

func runsTable(runs []reviewstore.Run) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Run", "Company", "Source", "Start", "End", "Scraped at", "Reviews"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.Company,
			r.Source,
			r.Start.String(),
			r.End.String(),
			r.CreatedAt.Format(time.DateTime),
			r.ReviewCount,
		})
	}
	t.SetStyle(table.StyleRounded)
	return t
}

var runsCmd = &cobra.Command{
	Use:   "runs [--db <path>]",
	Short: "Lists the scrape runs archived in a database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// opening would create an empty archive
		if _, err := os.Stat(*runsDb); err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		store, err := reviewstore.Open(cmd.Context(), *runsDb)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer store.Close()

		runs, err := store.Runs(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		t := runsTable(runs)
		t.SetOutputMirror(os.Stdout)
		t.Render()
		return nil
	},
}
