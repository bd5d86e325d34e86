package commands

import (
	"fmt"
	"log/slog"
	"os"

	"reviewscrape/lib/fetch"

	"github.com/spf13/cobra"
)

var dumpUrl *string
var dumpRender *bool
var dumpOutput *string

func init() {
	dumpUrl = dumpCmd.Flags().String("url", "", "The page to fetch.")
	dumpRender = dumpCmd.Flags().Bool("render", false, "Skip plain http and load the page in a headless browser.")
	dumpOutput = dumpCmd.Flags().String("output", "page.html", "Where to write the page.")
	dumpCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump --url <url> [--render] [--output <path>]",
	Short: "Saves a single page the way the scraper sees it, useful for building test fixtures.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		orchestrator, err := fetch.New(cfg.Fetch, fetch.RenderAuto)
		if err != nil {
			return fmt.Errorf("failed to create fetcher: %w", err)
		}

		var body string
		if *dumpRender {
			body, err = orchestrator.Render(cmd.Context(), *dumpUrl)
		} else {
			body, err = orchestrator.Fetch(cmd.Context(), *dumpUrl, false)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", *dumpUrl, err)
		}

		err = os.WriteFile(*dumpOutput, []byte(body), 0644)
		if err != nil {
			return fmt.Errorf("failed to write page: %w", err)
		}
		slog.Info("saved page", "url", *dumpUrl, "output", *dumpOutput, "bytes", len(body))
		return nil
	},
}
