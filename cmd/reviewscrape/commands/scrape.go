package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"reviewscrape/lib/chrono"
	"reviewscrape/lib/fetch"
	"reviewscrape/lib/restyutil"
	"reviewscrape/lib/reviewstore"
	"reviewscrape/lib/scrapers/reviews"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type scrapeFlags struct {
	company     string
	start       string
	end         string
	source      string
	output      string
	useBrowser  bool
	noBrowser   bool
	proxy       string
	renderProxy string
	maxPages    int
	db          string
	dumpHttp    string
}

var scrapeArgs scrapeFlags

func init() {
	flags := scrapeCmd.Flags()
	flags.StringVar(&scrapeArgs.company, "company", "", "Company or product name to look up.")
	flags.StringVar(&scrapeArgs.start, "start", "", "First day of the date range, e.g. 2023-01-01.")
	flags.StringVar(&scrapeArgs.end, "end", "", "Last day of the date range, inclusive.")
	flags.StringVar(&scrapeArgs.source, "source", reviews.SelectAll, "One of g2, capterra, trustradius or all.")
	flags.StringVar(&scrapeArgs.output, "output", "reviews.json", "Where to write the reviews.")
	flags.BoolVar(&scrapeArgs.useBrowser, "use-browser", false, "Render a page in a headless browser whenever fetching it fails.")
	flags.BoolVar(&scrapeArgs.noBrowser, "no-browser", false, "Never start a headless browser, not even for blocked pages.")
	flags.StringVar(&scrapeArgs.proxy, "proxy", "", "Proxy url for plain http requests.")
	flags.StringVar(&scrapeArgs.renderProxy, "render-proxy", "", "Proxy url for the headless browser.")
	flags.IntVar(&scrapeArgs.maxPages, "max-pages", 0, "Stop following pagination after this many pages per source, 0 means no limit.")
	flags.StringVar(&scrapeArgs.db, "db", "", "Also archive the run into this sqlite database.")
	flags.StringVar(&scrapeArgs.dumpHttp, "dump-http", "", "Write every http request and response into this directory (needs --verbose).")
	scrapeCmd.MarkFlagRequired("company")
	scrapeCmd.MarkFlagRequired("start")
	scrapeCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(scrapeCmd)
}

func (f scrapeFlags) request() (reviews.Request, error) {
	start, err := chrono.Parse(f.start)
	if err != nil {
		return reviews.Request{}, fmt.Errorf("--start: %w", err)
	}
	end, err := chrono.Parse(f.end)
	if err != nil {
		return reviews.Request{}, fmt.Errorf("--end: %w", err)
	}
	sources, err := reviews.ParseSelector(f.source)
	if err != nil {
		return reviews.Request{}, fmt.Errorf("--source: %w", err)
	}
	req := reviews.Request{
		Company:    f.company,
		Start:      start,
		End:        end,
		Selector:   f.source,
		Sources:    sources,
		RenderHint: f.useBrowser,
	}
	return req, req.Validate()
}

func (f scrapeFlags) renderMode() fetch.RenderMode {
	if f.noBrowser {
		return fetch.RenderOff
	}
	return fetch.RenderAuto
}

// apply lets flags that were given override the config file.
func (f scrapeFlags) apply(cfg Config) Config {
	if f.proxy != "" {
		cfg.Fetch.Proxy = f.proxy
	}
	if f.renderProxy != "" {
		cfg.Fetch.Render.Proxy = f.renderProxy
	}
	if f.maxPages > 0 {
		cfg.MaxPages = f.maxPages
	}
	if f.db != "" {
		cfg.Db = f.db
	}
	return cfg
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape --company <name> --start <date> --end <date> [--source <source>] [--output <path>]",
	Short: "Collects reviews posted within a date range and writes them to a json file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := scrapeArgs.request()
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}

		cfg, err := readConfig()
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		cfg = scrapeArgs.apply(cfg)

		if scrapeArgs.dumpHttp != "" {
			output, err := restyutil.NewFilesystemOutput(scrapeArgs.dumpHttp)
			if err != nil {
				return fmt.Errorf("failed to create http dump directory: %w", err)
			}
			cfg.Fetch.Instrument = output
		}

		orchestrator, err := fetch.New(cfg.Fetch, scrapeArgs.renderMode())
		if err != nil {
			return fmt.Errorf("failed to create fetcher: %w", err)
		}
		if req.RenderHint && !orchestrator.CanRender() {
			slog.Warn("--use-browser was given but no browser is available, continuing with plain requests")
			req.RenderHint = false
		}

		scraper := reviews.NewScraper(orchestrator, cfg.scraperOptions())
		report, err := scraper.Scrape(ctx, req)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}

		err = reviews.WriteReport(scrapeArgs.output, report)
		if err != nil {
			return fmt.Errorf("failed to write reviews: %w", err)
		}
		slog.Info("saved reviews", "count", len(report.Reviews), "output", scrapeArgs.output)

		if cfg.Db != "" {
			archive(ctx, cfg.Db, report)
		}

		printSummary(report)
		return nil
	},
}

func archive(ctx context.Context, path string, report reviews.Report) {
	store, err := reviewstore.Open(ctx, path)
	if err != nil {
		slog.Error("failed to open archive", "db", path, "err", err)
		return
	}
	defer store.Close()

	id, err := store.Save(ctx, report)
	if err != nil {
		slog.Error("failed to archive run", "db", path, "err", err)
		return
	}
	slog.Info("archived run", "db", path, "run", id)
}

func summaryTable(report reviews.Report) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Source", "Company page", "Pages", "Reviews", "Status"})
	for _, o := range report.Outcomes {
		status := "ok"
		if o.Err != nil {
			status = o.Err.Error()
		}
		t.AppendRow(table.Row{o.Source, o.URL, o.Pages, o.Reviews, status})
	}
	t.AppendFooter(table.Row{"", "", "", len(report.Reviews), ""})
	t.SetStyle(table.StyleRounded)
	return t
}

func printSummary(report reviews.Report) {
	t := summaryTable(report)
	t.SetOutputMirror(os.Stdout)
	t.Render()
}
