package commands

import (
	"github.com/lunagic/hermes/hermes"
	"github.com/spf13/cobra"
)

var scrapeFlags struct {
	start       int
	perWorkbook int
	last        int
	maxBatches  int
}

func init() {
	addScrapeFlags(scrapeCmd)

	rootCmd.AddCommand(scrapeCmd)
}

func addScrapeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVar(&scrapeFlags.start, "start", 0, "first page (overrides SCRAPE_START_PAGE)")
	flags.IntVar(&scrapeFlags.perWorkbook, "per-workbook", 0, "pages per workbook (overrides SCRAPE_PAGES_PER_WORKBOOK)")
	flags.IntVar(&scrapeFlags.last, "last", 0, "exclusive last page, 0 for none (overrides SCRAPE_LAST_PAGE)")
	flags.IntVar(&scrapeFlags.maxBatches, "max-batches", 0, "workbook limit (overrides SCRAPE_MAX_BATCHES)")
}

// scrapeConfig is appConfig with the scrape flags that were given applied.
func scrapeConfig(cmd *cobra.Command) hermes.AppConfig {
	config := appConfig
	flags := cmd.Flags()
	if flags.Changed("start") {
		config.ScrapeStartPage = scrapeFlags.start
	}
	if flags.Changed("per-workbook") {
		config.ScrapePagesPerWorkbook = scrapeFlags.perWorkbook
	}
	if flags.Changed("last") {
		config.ScrapeLastPage = scrapeFlags.last
	}
	if flags.Changed("max-batches") {
		config.ScrapeMaxBatches = scrapeFlags.maxBatches
	}

	return config
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the vehicle search into the database and one workbook per page batch.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := hermes.NewApp(scrapeConfig(cmd))
		if err != nil {
			return err
		}
		defer func() {
			_ = app.Close()
		}()

		summary, err := app.Scrape(cmd.Context())
		printSummary(cmd, summary)

		return err
	},
}

func printSummary(cmd *cobra.Command, summary hermes.Summary) {
	out := cmd.OutOrStdout()

	_, _ = infoColor.Fprintf(out, "run %s\n", summary.RunID)
	for _, workbook := range summary.Workbooks {
		_, _ = infoColor.Fprintf(out, "  workbook %s\n", workbook)
	}
	for _, location := range summary.Published {
		_, _ = infoColor.Fprintf(out, "  published %s\n", location)
	}

	printSuccess(cmd, "%d pages, %d new vehicles, %d skipped, %d refused",
		summary.Pages,
		summary.Added,
		summary.Skipped,
		summary.Refused,
	)
}
