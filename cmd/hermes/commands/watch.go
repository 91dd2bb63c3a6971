package commands

import (
	"time"

	"github.com/lunagic/hermes/hermes"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

func init() {
	addScrapeFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "every", 0, "time between scrapes (default SCRAPE_INTERVAL)")

	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scrape on a schedule until interrupted. Hosts sharing a redis cache take turns.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := scrapeConfig(cmd)

		interval := watchInterval
		if interval == 0 {
			interval = config.ScrapeInterval
		}

		app, err := hermes.NewApp(config)
		if err != nil {
			return err
		}
		defer func() {
			_ = app.Close()
		}()

		return app.Watch(cmd.Context(), interval, func(summary hermes.Summary, err error) {
			printSummary(cmd, summary)
			if err != nil {
				_, _ = failureColor.Fprintln(cmd.ErrOrStderr(), err)
			}
		})
	},
}
