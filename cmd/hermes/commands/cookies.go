package commands

import (
	"github.com/lunagic/hermes/hermes"
	"github.com/spf13/cobra"
)

func init() {
	cookiesCmd.AddCommand(cookiesSealCmd)
	rootCmd.AddCommand(cookiesCmd)
}

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manage the site session cookie file.",
}

var cookiesSealCmd = &cobra.Command{
	Use:   "seal <cookie file> <sealed file>",
	Short: "Seal a cookie file with APP_KEY. Set SITE_COOKIE_SEALED=true to scrape with it.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := appConfig.Vault()
		if err != nil {
			return err
		}

		if err := hermes.SealCookies(args[0], args[1], v); err != nil {
			return err
		}

		printSuccess(cmd, "sealed %s into %s", args[0], args[1])

		return nil
	},
}
