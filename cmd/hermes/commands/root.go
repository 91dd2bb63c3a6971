package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lunagic/hermes/hermes"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/spf13/cobra"
)

var (
	configFile string
	appConfig  hermes.AppConfig
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

var rootCmd = &cobra.Command{
	Use:           "hermes",
	Short:         "hermes scrapes vehicle listings into a database and Excel workbooks.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := hermes.LoadConfig(configFile)
		if err != nil {
			return err
		}
		appConfig = config

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default hermes.{yaml,json,toml} in the working directory)")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = failureColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase() (*database.Service, error) {
	return appConfig.Database(database.WithLogger(appConfig.Logger()))
}

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(cmd.OutOrStdout())
	return t
}

func printSuccess(cmd *cobra.Command, format string, args ...any) {
	_, _ = successColor.Fprintln(cmd.OutOrStdout(), fmt.Sprintf(format, args...))
}
