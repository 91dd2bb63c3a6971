package commands

import (
	"maps"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var schemaFlags struct {
	force bool
	ttl   time.Duration
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaFlags.force, "force", false, "describe the table again even when the snapshot is fresh")
	schemaCmd.Flags().DurationVar(&schemaFlags.ttl, "ttl", 0, "snapshot lifetime (default SCHEMA_TTL)")

	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema <table>",
	Short: "Show the columns of a table from the schema cache.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() {
			_ = service.Close()
		}()

		ttl := schemaFlags.ttl
		if ttl == 0 {
			ttl = appConfig.SchemaTTL
		}

		fields, err := service.Fields(cmd.Context(), args[0], ttl, schemaFlags.force)
		if err != nil {
			return err
		}

		t := newTable(cmd)
		t.AppendHeader(table.Row{"Field", "Type", "Null", "Key", "Default"})
		for _, name := range slices.Sorted(maps.Keys(fields)) {
			field := fields[name]

			defaultValue := "NULL"
			if field.Default != nil {
				defaultValue = *field.Default
			}

			t.AppendRow(table.Row{field.Field, field.Type, field.Null, field.Key, defaultValue})
		}
		t.Render()

		return nil
	},
}
