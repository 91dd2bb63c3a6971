package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/spf13/cobra"
)

// statementFlags describe one statement on the command line.
type statementFlags struct {
	columns  []string
	where    []string
	or       bool
	all      bool
	set      map[string]string
	order    []string
	limit    string
	conflict []string
	execute  bool
}

var sqlFlags = statementFlags{}

func init() {
	flags := sqlCmd.Flags()
	flags.StringSliceVar(&sqlFlags.columns, "column", nil, "selected columns (default *)")
	flags.StringArrayVar(&sqlFlags.where, "where", nil, `condition as "column:leaf" with the leaf starting with its operator, e.g. "length:>= 4.2" or "site_id:=9"; without a colon the text is used as is`)
	flags.BoolVar(&sqlFlags.or, "or", false, "join the conditions with or instead of and")
	flags.BoolVar(&sqlFlags.all, "all", false, "match every row, needed to update or delete without conditions")
	flags.StringToStringVar(&sqlFlags.set, "set", nil, "column=value to insert, upsert or update")
	flags.StringArrayVar(&sqlFlags.order, "order", nil, "order column, prefixed with - for descending")
	flags.StringVar(&sqlFlags.limit, "limit", "", `"count" or "offset,count"`)
	flags.StringSliceVar(&sqlFlags.conflict, "conflict", nil, "conflict columns for upsert on postgres and sqlite")
	flags.BoolVar(&sqlFlags.execute, "execute", false, "run the statement instead of printing it")

	rootCmd.AddCommand(sqlCmd)
}

var sqlCmd = &cobra.Command{
	Use:       "sql <select|insert|upsert|update|delete> <table>",
	Short:     "Compose a statement and print it, or run it with --execute.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"select", "insert", "upsert", "update", "delete"},
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() {
			_ = service.Close()
		}()

		builder, err := service.Builder(args[1])
		if err != nil {
			return err
		}

		statement, err := sqlFlags.compose(builder, args[0])
		if err != nil {
			return err
		}

		if !sqlFlags.execute {
			_, _ = infoColor.Fprintln(cmd.OutOrStdout(), statement.String())
			return nil
		}

		result, err := service.Execute(cmd.Context(), statement)
		if err != nil {
			return err
		}

		if len(result.Columns) > 0 {
			printRows(cmd, result)
		}
		printSuccess(cmd, "%d rows affected", result.RowsAffected)

		return nil
	},
}

func (flags statementFlags) compose(builder *database.Builder, verb string) (database.Statement, error) {
	where, err := flags.whereClause()
	if err != nil {
		return database.Statement{}, err
	}

	order := flags.orderClause()

	limit := database.Limit{}
	if flags.limit != "" {
		limit, err = database.ParseLimit(flags.limit)
		if err != nil {
			return database.Statement{}, err
		}
	}

	values := database.Values{}
	for column, value := range flags.set {
		values[column] = value
	}

	switch verb {
	case "select":
		return builder.SelectStatement(database.SelectQuery{
			Columns: flags.columns,
			Where:   where,
			Order:   order,
			Limit:   limit,
		})
	case "insert":
		return builder.InsertStatement(values)
	case "upsert":
		return builder.WithConflictColumns(flags.conflict...).UpsertStatement(values)
	case "update":
		if len(where) == 0 {
			return database.Statement{}, fmt.Errorf("%w: update needs --where or --all", database.ErrArgument)
		}
		return builder.UpdateStatement(database.UpdateQuery{
			Set:   values,
			Where: where,
			Order: order,
			Limit: limit,
		})
	case "delete":
		return builder.DeleteStatement(database.DeleteQuery{
			Where: where,
			Order: order,
			Limit: limit,
		})
	}

	return database.Statement{}, fmt.Errorf("%w: unknown statement %q", database.ErrArgument, verb)
}

func (flags statementFlags) whereClause() (database.Where, error) {
	if flags.all {
		if len(flags.where) > 0 {
			return nil, fmt.Errorf("%w: --all cannot be combined with --where", database.ErrArgument)
		}
		return database.Everything, nil
	}

	where := database.Where{}
	for _, expression := range flags.where {
		condition := database.Raw(expression)
		if column, leaf, found := strings.Cut(expression, ":"); found {
			condition = database.Match(strings.TrimSpace(column), leaf)
		}

		if flags.or && len(where) > 0 {
			condition = database.Or(condition)
		}
		where = append(where, condition)
	}

	return where, nil
}

func (flags statementFlags) orderClause() database.Order {
	order := database.Order{}
	for _, column := range flags.order {
		if name, found := strings.CutPrefix(column, "-"); found {
			order = append(order, database.Desc(name))
			continue
		}
		order = append(order, database.Asc(column))
	}

	return order
}

func printRows(cmd *cobra.Command, result database.Result) {
	t := newTable(cmd)

	header := table.Row{}
	for _, column := range result.Columns {
		header = append(header, column)
	}
	t.AppendHeader(header)

	for _, row := range result.Rows {
		line := table.Row{}
		for _, column := range result.Columns {
			line = append(line, row[column])
		}
		t.AppendRow(line)
	}

	t.Render()
}
