package database

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Builder composes statements against a single table.
type Builder struct {
	service         *Service
	table           string
	conflictColumns []string
}

func (service *Service) Builder(table string) (*Builder, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: no table bound", ErrConfiguration)
	}

	return &Builder{
		service: service,
		table:   table,
	}, nil
}

func (builder *Builder) Table() string {
	return builder.table
}

// WithConflictColumns sets the unique columns used by Upsert on dialects
// that name them explicitly.
func (builder *Builder) WithConflictColumns(columns ...string) *Builder {
	builder.conflictColumns = columns
	return builder
}

func (builder *Builder) SelectStatement(query SelectQuery) (Statement, error) {
	if err := query.Limit.validate(); err != nil {
		return Statement{}, err
	}

	b := newBinder()

	where, err := whereFragment(query.Where, b)
	if err != nil {
		return Statement{}, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ", columnsFragment(query.Columns), builder.table, where)

	if len(query.Group) > 0 {
		sql += " GROUP BY " + orderFragment(query.Group)
	}

	if len(query.Having) > 0 {
		having, err := whereFragment(query.Having, b)
		if err != nil {
			return Statement{}, err
		}
		sql += " HAVING " + having
	}

	if len(query.Order) > 0 {
		sql += " ORDER BY " + orderFragment(query.Order)
	}

	if !query.Limit.IsZero() {
		sql += " LIMIT " + builder.service.driver.generateLimit(query.Limit)
	}

	return b.statement(sql, statementKindQuery), nil
}

func (builder *Builder) InsertStatement(values Values) (Statement, error) {
	if len(values) == 0 {
		return Statement{}, fmt.Errorf("%w: insert into %s has no values", ErrArgument, builder.table)
	}

	b := newBinder()
	columns := values.columns()
	placeholders := []string{}
	for _, column := range columns {
		placeholders = append(placeholders, b.bind(values[column]))
	}

	return b.statement(
		builder.service.driver.generateInsert(builder.table, columns, placeholders),
		statementKindExecute,
	), nil
}

func (builder *Builder) UpsertStatement(values Values) (Statement, error) {
	if len(values) == 0 {
		return Statement{}, fmt.Errorf("%w: upsert into %s has no values", ErrArgument, builder.table)
	}

	b := newBinder()
	columns := values.columns()
	placeholders := []string{}
	for _, column := range columns {
		placeholders = append(placeholders, b.bind(values[column]))
	}

	sql, err := builder.service.driver.generateUpsert(builder.table, columns, placeholders, builder.conflictColumns)
	if err != nil {
		return Statement{}, err
	}

	return b.statement(sql, statementKindExecute), nil
}

func (builder *Builder) UpdateStatement(query UpdateQuery) (Statement, error) {
	if len(query.Set) == 0 {
		return Statement{}, fmt.Errorf("%w: update of %s has no values", ErrArgument, builder.table)
	}

	b := newBinder()
	columns := query.Set.columns()
	placeholders := []string{}
	for _, column := range columns {
		placeholders = append(placeholders, b.bind(query.Set[column]))
	}

	where, err := whereFragment(query.Where, b)
	if err != nil {
		return Statement{}, err
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s ", builder.table, joinComma(assignments(columns, placeholders)), where)

	tail, err := builder.mutationTail(query.Order, query.Limit)
	if err != nil {
		return Statement{}, err
	}

	return b.statement(sql+tail, statementKindExecute), nil
}

func (builder *Builder) DeleteStatement(query DeleteQuery) (Statement, error) {
	if len(query.Where) == 0 {
		return Statement{}, fmt.Errorf("%w: delete from %s needs a where clause, use Everything to clear the table", ErrArgument, builder.table)
	}

	b := newBinder()

	where, err := whereFragment(query.Where, b)
	if err != nil {
		return Statement{}, err
	}

	tail, err := builder.mutationTail(query.Order, query.Limit)
	if err != nil {
		return Statement{}, err
	}

	return b.statement(fmt.Sprintf("DELETE FROM %s WHERE %s", builder.table, where)+tail, statementKindExecute), nil
}

func (builder *Builder) mutationTail(order Order, limit Limit) (string, error) {
	if err := limit.validate(); err != nil {
		return "", err
	}

	if len(order) == 0 && limit.IsZero() {
		return "", nil
	}

	if !builder.service.driver.supportsMutationOrderLimit() {
		return "", fmt.Errorf("%w: dialect does not support order or limit on %s", ErrArgument, builder.table)
	}

	if limit.Offset > 0 {
		return "", fmt.Errorf("%w: update and delete limits take no offset", ErrArgument)
	}

	tail := ""
	if len(order) > 0 {
		tail += " ORDER BY " + orderFragment(order)
	}

	if !limit.IsZero() {
		tail += " LIMIT " + LimitTo(limit.Count).String()
	}

	return tail, nil
}

func (builder *Builder) Select(ctx context.Context, query SelectQuery) (Result, error) {
	statement, err := builder.SelectStatement(query)
	if err != nil {
		return Result{}, err
	}

	return builder.service.Execute(ctx, statement)
}

func (builder *Builder) Insert(ctx context.Context, values Values) (Result, error) {
	statement, err := builder.InsertStatement(values)
	if err != nil {
		return Result{}, err
	}

	return builder.service.Execute(ctx, statement)
}

func (builder *Builder) Upsert(ctx context.Context, values Values) (Result, error) {
	statement, err := builder.UpsertStatement(values)
	if err != nil {
		return Result{}, err
	}

	return builder.service.Execute(ctx, statement)
}

func (builder *Builder) Update(ctx context.Context, query UpdateQuery) (Result, error) {
	statement, err := builder.UpdateStatement(query)
	if err != nil {
		return Result{}, err
	}

	return builder.service.Execute(ctx, statement)
}

func (builder *Builder) Delete(ctx context.Context, query DeleteQuery) (Result, error) {
	statement, err := builder.DeleteStatement(query)
	if err != nil {
		return Result{}, err
	}

	return builder.service.Execute(ctx, statement)
}

// Describe returns the cached column layout of the table.
func (builder *Builder) Describe(ctx context.Context, ttl time.Duration, force bool) (Schema, error) {
	return builder.service.Describe(ctx, builder.table, ttl, force)
}

func (builder *Builder) Fields(ctx context.Context, ttl time.Duration, force bool) (map[string]FieldInfo, error) {
	return builder.service.Fields(ctx, builder.table, ttl, force)
}

func joinComma(parts []string) string {
	return strings.Join(parts, ",")
}
