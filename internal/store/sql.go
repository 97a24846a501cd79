package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/data"
)

// Dialect selects placeholder style and introspection queries
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

// DialectFor maps a database/sql driver name to its dialect
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return DialectPostgres, nil
	case "sqlite3":
		return DialectSQLite, nil
	default:
		return 0, apperror.Developer(CodeUnknownDriver, "unsupported database driver %q", driver)
	}
}

// SQLStore is the database/sql QueryExecutor
type SQLStore struct {
	db      *sql.DB
	qb      squirrel.StatementBuilderType
	dialect Dialect
}

// New wraps an open database
func New(db *sql.DB, dialect Dialect) *SQLStore {
	var format squirrel.PlaceholderFormat = squirrel.Question
	if dialect == DialectPostgres {
		format = squirrel.Dollar
	}
	return &SQLStore{
		db:      db,
		qb:      squirrel.StatementBuilder.PlaceholderFormat(format),
		dialect: dialect,
	}
}

// Open opens a database with a registered driver and verifies the connection
func Open(ctx context.Context, driver, url string) (*SQLStore, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db, dialect), nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database
func (s *SQLStore) DB() *sql.DB { return s.db }

func where(criteria Criteria) squirrel.Eq {
	eq := squirrel.Eq{}
	for k, v := range criteria {
		eq[k] = v
	}
	return eq
}

func criteriaColumns(criteria Criteria) []string {
	names := make([]string, 0, len(criteria))
	for k := range criteria {
		names = append(names, k)
	}
	return names
}

// Select returns the matching rows as column to value maps
func (s *SQLStore) Select(ctx context.Context, table string, columns []string, criteria Criteria, opts *SelectOptions) ([]map[string]interface{}, error) {
	if err := checkIdentifiers(append(append([]string{table}, columns...), criteriaColumns(criteria)...)...); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	query := s.qb.Select(columns...).From(table)
	if len(criteria) > 0 {
		query = query.Where(where(criteria))
	}
	if opts != nil {
		if err := checkIdentifiers(opts.OrderBy...); err != nil {
			return nil, err
		}
		if len(opts.OrderBy) > 0 {
			query = query.OrderBy(opts.OrderBy...)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Offset(opts.Offset)
		}
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, apperror.Developer(CodeQuery, "cannot build select on %s", table).Wrap(err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, apperror.Critical(CodeQuery, "select on %s failed", table).Wrap(err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, apperror.Critical(CodeQuery, "cannot read result columns").Wrap(err)
	}

	var out []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(names))
		ptrs := make([]interface{}, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, apperror.Critical(CodeQuery, "cannot scan row").Wrap(err)
		}
		row := make(map[string]interface{}, len(names))
		for i, name := range names {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Critical(CodeQuery, "row iteration failed").Wrap(err)
	}
	return out, nil
}

// Count returns the number of matching rows
func (s *SQLStore) Count(ctx context.Context, table string, criteria Criteria) (int, error) {
	if err := checkIdentifiers(append([]string{table}, criteriaColumns(criteria)...)...); err != nil {
		return 0, err
	}
	query := s.qb.Select("COUNT(*)").From(table)
	if len(criteria) > 0 {
		query = query.Where(where(criteria))
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, apperror.Developer(CodeQuery, "cannot build count on %s", table).Wrap(err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, apperror.Critical(CodeQuery, "count on %s failed", table).Wrap(err)
	}
	return n, nil
}

// Modify inserts, updates or deletes rows. Updates and deletes require
// criteria so that a missing filter never touches the whole table.
func (s *SQLStore) Modify(ctx context.Context, op Op, table string, values map[string]interface{}, criteria Criteria) (Result, error) {
	valueColumns := make([]string, 0, len(values))
	for k := range values {
		valueColumns = append(valueColumns, k)
	}
	if err := checkIdentifiers(append(append([]string{table}, valueColumns...), criteriaColumns(criteria)...)...); err != nil {
		return Result{}, err
	}

	var (
		stmt string
		args []interface{}
		err  error
	)
	switch op {
	case OpInsert:
		if len(values) == 0 {
			return Result{}, apperror.Developer(CodeNoValues, "insert into %s has no values", table)
		}
		stmt, args, err = s.qb.Insert(table).SetMap(values).ToSql()
	case OpUpdate:
		if len(values) == 0 {
			return Result{}, apperror.Developer(CodeNoValues, "update of %s has no values", table)
		}
		if len(criteria) == 0 {
			return Result{}, apperror.Developer(CodeNoCriteria, "update of %s has no criteria", table)
		}
		stmt, args, err = s.qb.Update(table).SetMap(values).Where(where(criteria)).ToSql()
	case OpDelete:
		if len(criteria) == 0 {
			return Result{}, apperror.Developer(CodeNoCriteria, "delete from %s has no criteria", table)
		}
		stmt, args, err = s.qb.Delete(table).Where(where(criteria)).ToSql()
	default:
		return Result{}, apperror.Developer(CodeBadOperation, "unknown operation %d", int(op))
	}
	if err != nil {
		return Result{}, apperror.Developer(CodeQuery, "cannot build %s on %s", op, table).Wrap(err)
	}

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return Result{}, apperror.Critical(CodeQuery, "%s on %s failed", op, table).Wrap(err)
	}

	var out Result
	out.Affected, _ = res.RowsAffected()
	if op == OpInsert && s.dialect == DialectSQLite {
		out.ID, _ = res.LastInsertId()
	}
	return out, nil
}

// Columns introspects the columns of table in declaration order
func (s *SQLStore) Columns(ctx context.Context, table string) ([]data.ColumnInfo, error) {
	if err := checkIdentifiers(table); err != nil {
		return nil, err
	}
	if s.dialect == DialectSQLite {
		return s.sqliteColumns(ctx, table)
	}
	return s.postgresColumns(ctx, table)
}

func (s *SQLStore) sqliteColumns(ctx context.Context, table string) ([]data.ColumnInfo, error) {
	stmt, args, err := s.qb.
		Select("name", "type", `"notnull"`, "dflt_value", "pk").
		From("pragma_table_info(?)").
		ToSql()
	if err != nil {
		return nil, apperror.Developer(CodeQuery, "cannot build introspection query").Wrap(err)
	}
	args = append([]interface{}{table}, args...)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, apperror.Critical(CodeQuery, "cannot introspect %s", table).Wrap(err)
	}
	defer rows.Close()

	var cols []data.ColumnInfo
	for rows.Next() {
		var (
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, apperror.Critical(CodeQuery, "cannot scan column of %s", table).Wrap(err)
		}
		cols = append(cols, data.ColumnInfo{
			Name:         name,
			Table:        table,
			DatabaseType: typ,
			Nullable:     notNull == 0,
			Length:       lengthOf(typ),
			Key:          pk > 0,
			Default:      dflt.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Critical(CodeQuery, "cannot introspect %s", table).Wrap(err)
	}
	return cols, nil
}

func (s *SQLStore) postgresColumns(ctx context.Context, table string) ([]data.ColumnInfo, error) {
	keys, err := s.postgresPrimaryKey(ctx, table)
	if err != nil {
		return nil, err
	}

	stmt, args, err := s.qb.
		Select("column_name", "udt_name", "is_nullable", "character_maximum_length", "column_default").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": table}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, apperror.Developer(CodeQuery, "cannot build introspection query").Wrap(err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, apperror.Critical(CodeQuery, "cannot introspect %s", table).Wrap(err)
	}
	defer rows.Close()

	var cols []data.ColumnInfo
	for rows.Next() {
		var (
			name, typ, nullable string
			length              sql.NullInt64
			dflt                sql.NullString
		)
		if err := rows.Scan(&name, &typ, &nullable, &length, &dflt); err != nil {
			return nil, apperror.Critical(CodeQuery, "cannot scan column of %s", table).Wrap(err)
		}
		cols = append(cols, data.ColumnInfo{
			Name:         name,
			Table:        table,
			DatabaseType: typ,
			Nullable:     nullable == "YES",
			Length:       length.Int64,
			Key:          keys[name],
			Default:      dflt.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Critical(CodeQuery, "cannot introspect %s", table).Wrap(err)
	}
	return cols, nil
}

func (s *SQLStore) postgresPrimaryKey(ctx context.Context, table string) (map[string]bool, error) {
	stmt, args, err := s.qb.
		Select("kcu.column_name").
		From("information_schema.table_constraints tc").
		Join("information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema").
		Where(squirrel.Eq{"tc.constraint_type": "PRIMARY KEY", "tc.table_name": table}).
		ToSql()
	if err != nil {
		return nil, apperror.Developer(CodeQuery, "cannot build primary key query").Wrap(err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, apperror.Critical(CodeQuery, "cannot read primary key of %s", table).Wrap(err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperror.Critical(CodeQuery, "cannot read primary key of %s", table).Wrap(err)
		}
		keys[name] = true
	}
	return keys, rows.Err()
}

// Tables lists the user tables of the database by name
func (s *SQLStore) Tables(ctx context.Context) ([]string, error) {
	var query squirrel.SelectBuilder
	if s.dialect == DialectSQLite {
		query = s.qb.Select("name").
			From("sqlite_master").
			Where(squirrel.Eq{"type": "table"}).
			Where("name NOT LIKE ?", "sqlite_%").
			OrderBy("name")
	} else {
		query = s.qb.Select("table_name").
			From("information_schema.tables").
			Where(squirrel.Eq{"table_schema": "public", "table_type": "BASE TABLE"}).
			OrderBy("table_name")
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, apperror.Developer(CodeQuery, "cannot build table listing").Wrap(err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, apperror.Critical(CodeQuery, "cannot list tables").Wrap(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperror.Critical(CodeQuery, "cannot list tables").Wrap(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Critical(CodeQuery, "cannot list tables").Wrap(err)
	}
	return names, nil
}

// lengthOf extracts n from declared types such as VARCHAR(n)
func lengthOf(typ string) int64 {
	open := strings.IndexByte(typ, '(')
	end := strings.IndexByte(typ, ')')
	if open < 0 || end < open {
		return 0
	}
	size, _, _ := strings.Cut(typ[open+1:end], ",")
	n, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// TableExists reports whether table exists
func (s *SQLStore) TableExists(ctx context.Context, table string) (bool, error) {
	if err := checkIdentifiers(table); err != nil {
		return false, err
	}

	query := s.qb.Select("COUNT(*)")
	if s.dialect == DialectSQLite {
		query = query.From("sqlite_master").Where(squirrel.Eq{"type": "table", "name": table})
	} else {
		query = query.From("information_schema.tables").Where(squirrel.Eq{"table_name": table})
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return false, apperror.Developer(CodeQuery, "cannot build table lookup").Wrap(err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return false, apperror.Critical(CodeQuery, "table lookup for %s failed", table).Wrap(err)
	}
	return n > 0, nil
}
