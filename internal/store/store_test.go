package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/cache"
	"github.com/conduit-lang/recordtree/internal/data"
)

func newMock(t *testing.T, dialect Dialect) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, dialect), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestSQLStore_Select(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)

	mock.ExpectQuery(q("SELECT id, title FROM posts WHERE status = ? ORDER BY title LIMIT 10 OFFSET 20")).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(int64(1), []byte("First")).
			AddRow(int64(2), nil))

	rows, err := s.Select(context.Background(), "posts", []string{"id", "title"},
		Criteria{"status": "1"}, &SelectOptions{OrderBy: []string{"title"}, Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "First", rows[0]["title"])
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Nil(t, rows[1]["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SelectPostgresPlaceholders(t *testing.T) {
	s, mock := newMock(t, DialectPostgres)

	mock.ExpectQuery(q("SELECT * FROM posts WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	rows, err := s.Select(context.Background(), "posts", nil, Criteria{"id": 7}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SelectErrors(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)

	_, err := s.Select(context.Background(), "posts; DROP TABLE x", nil, nil, nil)
	assert.Equal(t, CodeBadIdentifier, apperror.CodeOf(err))

	_, err = s.Select(context.Background(), "posts", []string{"id"}, Criteria{"1=1 OR id": 1}, nil)
	assert.Equal(t, CodeBadIdentifier, apperror.CodeOf(err))

	mock.ExpectQuery(q("SELECT id FROM posts")).WillReturnError(errors.New("connection reset"))
	_, err = s.Select(context.Background(), "posts", []string{"id"}, nil, nil)
	assert.True(t, apperror.IsCritical(err))
	assert.Equal(t, CodeQuery, apperror.CodeOf(err))
}

func TestSQLStore_Count(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts WHERE status = ?")).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := s.Count(context.Background(), "posts", Criteria{"status": "1"})
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestSQLStore_Modify(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)
	ctx := context.Background()

	mock.ExpectExec(q("INSERT INTO posts")).
		WithArgs("1", "Hello").
		WillReturnResult(sqlmock.NewResult(42, 1))
	res, err := s.Modify(ctx, OpInsert, "posts", map[string]interface{}{"title": "Hello", "status": "1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{ID: 42, Affected: 1}, res)

	mock.ExpectExec(q("UPDATE posts SET title = ? WHERE id = ?")).
		WithArgs("Bye", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	res, err = s.Modify(ctx, OpUpdate, "posts", map[string]interface{}{"title": "Bye"}, Criteria{"id": 42})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Affected)

	mock.ExpectExec(q("DELETE FROM posts WHERE id = ?")).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = s.Modify(ctx, OpDelete, "posts", nil, Criteria{"id": 42})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ModifyGuards(t *testing.T) {
	s, _ := newMock(t, DialectSQLite)
	ctx := context.Background()

	tests := []struct {
		name     string
		op       Op
		values   map[string]interface{}
		criteria Criteria
		code     string
	}{
		{"insert without values", OpInsert, nil, nil, CodeNoValues},
		{"update without criteria", OpUpdate, map[string]interface{}{"a": 1}, nil, CodeNoCriteria},
		{"update without values", OpUpdate, nil, Criteria{"id": 1}, CodeNoValues},
		{"delete without criteria", OpDelete, nil, nil, CodeNoCriteria},
		{"unknown op", Op(9), nil, nil, CodeBadOperation},
		{"bad column", OpInsert, map[string]interface{}{"a b": 1}, nil, CodeBadIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Modify(ctx, tt.op, "posts", tt.values, tt.criteria)
			assert.True(t, apperror.IsDeveloper(err))
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
}

func TestSQLStore_SQLiteColumns(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)

	mock.ExpectQuery(q(`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`)).
		WithArgs("posts").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "notnull", "dflt_value", "pk"}).
			AddRow("id", "INTEGER", 1, nil, 1).
			AddRow("title", "VARCHAR(200)", 1, "''", 0).
			AddRow("author_email", "TEXT", 0, nil, 0))

	meta, err := Describe(context.Background(), s, "posts")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "author_email"}, meta.Names())

	id, _ := meta.Get("id")
	assert.True(t, id.IsKey())
	assert.Equal(t, data.TypeInt, id.Type())
	assert.Equal(t, "posts", id.Property(data.PropTableName))

	title, _ := meta.Get("title")
	assert.Equal(t, "200", title.Property(data.PropLength))
	assert.Equal(t, "false", title.Property(data.PropNullable))

	email, _ := meta.Get("author_email")
	assert.Equal(t, data.TypeText, email.Type())
	assert.Equal(t, "true", email.Property(data.PropNullable))
}

func TestSQLStore_PostgresColumns(t *testing.T) {
	s, mock := newMock(t, DialectPostgres)

	mock.ExpectQuery(q("SELECT kcu.column_name FROM information_schema.table_constraints tc JOIN information_schema.key_column_usage kcu")).
		WithArgs("PRIMARY KEY", "posts").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))
	mock.ExpectQuery(q("SELECT column_name, udt_name, is_nullable, character_maximum_length, column_default FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position")).
		WithArgs("posts").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "udt_name", "is_nullable", "character_maximum_length", "column_default"}).
			AddRow("id", "int4", "NO", nil, "nextval('posts_id_seq')").
			AddRow("published", "timestamptz", "YES", nil, nil).
			AddRow("title", "varchar", "NO", int64(120), nil))

	cols, err := s.Columns(context.Background(), "posts")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.True(t, cols[0].Key)
	assert.False(t, cols[0].Nullable)
	assert.Equal(t, "timestamptz", cols[1].DatabaseType)
	assert.True(t, cols[1].Nullable)
	assert.Equal(t, int64(120), cols[2].Length)

	assert.Equal(t, data.TypeDateTime, data.FromColumn(cols[1]).Type())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribe_MissingTable(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)
	mock.ExpectQuery(q("pragma_table_info")).
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "notnull", "dflt_value", "pk"}))

	_, err := Describe(context.Background(), s, "ghost")
	assert.Equal(t, CodeNoTable, apperror.CodeOf(err))
}

func TestSQLStore_TableExists(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM sqlite_master WHERE name = ? AND type = ?")).
		WithArgs("posts", "table").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	ok, err := s.TableExists(context.Background(), "posts")
	require.NoError(t, err)
	assert.True(t, ok)

	pg, pgMock := newMock(t, DialectPostgres)
	pgMock.ExpectQuery(q("SELECT COUNT(*) FROM information_schema.tables WHERE table_name = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	ok, err = pg.TableExists(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLStore_Tables(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)
	mock.ExpectQuery(q("SELECT name FROM sqlite_master WHERE type = ? AND name NOT LIKE ? ORDER BY name")).
		WithArgs("table", "sqlite_%").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("categories").AddRow("posts"))

	names, err := NewReadOnly(s).Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"categories", "posts"}, names)

	pg, pgMock := newMock(t, DialectPostgres)
	pgMock.ExpectQuery(q("SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = $2 ORDER BY table_name")).
		WithArgs("public", "BASE TABLE").
		WillReturnError(errors.New("connection reset"))
	_, err = pg.Tables(context.Background())
	assert.True(t, apperror.IsCritical(err))
	assert.Equal(t, CodeQuery, apperror.CodeOf(err))

	require.NoError(t, mock.ExpectationsWereMet())
	require.NoError(t, pgMock.ExpectationsWereMet())
}

func TestLoad_SkipsCustomFields(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)
	meta := data.NewFieldMetadataSet(
		data.NewFieldMetadata("id", data.TypeInt),
		data.NewFieldMetadata("preview", data.TypeString).SetProperty(data.PropCustomField, "true"),
		data.NewFieldMetadata("title", data.TypeString),
	)
	mock.ExpectQuery(q("SELECT id, title FROM posts")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(1), "A"))

	rs, err := Load(context.Background(), s, "posts", meta, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.RowCount())
	assert.False(t, rs.Has("preview"))
}

func TestReadOnly(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)
	ro := NewReadOnly(s)

	_, err := ro.Modify(context.Background(), OpDelete, "posts", nil, Criteria{"id": 1})
	assert.True(t, apperror.IsPermission(err))
	assert.Equal(t, CodeReadOnly, apperror.CodeOf(err))

	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	n, err := ro.Count(context.Background(), "posts", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionLoader_CachesInMemory(t *testing.T) {
	s, mock := newMock(t, DialectSQLite)
	mock.ExpectQuery(q("SELECT id, name FROM statuses ORDER BY name")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(2), "Closed").
			AddRow(int64(1), "Open"))

	loader := NewOptionLoader(s, cache.NewMemoryStore(), time.Minute, nil)
	src := OptionSource{Table: "statuses", ID: "id", Label: "name"}

	for i := 0; i < 3; i++ {
		opts, err := loader.Load(context.Background(), src)
		require.NoError(t, err)
		label, ok := opts.Label("1")
		assert.True(t, ok)
		assert.Equal(t, "Open", label)
		assert.Equal(t, 2, opts.Len())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionLoader_AttachWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := cache.NewRedisStoreWithClient(client, cache.DefaultConfig())

	s, mock := newMock(t, DialectSQLite)
	mock.ExpectQuery(q("SELECT id, label FROM tags ORDER BY position")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label"}).AddRow("a", "Alpha"))

	meta := data.NewFieldMetadataSet(
		data.NewFieldMetadata("tags", data.TypeMulti),
		data.NewFieldMetadata("title", data.TypeString),
	)
	loader := NewOptionLoader(s, store, time.Minute, nil)
	err := loader.Attach(context.Background(), meta, map[string]OptionSource{
		"tags": {Table: "tags", ID: "id", Label: "label", OrderBy: "position"},
	})
	require.NoError(t, err)

	tags, _ := meta.Get("tags")
	assert.Equal(t, 1, tags.Options().Len())
	assert.Len(t, mr.Keys(), 1)
}
