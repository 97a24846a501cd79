package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/config"
	"github.com/conduit-lang/recordtree/internal/store"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "recordtree", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("no-color"))

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, expected := range []string{"version", "serve", "render"} {
		assert.Contains(t, names, expected)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.23"

	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version", "--no-color"})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "1.0.0-test")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "Go version:")
}

func TestServeCommand_Flags(t *testing.T) {
	cmd := newServeCommand(&globalOptions{})
	for _, name := range []string{"port", "host", "debug", "read-only", "repo", "repo-name", "tables", "per-page", "option"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestRenderCommand_RequiresDatabase(t *testing.T) {
	chdirTemp(t)

	var stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"render", "posts"})
	err := cmd.Execute()
	assert.Equal(t, CodeNoDatabase, apperror.CodeOf(err))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

func q(s string) string { return regexp.QuoteMeta(s) }

// postsMock serves a posts(id, title, parent_id) table
func postsMock(t *testing.T) (*store.SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery(q(`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`)).
		WithArgs("posts").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "notnull", "dflt_value", "pk"}).
			AddRow("id", "INTEGER", 1, nil, 1).
			AddRow("title", "TEXT", 1, nil, 0).
			AddRow("parent_id", "INTEGER", 0, nil, 0))
	return store.New(db, store.DialectSQLite), mock
}

func postRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "parent_id"}).
		AddRow(int64(1), "First", nil).
		AddRow(int64(2), "Second", int64(1))
}

func TestRender_Simple(t *testing.T) {
	s, mock := postsMock(t)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(q("SELECT id, title, parent_id FROM posts ORDER BY id LIMIT 2")).
		WillReturnRows(postRows())

	var buf bytes.Buffer
	opts := &renderOptions{table: "posts", builder: "simple", page: 1, perPage: 2, lang: "en"}
	require.NoError(t, render(context.Background(), s, opts, &buf, true))
	require.NoError(t, mock.ExpectationsWereMet())

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	assert.Equal(t, "en", doc.Root().SelectAttrValue("lang", ""))
	rs := doc.FindElement("//component[@name='posts']/recordset")
	require.NotNil(t, rs)
	assert.Equal(t, "2", rs.SelectAttrValue("rows", ""))
	assert.NotNil(t, doc.FindElement("//field[@name='title'][text()='Second']"))
}

func TestRender_SecondPage(t *testing.T) {
	s, mock := postsMock(t)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(q("SELECT id, title, parent_id FROM posts ORDER BY id LIMIT 2 OFFSET 2")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "parent_id"}).AddRow(int64(3), "Third", nil))

	var buf bytes.Buffer
	opts := &renderOptions{table: "posts", builder: "json", page: 2, perPage: 2, lang: "en"}
	require.NoError(t, render(context.Background(), s, opts, &buf, true))
	require.NoError(t, mock.ExpectationsWereMet())

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	pager := out["pager"].(map[string]interface{})
	assert.Equal(t, float64(2), pager["current"])
	assert.Equal(t, float64(2), pager["count"])
	assert.Equal(t, "Total: 3", pager["records"])
	assert.Len(t, out["data"], 1)
}

func TestRender_Record(t *testing.T) {
	s, mock := postsMock(t)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts WHERE id = ?")).
		WithArgs("2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(q("SELECT id, title, parent_id FROM posts WHERE id = ? ORDER BY id")).
		WithArgs("2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "parent_id"}).AddRow(int64(2), "Second", int64(1)))

	var buf bytes.Buffer
	opts := &renderOptions{table: "posts", id: "2", builder: "full", page: 1, perPage: 20, lang: "en", pretty: true}
	require.NoError(t, render(context.Background(), s, opts, &buf, true))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), `<recordset rows="1">`)
	assert.Contains(t, buf.String(), "\n  <component")
}

func TestRender_RecordNotFound(t *testing.T) {
	s, mock := postsMock(t)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts WHERE id = ?")).
		WithArgs("9").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	opts := &renderOptions{table: "posts", id: "9", builder: "full", page: 1, lang: "en"}
	err := render(context.Background(), s, opts, io.Discard, true)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, CodeNoSuchRecord, apperror.CodeOf(err))
}

func TestRender_Table(t *testing.T) {
	s, mock := postsMock(t)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(q("SELECT id, title, parent_id FROM posts ORDER BY id LIMIT 20")).
		WillReturnRows(postRows())

	var buf bytes.Buffer
	opts := &renderOptions{table: "posts", builder: "table", page: 1, perPage: 20}
	require.NoError(t, render(context.Background(), s, opts, &buf, true))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "id  title   parent_id", lines[0])
	assert.Equal(t, "1   First", lines[2])
	assert.Equal(t, "2   Second  1", lines[3])
	assert.Equal(t, "✓ 2 of 2 records", lines[4])
}

func TestRender_Tree(t *testing.T) {
	s, mock := postsMock(t)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	// trees load every row regardless of paging
	mock.ExpectQuery(q("SELECT id, title, parent_id FROM posts ORDER BY id")).
		WillReturnRows(postRows())

	var buf bytes.Buffer
	opts := &renderOptions{table: "posts", builder: "tree", parent: "parent_id", page: 1, perPage: 1, lang: "en"}
	require.NoError(t, render(context.Background(), s, opts, &buf, true))
	require.NoError(t, mock.ExpectationsWereMet())

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	child := doc.FindElement("//record/recordset/record/field[@name='title']")
	require.NotNil(t, child)
	assert.Equal(t, "Second", child.Text())
}

func TestRender_Errors(t *testing.T) {
	err := render(context.Background(), nil, &renderOptions{table: "posts", builder: "pdf"}, io.Discard, true)
	assert.Equal(t, CodeUnknownBuilder, apperror.CodeOf(err))

	s, mock := postsMock(t)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(q("SELECT id, title, parent_id FROM posts ORDER BY id")).
		WillReturnRows(postRows())

	err = render(context.Background(), s, &renderOptions{table: "posts", builder: "tree", parent: "owner", page: 1}, io.Discard, true)
	assert.Equal(t, CodeNoParentField, apperror.CodeOf(err))
	assert.True(t, apperror.IsDeveloper(err))
}

func TestParseOptionSources(t *testing.T) {
	out, err := parseOptionSources([]string{
		"posts.author_id=users:id:name",
		"posts.status=statuses:code:label:position",
	})
	require.NoError(t, err)
	assert.Equal(t, store.OptionSource{Table: "users", ID: "id", Label: "name"}, out["posts"]["author_id"])
	assert.Equal(t, "position", out["posts"]["status"].OrderBy)

	none, err := parseOptionSources(nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	for _, bad := range []string{"posts.author_id", "posts=users:id:name", "posts.author_id=users:id"} {
		_, err := parseOptionSources([]string{bad})
		assert.Error(t, err, bad)
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts *serveOptions) *app {
	t.Helper()
	a, err := buildApp(context.Background(), cfg, opts, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.close(context.Background()) })
	return a
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestBuildApp_Repository(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abc"), 0o644))

	a := newTestApp(t, config.Default(), &serveOptions{repoDir: dir, repoName: "files", readOnly: true})

	rec := get(t, a.handler, HealthPath)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(t, a.handler, "/?json")
	require.Equal(t, http.StatusOK, rec.Code)
	var index map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &index))
	assert.Equal(t, "files", index["repository"])

	rec = get(t, a.handler, "/files?struct")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a.txt")
	assert.Contains(t, rec.Body.String(), `upload="false"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(t, a.handler, "/files/missing?struct")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// no database configured
	rec = get(t, a.handler, "/posts?struct")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBuildApp_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = mr.Addr()

	a := newTestApp(t, cfg, &serveOptions{})
	assert.Len(t, a.hooks, 1)

	rec := get(t, a.handler, "/?json")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildApp_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Site.DefaultLanguage = "not a language!"
	_, err := buildApp(context.Background(), cfg, &serveOptions{}, zap.NewNop())
	assert.Error(t, err)

	_, err = buildApp(context.Background(), config.Default(), &serveOptions{repoDir: filepath.Join(t.TempDir(), "nope")}, zap.NewNop())
	assert.Error(t, err)

	_, err = buildApp(context.Background(), config.Default(), &serveOptions{options: []string{"bad"}}, zap.NewNop())
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Document.Template = filepath.Join(t.TempDir(), "missing.tmpl")
	_, err = buildApp(context.Background(), cfg, &serveOptions{}, zap.NewNop())
	assert.Error(t, err)
}
