package site

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/recordtree/internal/cache"
	"github.com/conduit-lang/recordtree/internal/controller"
	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/document"
	"github.com/conduit-lang/recordtree/internal/repo"
	"github.com/conduit-lang/recordtree/internal/store"
	"github.com/conduit-lang/recordtree/internal/transform"
)

type fakeTable struct {
	cols []data.ColumnInfo
	rows []map[string]interface{}
}

// fakeStore is an in-memory QueryExecutor
type fakeStore struct {
	tables map[string]fakeTable
}

func (f *fakeStore) filter(table string, criteria store.Criteria) []map[string]interface{} {
	var out []map[string]interface{}
	for _, row := range f.tables[table].rows {
		match := true
		for k, v := range criteria {
			if fmt.Sprint(row[k]) != fmt.Sprint(v) {
				match = false
			}
		}
		if match {
			out = append(out, row)
		}
	}
	return out
}

func (f *fakeStore) Select(_ context.Context, table string, columns []string, criteria store.Criteria, opts *store.SelectOptions) ([]map[string]interface{}, error) {
	rows := f.filter(table, criteria)
	if opts != nil {
		if int(opts.Offset) >= len(rows) {
			rows = nil
		} else {
			rows = rows[opts.Offset:]
		}
		if opts.Limit > 0 && int(opts.Limit) < len(rows) {
			rows = rows[:opts.Limit]
		}
	}
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		projected := make(map[string]interface{}, len(columns))
		for _, c := range columns {
			projected[c] = row[c]
		}
		out = append(out, projected)
	}
	return out, nil
}

func (f *fakeStore) Count(_ context.Context, table string, criteria store.Criteria) (int, error) {
	return len(f.filter(table, criteria)), nil
}

func (f *fakeStore) Modify(context.Context, store.Op, string, map[string]interface{}, store.Criteria) (store.Result, error) {
	return store.Result{}, nil
}

func (f *fakeStore) Columns(_ context.Context, table string) ([]data.ColumnInfo, error) {
	return f.tables[table].cols, nil
}

func (f *fakeStore) TableExists(_ context.Context, table string) (bool, error) {
	_, ok := f.tables[table]
	return ok, nil
}

func newFakeStore() *fakeStore {
	posts := fakeTable{
		cols: []data.ColumnInfo{
			{Name: "id", Table: "posts", DatabaseType: "INTEGER", Key: true},
			{Name: "title", Table: "posts", DatabaseType: "VARCHAR(100)"},
			{Name: "status", Table: "posts", DatabaseType: "INTEGER"},
		},
	}
	for i := 1; i <= 5; i++ {
		posts.rows = append(posts.rows, map[string]interface{}{
			"id": i, "title": fmt.Sprintf("Post %d", i), "status": i % 2,
		})
	}
	return &fakeStore{tables: map[string]fakeTable{
		"posts":   posts,
		"secrets": {cols: []data.ColumnInfo{{Name: "id", Table: "secrets", DatabaseType: "INTEGER"}}},
	}}
}

func newController(t *testing.T, s *Site) *controller.DocumentController {
	t.Helper()
	html, err := transform.NewHTML("")
	require.NoError(t, err)
	set := transform.Set{
		XML:  transform.NewXML(transform.XMLConfig{}),
		JSON: transform.NewJSON(false),
		HTML: html,
	}
	return controller.New(s, set)
}

func run(c *controller.DocumentController, path string, flags ...string) *controller.Response {
	query := url.Values{}
	for _, f := range flags {
		query[f] = nil
	}
	if u, err := url.Parse(path); err == nil && u.RawQuery != "" {
		for k, v := range u.Query() {
			query[k] = v
		}
		path = u.Path
	}
	return c.Run(context.Background(), document.NewRequest(path, query, nil))
}

func decode(t *testing.T, res *controller.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Output.Body, &out), string(res.Output.Body))
	return out
}

func TestSite_Index(t *testing.T) {
	dir := t.TempDir()
	local, err := repo.NewLocal("files", dir)
	require.NoError(t, err)
	c := newController(t, New(newFakeStore(), nil, local, Config{Tables: []string{"posts"}}, nil))

	res := run(c, "/", "json")
	require.Equal(t, 200, res.Status)
	out := decode(t, res)
	assert.Equal(t, []interface{}{"posts"}, out["tables"])
	assert.Equal(t, "files", out["repository"])

	res = run(c, "/", "struct")
	assert.Contains(t, string(res.Output.Body), `<table name="posts"/>`)
}

// listingStore adds table enumeration to fakeStore
type listingStore struct {
	*fakeStore
}

func (l listingStore) Tables(context.Context) ([]string, error) {
	names := make([]string, 0, len(l.tables))
	for name := range l.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func TestSite_IndexListsStoreTables(t *testing.T) {
	c := newController(t, New(listingStore{newFakeStore()}, nil, nil, Config{}, nil))
	res := run(c, "/", "json")
	require.Equal(t, 200, res.Status)
	assert.Equal(t, []interface{}{"posts", "secrets"}, decode(t, res)["tables"])

	res = run(c, "/", "struct")
	assert.Contains(t, string(res.Output.Body), `<table name="secrets"/>`)

	c = newController(t, New(newFakeStore(), nil, nil, Config{}, nil))
	assert.Equal(t, []interface{}{}, decode(t, run(c, "/", "json"))["tables"])
}

func TestSite_TablePage(t *testing.T) {
	c := newController(t, New(newFakeStore(), nil, nil, Config{PerPage: 2}, nil))

	res := run(c, "/posts?page=2", "json")
	require.Equal(t, 200, res.Status)
	out := decode(t, res)
	rows := out["data"].([]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, "Post 3", rows[0].(map[string]interface{})["title"])
	pager := out["pager"].(map[string]interface{})
	assert.Equal(t, float64(2), pager["current"])
	assert.Equal(t, float64(3), pager["count"])

	res = run(c, "/posts?page=3", "struct")
	body := string(res.Output.Body)
	assert.Contains(t, body, `<table name="posts" page="3" pages="3" records="5">`)
	assert.Contains(t, body, `<recordset rows="1">`)
	assert.Contains(t, body, `<toolbar name="posts">`)
	assert.Contains(t, body, `id="add"`)
}

func TestSite_Record(t *testing.T) {
	c := newController(t, New(newFakeStore(), nil, nil, Config{}, nil))

	res := run(c, "/posts/4", "json")
	require.Equal(t, 200, res.Status)
	out := decode(t, res)
	assert.Equal(t, "4", out["current"])
	rows := out["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Post 4", rows[0].(map[string]interface{})["title"])

	res = run(c, "/posts/99", "struct")
	assert.Equal(t, 404, res.Status)
	assert.Contains(t, string(res.Output.Body), `code="ERR_NO_SUCH_RECORD"`)

	res = run(c, "/posts/4/extra", "struct")
	assert.Equal(t, 404, res.Status)
}

func TestSite_TableVisibility(t *testing.T) {
	c := newController(t, New(newFakeStore(), nil, nil, Config{Tables: []string{"posts"}}, nil))

	for _, path := range []string{"/secrets", "/missing"} {
		t.Run(path, func(t *testing.T) {
			res := run(c, path, "struct")
			assert.Equal(t, 404, res.Status)
			assert.Contains(t, string(res.Output.Body), `code="ERR_NO_SUCH_TABLE"`)
		})
	}
}

func TestSite_NoStore(t *testing.T) {
	c := newController(t, New(nil, nil, nil, Config{}, nil))
	res := run(c, "/posts", "struct")
	assert.Equal(t, 500, res.Status)
	assert.Contains(t, string(res.Output.Body), CodeNoStore)
}

func TestSite_ReadOnlyToolbar(t *testing.T) {
	c := newController(t, New(newFakeStore(), nil, nil, Config{ReadOnly: true}, nil))

	body := string(run(c, "/posts", "struct").Output.Body)
	assert.NotContains(t, body, `id="add"`)
	assert.NotContains(t, body, `id="delete"`)
	assert.Contains(t, body, `id="json"`)
}

func TestSite_OptionLists(t *testing.T) {
	fs := newFakeStore()
	fs.tables["statuses"] = fakeTable{
		cols: []data.ColumnInfo{{Name: "id", DatabaseType: "INTEGER"}, {Name: "label", DatabaseType: "TEXT"}},
		rows: []map[string]interface{}{{"id": 0, "label": "Draft"}, {"id": 1, "label": "Published"}},
	}
	loader := store.NewOptionLoader(fs, cache.NewMemoryStore(), 0, nil)
	s := New(fs, loader, nil, Config{Options: map[string]map[string]store.OptionSource{
		"posts": {"status": {Table: "statuses", ID: "id", Label: "label"}},
	}}, nil)

	meta, err := store.Describe(context.Background(), fs, "posts")
	require.NoError(t, err)
	status, _ := meta.Get("status")
	status.SetType(data.TypeSelect)
	require.NoError(t, loader.Attach(context.Background(), meta, s.cfg.Options["posts"]))
	label, ok := status.Options().Label("1")
	assert.True(t, ok)
	assert.Equal(t, "Published", label)
}

func TestSite_Repository(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "a.txt"), []byte("abc"), 0o644))
	local, err := repo.NewLocal("files", dir)
	require.NoError(t, err)

	c := newController(t, New(nil, nil, repo.NewReadOnly(local), Config{}, nil))

	res := run(c, "/files/docs", "struct")
	require.Equal(t, 200, res.Status)
	body := string(res.Output.Body)
	assert.Contains(t, body, `create_dir="false"`)
	assert.Contains(t, body, `<crumb path="/docs">docs</crumb>`)
	assert.Contains(t, body, `a.txt`)

	out := decode(t, run(c, "/files/docs", "json"))
	assert.Len(t, out["breadcrumbs"], 2)

	res = run(c, "/files/nope", "struct")
	assert.Equal(t, 404, res.Status)
	assert.Contains(t, string(res.Output.Body), repo.CodeNotFound)
}
