package site

import (
	"context"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/builder"
	"github.com/conduit-lang/recordtree/internal/control"
	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/document"
	"github.com/conduit-lang/recordtree/internal/i18n"
	"github.com/conduit-lang/recordtree/internal/repo"
	"github.com/conduit-lang/recordtree/internal/rights"
	"github.com/conduit-lang/recordtree/internal/store"
)

// indexComponent lists what the site can show
type indexComponent struct {
	site *Site
}

func (c *indexComponent) Name() string { return "index" }

func (c *indexComponent) Prepare(context.Context, *document.Request, *document.Document) (document.Outcome, error) {
	return document.Continue{}, nil
}

func (c *indexComponent) Build(ctx context.Context, doc *document.Document) (*etree.Element, error) {
	tables, err := c.site.tables(ctx)
	if err != nil {
		return nil, err
	}

	payload := builder.NewJSONCustom().SetProperty("tables", tables)
	el := etree.NewElement("index")
	list := el.CreateElement("tables")
	for _, t := range tables {
		list.CreateElement("table").CreateAttr("name", t)
	}
	if c.site.repo != nil {
		payload.SetProperty("repository", c.site.cfg.RepoPrefix)
		el.CreateElement("repository").CreateAttr("path", c.site.cfg.RepoPrefix)
	}
	if err := payload.Build(); err != nil {
		return nil, err
	}
	doc.SetJSON(payload.Result())
	return el, nil
}

// tableComponent renders one page of a table, or one record when the path
// carries a key value
type tableComponent struct {
	site  *Site
	table string
	id    string
	page  int
}

func (c *tableComponent) Name() string { return "table" }

func (c *tableComponent) Prepare(ctx context.Context, req *document.Request, _ *document.Document) (document.Outcome, error) {
	if c.site.q == nil {
		return nil, apperror.Developer(CodeNoStore, "site has no database configured")
	}
	rest := req.Remaining()
	table := rest[0]
	if !c.site.allowed(table) {
		return nil, apperror.NotFound(CodeNoSuchTable, "table %s is not published", table)
	}
	exists, err := c.site.q.TableExists(ctx, table)
	if err != nil {
		if apperror.IsDeveloper(err) {
			return nil, apperror.NotFound(CodeNoSuchTable, "table %s not found", table).Wrap(err)
		}
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound(CodeNoSuchTable, "table %s not found", table)
	}
	if err := req.Consume(1); err != nil {
		return nil, err
	}
	c.table = table

	if rest := req.Remaining(); len(rest) > 0 {
		c.id = rest[0]
		if err := req.Consume(1); err != nil {
			return nil, err
		}
	}

	c.page = 1
	if p, err := strconv.Atoi(req.Param("page")); err == nil && p > 1 {
		c.page = p
	}
	return document.Continue{}, nil
}

func (c *tableComponent) Build(ctx context.Context, doc *document.Document) (*etree.Element, error) {
	q := c.site.q
	meta, err := store.Describe(ctx, q, c.table)
	if err != nil {
		return nil, err
	}
	if c.site.options != nil {
		if err := c.site.options.Attach(ctx, meta, c.site.cfg.Options[c.table]); err != nil {
			return nil, err
		}
	}

	var (
		criteria store.Criteria
		opts     = &store.SelectOptions{}
	)
	key, hasKey := meta.Primary()
	if hasKey {
		opts.OrderBy = []string{key.Name()}
	}
	if c.id != "" {
		if !hasKey {
			return nil, apperror.NotFound(CodeNoSuchRecord, "table %s has no key to address records by", c.table)
		}
		criteria = store.Criteria{key.Name(): c.id}
	}

	total, err := q.Count(ctx, c.table, criteria)
	if err != nil {
		return nil, err
	}
	if c.id != "" && total == 0 {
		return nil, apperror.NotFound(CodeNoSuchRecord, "record %s of %s not found", c.id, c.table).
			WithDetail("table", c.table)
	}

	pager := builder.Pager{Current: c.page, PerPage: c.site.cfg.PerPage, Total: total}
	if c.id == "" {
		opts.Limit = uint64(pager.PerPage)
		opts.Offset = uint64(pager.Offset())
	}
	rows, err := store.Load(ctx, q, c.table, meta, criteria, opts)
	if err != nil {
		return nil, err
	}

	if err := c.buildJSON(doc, meta, rows, pager); err != nil {
		return nil, err
	}

	// lists omit the form-editing properties of each field
	b := builder.New()
	if c.id == "" {
		b = &builder.NewSimple().Builder
	}
	b.SetMetadata(meta)
	b.SetData(rows)
	b.SetTitle(c.table)
	b.SetTranslator(doc.Translator())
	if err := b.Build(); err != nil {
		return nil, err
	}

	el := etree.NewElement("table")
	el.CreateAttr("name", c.table)
	if c.id != "" {
		el.CreateAttr("current", c.id)
	} else {
		el.CreateAttr("page", strconv.Itoa(pager.Current))
		el.CreateAttr("pages", strconv.Itoa(pager.Count()))
		el.CreateAttr("records", strconv.Itoa(total))
	}

	tb, err := c.toolbar(doc)
	if err != nil {
		return nil, err
	}
	el.AddChild(tb.Build())
	el.AddChild(b.Result())
	return el, nil
}

// buildJSON stores the JSON rendering: the paged list, or the division
// payload naming the current record
func (c *tableComponent) buildJSON(doc *document.Document, meta *data.FieldMetadataSet, rows *data.RecordSet, pager builder.Pager) error {
	var jb interface {
		SetMetadata(*data.FieldMetadataSet)
		SetData(*data.RecordSet)
		SetTranslator(i18n.Translator)
		Build() error
		Result() string
	}
	if c.id != "" {
		div := builder.NewJSONDiv()
		div.SetCurrent(c.id)
		jb = div
	} else {
		list := builder.NewJSON()
		list.SetPager(pager)
		jb = list
	}
	jb.SetMetadata(meta)
	jb.SetData(rows)
	jb.SetTranslator(doc.Translator())
	if err := jb.Build(); err != nil {
		return err
	}
	doc.SetJSON(jb.Result())
	return nil
}

func (c *tableComponent) toolbar(doc *document.Document) (*control.Toolbar, error) {
	tb := control.NewToolbar(c.table)
	if c.site.cfg.ReadOnly {
		tb.SetRights(rights.Read)
	}
	tb.SetTranslator(doc.Translator())
	if err := tb.ParseMarkup(c.site.cfg.Toolbar); err != nil {
		return nil, err
	}
	tb.Translate(doc.Translator())
	return tb, nil
}

// repoComponent lists a directory of the site repository
type repoComponent struct {
	site *Site
	dir  string
}

func (c *repoComponent) Name() string { return "repository" }

func (c *repoComponent) Prepare(_ context.Context, req *document.Request, _ *document.Document) (document.Outcome, error) {
	if err := req.Consume(1); err != nil {
		return nil, err
	}
	rest := req.Remaining()
	c.dir = strings.Join(rest, "/")
	if err := req.Consume(len(rest)); err != nil {
		return nil, err
	}
	return document.Continue{}, nil
}

func (c *repoComponent) Build(ctx context.Context, doc *document.Document) (*etree.Element, error) {
	r := c.site.repo
	entries, err := r.List(ctx, c.dir)
	if err != nil {
		return nil, err
	}

	payload, err := repo.RenderEntries(r.Name(), c.dir, entries, doc.Translator())
	if err != nil {
		return nil, err
	}
	doc.SetJSON(payload)

	b := builder.NewSimple()
	b.SetMetadata(repo.ListingMetadata(r.Name()))
	b.SetData(repo.ListingRows(entries))
	b.SetTranslator(doc.Translator())
	if err := b.Build(); err != nil {
		return nil, err
	}

	el := etree.NewElement("repository")
	el.CreateAttr("name", r.Name())
	caps := r.Capabilities()
	el.CreateAttr("create_dir", strconv.FormatBool(caps.CreateDir))
	el.CreateAttr("edit_dir", strconv.FormatBool(caps.EditDir))
	el.CreateAttr("edit_file", strconv.FormatBool(caps.EditFile))
	el.CreateAttr("upload", strconv.FormatBool(caps.Upload))

	crumbs := el.CreateElement("breadcrumbs")
	for _, crumb := range repo.Breadcrumbs(r.Name(), c.dir) {
		node := crumbs.CreateElement("crumb")
		node.CreateAttr("path", crumb.Path)
		node.SetText(crumb.Title)
	}
	el.AddChild(b.Result())
	return el, nil
}
