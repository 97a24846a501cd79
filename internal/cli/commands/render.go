package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/builder"
	"github.com/conduit-lang/recordtree/internal/cache"
	"github.com/conduit-lang/recordtree/internal/cli/ui"
	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/document"
	"github.com/conduit-lang/recordtree/internal/i18n"
	"github.com/conduit-lang/recordtree/internal/site"
	"github.com/conduit-lang/recordtree/internal/store"
	"github.com/conduit-lang/recordtree/internal/transform"
	"github.com/conduit-lang/recordtree/internal/tree"
)

// Builders selectable with --builder
var Builders = []string{"full", "simple", "tree", "json", "table"}

type renderOptions struct {
	driver  string
	url     string
	table   string
	id      string
	builder string
	parent  string
	page    int
	perPage int
	pretty  bool
	lang    string
}

func newRenderCommand(g *globalOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <table>",
		Short: "Render a table or a record to stdout",
		Long: `Render one page of a table, or a single record with --id, without starting
the server.

Builders:
  full    complete field nodes, as used for record forms
  simple  field nodes without form properties, as used for lists
  tree    records nested by --parent
  json    the JSON payload served for ?json
  table   an aligned text table`,
		Example: `  recordtree render posts --url ./blog.db
  recordtree render posts --id 4 --builder json --pretty
  recordtree render categories --builder tree --parent parent_id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("driver") {
				opts.driver = cfg.Database.Driver
			}
			if opts.url == "" {
				opts.url = cfg.Database.URL
			}
			if opts.url == "" {
				return apperror.Developer(CodeNoDatabase, "no database given, use --url or database.url")
			}
			opts.table = args[0]

			db, err := store.Open(cmd.Context(), opts.driver, opts.url)
			if err != nil {
				return err
			}
			defer db.Close()

			return render(cmd.Context(), store.NewReadOnly(db), opts, cmd.OutOrStdout(), color.NoColor)
		},
	}

	cmd.Flags().StringVar(&opts.driver, "driver", "sqlite3", "Database driver (pgx, postgres, sqlite3)")
	cmd.Flags().StringVar(&opts.url, "url", "", "Database URL or file")
	cmd.Flags().StringVar(&opts.id, "id", "", "Key of a single record to render")
	cmd.Flags().StringVarP(&opts.builder, "builder", "b", "simple", "Builder: full, simple, tree, json, table")
	cmd.Flags().StringVar(&opts.parent, "parent", "", "Parent column for the tree builder")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page to render")
	cmd.Flags().IntVar(&opts.perPage, "per-page", 20, "Records per page, 0 for all")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent XML and JSON output")
	cmd.Flags().StringVar(&opts.lang, "lang", "en", "Language of translated titles and messages")

	return cmd
}

// render loads one page of opts.table through q and writes it with the
// selected builder
func render(ctx context.Context, q store.QueryExecutor, opts *renderOptions, w io.Writer, noColor bool) error {
	if !contains(Builders, opts.builder) {
		return apperror.Developer(CodeUnknownBuilder, "unknown builder %q", opts.builder).
			WithDetail("builders", fmt.Sprint(Builders))
	}

	meta, err := store.Describe(ctx, q, opts.table)
	if err != nil {
		return err
	}

	var (
		criteria store.Criteria
		sel      = &store.SelectOptions{}
	)
	key, hasKey := meta.Primary()
	if hasKey {
		sel.OrderBy = []string{key.Name()}
	}
	if opts.id != "" {
		if !hasKey {
			return apperror.NotFound(CodeNoSuchRecord, "table %s has no key to address records by", opts.table)
		}
		criteria = store.Criteria{key.Name(): opts.id}
	}

	total, err := q.Count(ctx, opts.table, criteria)
	if err != nil {
		return err
	}
	if opts.id != "" && total == 0 {
		return apperror.NotFound(CodeNoSuchRecord, "record %s of %s not found", opts.id, opts.table)
	}

	pager := builder.Pager{Current: opts.page, PerPage: opts.perPage, Total: total}
	// trees need every node to resolve parents
	if opts.id == "" && opts.builder != "tree" && opts.perPage > 0 {
		sel.Limit = uint64(pager.PerPage)
		sel.Offset = uint64(pager.Offset())
	}
	rows, err := store.Load(ctx, q, opts.table, meta, criteria, sel)
	if err != nil {
		return err
	}

	if opts.builder == "table" {
		ui.RecordTable(w, meta, rows, noColor).Render()
		ui.WriteSuccess(w, fmt.Sprintf("%d of %d records", rows.RowCount(), total), noColor)
		return nil
	}

	lang, tr, err := translator(ctx, opts.lang)
	if err != nil {
		return err
	}
	doc := document.New(lang)
	doc.SetTranslator(tr)

	var t transform.Transformer
	if opts.builder == "json" {
		jb := builder.NewJSON()
		jb.SetMetadata(meta)
		jb.SetData(rows)
		jb.SetTranslator(tr)
		jb.SetPager(pager)
		if err := jb.Build(); err != nil {
			return err
		}
		doc.SetJSON(jb.Result())
		t = transform.NewJSON(opts.pretty)
	} else {
		nb, err := nodeBuilder(opts, meta, rows)
		if err != nil {
			return err
		}
		nb.SetMetadata(meta)
		nb.SetData(rows)
		nb.SetTitle(opts.table)
		nb.SetTranslator(tr)
		if err := nb.Build(); err != nil {
			return err
		}
		doc.AddComponent(opts.table, nb.Result())
		t = transform.NewXML(transform.XMLConfig{PrettyPrint: opts.pretty})
	}
	doc.Finalize()

	out, err := t.Transform(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(out.Body); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

type configurableBuilder interface {
	builder.NodeBuilder
	SetMetadata(*data.FieldMetadataSet)
	SetData(*data.RecordSet)
	SetTitle(string)
	SetTranslator(i18n.Translator)
}

func nodeBuilder(opts *renderOptions, meta *data.FieldMetadataSet, rows *data.RecordSet) (configurableBuilder, error) {
	switch opts.builder {
	case "full":
		return builder.New(), nil
	case "tree":
		if opts.parent == "" || !meta.Has(opts.parent) {
			return nil, apperror.Developer(CodeNoParentField, "tree builder needs --parent naming a column of %s", opts.table).
				WithDetail("parent", opts.parent)
		}
		key, _ := meta.Primary()
		if key == nil {
			return nil, apperror.Developer(CodeNoParentField, "tree builder needs a key column in %s", opts.table)
		}
		list := make([]map[string]interface{}, 0, rows.RowCount())
		for i := 0; i < rows.RowCount(); i++ {
			row, _ := rows.Row(i)
			list = append(list, row)
		}
		index, err := tree.ConvertRows(list, key.Name(), opts.parent)
		if err != nil {
			return nil, err
		}
		return builder.NewTree(index), nil
	default:
		return builder.NewSimple(), nil
	}
}

// translator resolves the built-in catalog for hint
func translator(ctx context.Context, hint string) (language.Tag, i18n.Translator, error) {
	source, err := i18n.NewCatalogSource(site.DefaultTranslations)
	if err != nil {
		return language.Und, nil, err
	}
	svc := i18n.NewService(source, language.English,
		i18n.WithStore(cache.NewMemoryStore()),
		i18n.WithLanguages(language.English, language.Ukrainian),
	)
	tag := svc.Tag(hint)
	return tag, svc.For(ctx, tag), nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
