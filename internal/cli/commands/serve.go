package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/conduit-lang/recordtree/internal/cache"
	"github.com/conduit-lang/recordtree/internal/config"
	"github.com/conduit-lang/recordtree/internal/controller"
	"github.com/conduit-lang/recordtree/internal/i18n"
	"github.com/conduit-lang/recordtree/internal/logging"
	"github.com/conduit-lang/recordtree/internal/repo"
	"github.com/conduit-lang/recordtree/internal/site"
	"github.com/conduit-lang/recordtree/internal/store"
	"github.com/conduit-lang/recordtree/internal/transform"
	"github.com/conduit-lang/recordtree/internal/web/middleware"
	"github.com/conduit-lang/recordtree/internal/web/router"
	"github.com/conduit-lang/recordtree/internal/web/server"
)

// HealthPath answers liveness probes and is left out of the access log
const HealthPath = "/healthz"

type serveOptions struct {
	port     int
	host     string
	debug    bool
	readOnly bool
	repoDir  string
	repoName string
	tables   []string
	perPage  int
	options  []string
}

func newServeCommand(g *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tables and a file repository as documents",
		Long: `Start the document server.

Every table the database exposes (or only those named by --tables) is
browsable at /<table> and /<table>/<id>; the file repository, when --repo is
given, is browsable under /files. Append ?json, ?struct or ?debug to any URL
to get the JSON payload or the raw document tree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = opts.port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = opts.host
			}
			if cmd.Flags().Changed("debug") {
				cfg.Site.Debug = opts.debug
			}
			return runServe(cmd, cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVar(&opts.host, "host", "localhost", "Host to bind")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Show error details and allow ?debug output")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Reject every write to the database and the repository")
	cmd.Flags().StringVar(&opts.repoDir, "repo", "", "Directory served as the file repository")
	cmd.Flags().StringVar(&opts.repoName, "repo-name", "files", "Path prefix of the file repository")
	cmd.Flags().StringSliceVar(&opts.tables, "tables", nil, "Tables to publish (default: all)")
	cmd.Flags().IntVar(&opts.perPage, "per-page", 20, "Records per page")
	cmd.Flags().StringArrayVar(&opts.options, "option", nil,
		"Option list of a select field as table.field=source:id:label")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config, opts *serveOptions) error {
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: cfg.Site.Debug})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildApp(ctx, cfg, opts, logger)
	if err != nil {
		_ = logger.Sync()
		return err
	}

	srv, err := server.New(cfg.Server, a.handler, logger)
	if err != nil {
		a.close(ctx)
		return err
	}
	if err := srv.Listen(); err != nil {
		a.close(ctx)
		return err
	}

	shutdown := server.DefaultShutdownConfig()
	shutdown.Timeout = cfg.Server.ShutdownTimeout
	gs := server.NewGracefulShutdown(srv, shutdown)
	for _, hook := range a.hooks {
		gs.RegisterHook(hook)
	}
	gs.RegisterHook(func(context.Context) error {
		// stderr sync fails on some platforms; nothing to do about it
		_ = logger.Sync()
		return nil
	})

	fmt.Fprintf(cmd.OutOrStdout(), "%s Serving on %s\n", color.GreenString("✓"), color.CyanString("http://"+srv.Addr()))
	for _, route := range a.routes {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-5s %s\n", route.Method, route.Pattern)
	}
	return gs.Run(ctx)
}

// app is the wired handler plus the resources it holds open
type app struct {
	handler http.Handler
	routes  []router.RouteInfo
	hooks   []server.ShutdownHook
}

func (a *app) close(ctx context.Context) {
	for _, hook := range a.hooks {
		_ = hook(ctx)
	}
}

// buildApp wires configuration into the document handler
func buildApp(ctx context.Context, cfg *config.Config, opts *serveOptions, logger *zap.Logger) (*app, error) {
	a := &app{}
	fail := func(err error) (*app, error) {
		a.close(ctx)
		return nil, err
	}

	cacheStore, err := newCacheStore(ctx, cfg.Cache)
	if err != nil {
		return fail(err)
	}
	if rs, ok := cacheStore.(*cache.RedisStore); ok {
		a.hooks = append(a.hooks, func(context.Context) error { return rs.Close() })
	}

	translations, fallback, err := newTranslations(cfg.Site, cfg.Cache, cacheStore, logger)
	if err != nil {
		return fail(err)
	}

	var (
		q       store.QueryExecutor
		options *store.OptionLoader
	)
	if cfg.Database.URL != "" {
		db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return fail(err)
		}
		a.hooks = append(a.hooks, func(context.Context) error { return db.Close() })
		q = db
		if opts.readOnly {
			q = store.NewReadOnly(db)
		}
		options = store.NewOptionLoader(q, cacheStore, cfg.Cache.TTL, logger)
	}

	var files repo.Repository
	if opts.repoDir != "" {
		local, err := repo.NewLocal(opts.repoName, opts.repoDir)
		if err != nil {
			return fail(err)
		}
		files = local
		if opts.readOnly {
			files = repo.NewReadOnly(local)
		}
	}

	sources, err := parseOptionSources(opts.options)
	if err != nil {
		return fail(err)
	}

	layout := site.New(q, options, files, site.Config{
		Tables:     opts.tables,
		PerPage:    opts.perPage,
		ReadOnly:   opts.readOnly,
		Options:    sources,
		RepoPrefix: opts.repoName,
	}, logger)

	set, err := newTransformers(cfg.Document, cfg.Site.Debug)
	if err != nil {
		return fail(err)
	}

	ctrl := controller.New(layout, set,
		controller.WithTranslations(translations),
		controller.WithLanguage(fallback),
		controller.WithDebug(cfg.Site.Debug),
		controller.WithAsXML(cfg.Site.AsXML),
		controller.WithLogger(logger),
	)

	r := router.New(middleware.Standard(middleware.NewLogger(logger, HealthPath), cfg.Site.Debug))
	r.Health(HealthPath)
	r.Documents("/", "documents", ctrl)

	a.handler = r
	a.routes = r.Routes()
	return a, nil
}

func newCacheStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	common := cache.DefaultConfig()
	common.DefaultTTL = cfg.TTL
	common.Size = cfg.Size

	if cfg.Backend == "redis" {
		rs, err := cache.NewRedisStore(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Config: common})
		if err != nil {
			return nil, err
		}
		return rs, nil
	}
	return cache.NewMemoryStoreWithConfig(common), nil
}

func newTranslations(cfg config.SiteConfig, cc config.CacheConfig, cs cache.Store, logger *zap.Logger) (*i18n.Service, language.Tag, error) {
	fallback, err := language.Parse(cfg.DefaultLanguage)
	if err != nil {
		return nil, language.Und, fmt.Errorf("invalid site.default_language %q: %w", cfg.DefaultLanguage, err)
	}

	tags := make([]language.Tag, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, language.Und, fmt.Errorf("invalid site.languages entry %q: %w", l, err)
		}
		tags = append(tags, tag)
	}

	source, err := i18n.NewCatalogSource(site.DefaultTranslations)
	if err != nil {
		return nil, language.Und, err
	}
	svc := i18n.NewService(source, fallback,
		i18n.WithStore(cs),
		i18n.WithTTL(cc.TTL),
		i18n.WithLanguages(tags...),
		i18n.WithLogger(logger),
	)
	return svc, fallback, nil
}

func newTransformers(cfg config.DocumentConfig, debug bool) (transform.Set, error) {
	var (
		html *transform.HTMLTransformer
		err  error
	)
	if cfg.Template != "" {
		html, err = transform.LoadHTML(cfg.Template)
	} else {
		html, err = transform.NewHTML("")
	}
	if err != nil {
		return transform.Set{}, err
	}
	return transform.Set{
		XML: transform.NewXML(transform.XMLConfig{
			ContentType: cfg.XMLContentType,
			PrettyPrint: cfg.PrettyPrint,
			Debug:       debug,
		}),
		JSON: transform.NewJSON(cfg.JSONPrettyPrint),
		HTML: html,
	}, nil
}

// parseOptionSources reads table.field=source:id:label[:order] entries
func parseOptionSources(specs []string) (map[string]map[string]store.OptionSource, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]map[string]store.OptionSource)
	for _, spec := range specs {
		target, source, ok := strings.Cut(spec, "=")
		table, field, ok2 := strings.Cut(target, ".")
		parts := strings.Split(source, ":")
		if !ok || !ok2 || table == "" || field == "" || len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("invalid --option %q, expected table.field=source:id:label[:order]", spec)
		}
		src := store.OptionSource{Table: parts[0], ID: parts[1], Label: parts[2]}
		if len(parts) == 4 {
			src.OrderBy = parts[3]
		}
		if out[table] == nil {
			out[table] = make(map[string]store.OptionSource)
		}
		out[table][field] = src
	}
	return out, nil
}
