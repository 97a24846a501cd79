// Package site is the document layout served by the recordtree server:
// an index of browsable tables, paged table and record views, and an
// optional file repository.
package site

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/conduit-lang/recordtree/internal/document"
	"github.com/conduit-lang/recordtree/internal/i18n"
	"github.com/conduit-lang/recordtree/internal/repo"
	"github.com/conduit-lang/recordtree/internal/store"
)

// DefaultToolbar is the record toolbar used when Config.Toolbar is empty.
// Buttons need edit or full rights and disappear from read-only sites.
const DefaultToolbar = `<toolbar name="records">
  <control type="button" id="add" title="BTN_ADD" ro_rights="2"/>
  <control type="button" id="edit" title="BTN_EDIT" ro_rights="2"/>
  <control type="separator"/>
  <control type="button" id="delete" title="BTN_DELETE" ro_rights="3"/>
  <control type="link" id="json" title="TXT_JSON" href="?json"/>
</toolbar>`

// DefaultTranslations covers the constants the site emits itself
var DefaultTranslations = i18n.Translations{
	"BTN_ADD":             {language.English: "Add", language.Ukrainian: "Додати"},
	"BTN_EDIT":            {language.English: "Edit", language.Ukrainian: "Редагувати"},
	"BTN_DELETE":          {language.English: "Delete", language.Ukrainian: "Видалити"},
	"TXT_JSON":            {language.English: "JSON", language.Ukrainian: "JSON"},
	"TXT_TOTAL":           {language.English: "Total", language.Ukrainian: "Всього"},
	"MSG_EMPTY_RECORDSET": {language.English: "No records", language.Ukrainian: "Записів немає"},
	"ERR_INTERNAL":        {language.English: "Internal error", language.Ukrainian: "Внутрішня помилка"},
	"FIELD_PATH":          {language.English: "Path", language.Ukrainian: "Шлях"},
	"FIELD_NAME":          {language.English: "Name", language.Ukrainian: "Назва"},
	"FIELD_DIR":           {language.English: "Folder", language.Ukrainian: "Тека"},
	"FIELD_SIZE":          {language.English: "Size", language.Ukrainian: "Розмір"},
	"FIELD_MODIFIED":      {language.English: "Modified", language.Ukrainian: "Змінено"},
}

// Config selects what the site exposes
type Config struct {
	// Tables restricts browsing to these tables. Empty allows any table
	// the store reports as existing.
	Tables []string
	// PerPage is the page size of table views
	PerPage int
	// ReadOnly lowers document rights to read
	ReadOnly bool
	// Options maps table to field to the source of its option list
	Options map[string]map[string]store.OptionSource
	// Toolbar is the record toolbar markup
	Toolbar string
	// RepoPrefix is the first path segment of repository views
	RepoPrefix string
}

// Site assembles the components of each request
type Site struct {
	q       store.QueryExecutor
	options *store.OptionLoader
	repo    repo.Repository
	cfg     Config
	logger  *zap.Logger
}

// New creates a site. q and r may be nil when the site serves no tables or
// no repository.
func New(q store.QueryExecutor, options *store.OptionLoader, r repo.Repository, cfg Config, logger *zap.Logger) *Site {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 20
	}
	if cfg.RepoPrefix == "" {
		cfg.RepoPrefix = "files"
	}
	if cfg.Toolbar == "" {
		cfg.Toolbar = DefaultToolbar
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Site{q: q, options: options, repo: r, cfg: cfg, logger: logger}
}

// Components picks the component tree for the request path
func (s *Site) Components(_ context.Context, req *document.Request) ([]document.Component, error) {
	rest := req.Remaining()
	switch {
	case len(rest) == 0:
		return []document.Component{&indexComponent{site: s}}, nil
	case s.repo != nil && rest[0] == s.cfg.RepoPrefix:
		return []document.Component{&repoComponent{site: s}}, nil
	default:
		return []document.Component{&tableComponent{site: s}}, nil
	}
}

// tables lists the published tables: the configured ones, or every table
// the store can enumerate
func (s *Site) tables(ctx context.Context) ([]string, error) {
	if len(s.cfg.Tables) > 0 {
		return append([]string{}, s.cfg.Tables...), nil
	}
	lister, ok := s.q.(store.TableLister)
	if !ok {
		return []string{}, nil
	}
	names, err := lister.Tables(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *Site) allowed(table string) bool {
	if len(s.cfg.Tables) == 0 {
		return true
	}
	for _, t := range s.cfg.Tables {
		if t == table {
			return true
		}
	}
	return false
}
