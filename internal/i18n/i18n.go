// Package i18n resolves message constants into the language of the current
// request. Lookups go through a shared read-through cache keyed by language
// and constant; a constant without a translation resolves to itself.
package i18n

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/conduit-lang/recordtree/internal/cache"
)

// Translator resolves constants for one language
type Translator interface {
	Translate(constant string) string
}

// TranslatorFunc adapts a function to the Translator interface
type TranslatorFunc func(constant string) string

// Translate calls f
func (f TranslatorFunc) Translate(constant string) string { return f(constant) }

// Identity returns every constant unchanged
var Identity Translator = TranslatorFunc(func(constant string) string { return constant })

// Source looks up a single translation. ok is false when the source has no
// entry for the constant.
type Source interface {
	Lookup(ctx context.Context, lang language.Tag, constant string) (value string, ok bool, err error)
}

// Translations maps constant to language to text
type Translations map[string]map[language.Tag]string

// CatalogSource serves translations from an x/text catalog
type CatalogSource struct {
	catalog catalog.Catalog
	// keys records which constants each catalog language defines
	keys map[language.Tag]map[string]bool
}

// NewCatalogSource builds a catalog from a translation table
func NewCatalogSource(t Translations) (*CatalogSource, error) {
	b := catalog.NewBuilder()
	keys := make(map[language.Tag]map[string]bool)
	for constant, byLang := range t {
		for lang, text := range byLang {
			// catalog messages are format strings
			if err := b.SetString(lang, constant, strings.ReplaceAll(text, "%", "%%")); err != nil {
				return nil, err
			}
			if keys[lang] == nil {
				keys[lang] = make(map[string]bool)
			}
			keys[lang][constant] = true
		}
	}
	return &CatalogSource{catalog: b, keys: keys}, nil
}

// Lookup implements Source
func (s *CatalogSource) Lookup(_ context.Context, lang language.Tag, constant string) (string, bool, error) {
	langs := s.catalog.Languages()
	if len(langs) == 0 {
		return "", false, nil
	}
	_, idx, _ := s.catalog.Matcher().Match(lang)
	matched := langs[idx]
	if !s.keys[matched][constant] {
		return "", false, nil
	}
	p := message.NewPrinter(matched, message.Catalog(s.catalog))
	return p.Sprintf(constant), true, nil
}

// Service is the process-wide translation entry point
type Service struct {
	source   Source
	store    cache.Store
	ttl      time.Duration
	fallback language.Tag
	logger   *zap.Logger

	supported []language.Tag
	matcher   language.Matcher
}

// Option configures a Service
type Option func(*Service)

// WithStore sets the cache store
func WithStore(store cache.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithTTL sets how long translations stay cached
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithLanguages restricts Tag to the given languages
func WithLanguages(tags ...language.Tag) Option {
	return func(s *Service) {
		if len(tags) == 0 {
			return
		}
		s.supported = tags
		s.matcher = language.NewMatcher(tags)
	}
}

// WithLogger sets the logger used for source and cache failures
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a translation service. fallback is used for unknown or
// empty language hints.
func NewService(source Source, fallback language.Tag, opts ...Option) *Service {
	s := &Service{
		source:   source,
		fallback: fallback,
		ttl:      cache.DefaultConfig().DefaultTTL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tag resolves a language hint such as "en" or "uk-UA"
func (s *Service) Tag(hint string) language.Tag {
	if hint == "" {
		return s.fallback
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return s.fallback
	}
	if s.matcher == nil {
		return tag
	}
	_, idx, conf := s.matcher.Match(tag)
	if conf == language.No {
		return s.fallback
	}
	return s.supported[idx]
}

// Translate returns the translation of constant in lang, or constant itself.
// Source and cache failures are logged and degrade to the constant.
func (s *Service) Translate(ctx context.Context, lang language.Tag, constant string) string {
	if constant == "" || s.source == nil {
		return constant
	}

	key := lang.String() + ":" + constant
	value, err := cache.GetOrLoad(ctx, s.store, key, s.ttl,
		func(ctx context.Context) ([]byte, error) {
			text, ok, err := s.source.Lookup(ctx, lang, constant)
			if err != nil {
				return nil, err
			}
			if !ok {
				text = constant
			}
			return []byte(text), nil
		},
		func(err error) {
			s.logger.Warn("translation cache unavailable", zap.String("key", key), zap.Error(err))
		},
	)
	if err != nil {
		s.logger.Warn("translation lookup failed", zap.String("constant", constant), zap.Error(err))
		return constant
	}
	return string(value)
}

// For binds the service to one request context and language
func (s *Service) For(ctx context.Context, lang language.Tag) Translator {
	return TranslatorFunc(func(constant string) string {
		return s.Translate(ctx, lang, constant)
	})
}
