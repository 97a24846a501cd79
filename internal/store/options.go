package store

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/cache"
	"github.com/conduit-lang/recordtree/internal/data"
)

// OptionSource names the table and columns an option list is read from
type OptionSource struct {
	Table string
	ID    string
	Label string
	// OrderBy defaults to the label column
	OrderBy string
}

func (s OptionSource) key() string {
	return "options:" + s.Table + ":" + s.ID + ":" + s.Label + ":" + s.OrderBy
}

type cachedOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// OptionLoader reads select option lists through a read-through cache
type OptionLoader struct {
	q      QueryExecutor
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewOptionLoader creates a loader. store may be nil to disable caching.
func NewOptionLoader(q QueryExecutor, store cache.Store, ttl time.Duration, logger *zap.Logger) *OptionLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptionLoader{q: q, store: store, ttl: ttl, logger: logger}
}

// Load returns the option list of src
func (l *OptionLoader) Load(ctx context.Context, src OptionSource) (*data.Options, error) {
	orderBy := src.OrderBy
	if orderBy == "" {
		orderBy = src.Label
	}

	raw, err := cache.GetOrLoad(ctx, l.store, src.key(), l.ttl,
		func(ctx context.Context) ([]byte, error) {
			rows, err := l.q.Select(ctx, src.Table, []string{src.ID, src.Label}, nil,
				&SelectOptions{OrderBy: []string{orderBy}})
			if err != nil {
				return nil, err
			}
			items := make([]cachedOption, 0, len(rows))
			for _, row := range rows {
				items = append(items, cachedOption{ID: text(row[src.ID]), Label: text(row[src.Label])})
			}
			return json.Marshal(items)
		},
		func(err error) {
			l.logger.Warn("option cache unavailable", zap.String("table", src.Table), zap.Error(err))
		},
	)
	if err != nil {
		return nil, err
	}

	var items []cachedOption
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperror.Critical(CodeQuery, "cached options of %s are corrupt", src.Table).Wrap(err)
	}
	opts := data.NewOptions()
	for _, item := range items {
		opts.Add(item.ID, item.Label)
	}
	return opts, nil
}

// Attach loads options for every select and multi field of meta that has a
// source in sources
func (l *OptionLoader) Attach(ctx context.Context, meta *data.FieldMetadataSet, sources map[string]OptionSource) error {
	for _, f := range meta.ByType(data.TypeSelect, data.TypeMulti) {
		src, ok := sources[f.Name()]
		if !ok {
			continue
		}
		opts, err := l.Load(ctx, src)
		if err != nil {
			return err
		}
		f.SetOptions(opts)
	}
	return nil
}

func text(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
