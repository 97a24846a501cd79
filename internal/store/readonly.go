package store

import (
	"context"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// ReadOnly wraps an executor and rejects every modification
type ReadOnly struct {
	QueryExecutor
}

// NewReadOnly wraps q
func NewReadOnly(q QueryExecutor) *ReadOnly {
	return &ReadOnly{QueryExecutor: q}
}

// Modify always fails with a permission error
func (r *ReadOnly) Modify(_ context.Context, op Op, table string, _ map[string]interface{}, _ Criteria) (Result, error) {
	return Result{}, apperror.Permission(CodeReadOnly, "%s on %s is not permitted: storage is read-only", op, table)
}

// Tables lists the tables of the wrapped executor, or none when it cannot
// enumerate them
func (r *ReadOnly) Tables(ctx context.Context) ([]string, error) {
	if l, ok := r.QueryExecutor.(TableLister); ok {
		return l.Tables(ctx)
	}
	return nil, nil
}
