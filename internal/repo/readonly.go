package repo

import (
	"context"
	"io"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// ReadOnly exposes the read operations of a repository and rejects every
// write. Its capabilities are all false so that flags and enforcement agree.
type ReadOnly struct {
	inner Repository
}

// NewReadOnly wraps r
func NewReadOnly(r Repository) *ReadOnly {
	return &ReadOnly{inner: r}
}

// Name returns the wrapped repository name
func (r *ReadOnly) Name() string { return r.inner.Name() }

// Capabilities reports no write capability
func (r *ReadOnly) Capabilities() Capabilities { return Capabilities{} }

// List delegates to the wrapped repository
func (r *ReadOnly) List(ctx context.Context, dir string) ([]Entry, error) {
	return r.inner.List(ctx, dir)
}

// Open delegates to the wrapped repository
func (r *ReadOnly) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.inner.Open(ctx, path)
}

func (r *ReadOnly) denied(op, path string) error {
	return apperror.Permission(CodeReadOnly, "%s of %s is not permitted: repository %s is read-only", op, path, r.inner.Name()).
		WithDetail("repository", r.inner.Name())
}

// CreateDir is rejected
func (r *ReadOnly) CreateDir(_ context.Context, dir string) error { return r.denied("create", dir) }

// Put is rejected
func (r *ReadOnly) Put(_ context.Context, path string, _ io.Reader) error {
	return r.denied("upload", path)
}

// Rename is rejected
func (r *ReadOnly) Rename(_ context.Context, from, _ string) error { return r.denied("rename", from) }

// Delete is rejected
func (r *ReadOnly) Delete(_ context.Context, path string) error { return r.denied("delete", path) }
