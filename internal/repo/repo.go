// Package repo exposes file repositories to documents: directory listings
// rendered through the JSON repository builder, plus the write operations a
// repository may or may not permit.
package repo

import (
	"context"
	"io"
	"time"
)

// Capabilities advertises which write operations a repository accepts.
// Enforcement always happens in the operation itself; a repository that
// rejects a write must also report the matching capability as false.
type Capabilities struct {
	CreateDir bool
	EditDir   bool
	EditFile  bool
	Upload    bool
}

// Entry is one item of a directory listing
type Entry struct {
	Name     string
	Path     string
	Dir      bool
	Size     int64
	Modified time.Time
}

// Repository is a hierarchical file store addressed by slash separated
// paths relative to its root
type Repository interface {
	Name() string
	Capabilities() Capabilities
	List(ctx context.Context, dir string) ([]Entry, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	CreateDir(ctx context.Context, dir string) error
	Put(ctx context.Context, path string, r io.Reader) error
	Rename(ctx context.Context, from, to string) error
	Delete(ctx context.Context, path string) error
}
