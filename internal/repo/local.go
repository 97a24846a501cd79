package repo

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// Local is a repository over a directory of the local file system
type Local struct {
	name string
	root string
}

// NewLocal creates a repository rooted at dir, which must exist
func NewLocal(name, dir string) (*Local, error) {
	if dir == "" {
		return nil, apperror.Developer(CodeNoRoot, "repository %s has no root directory", name)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, apperror.Developer(CodeNoRoot, "cannot resolve root of repository %s", name).Wrap(err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, apperror.Developer(CodeNoRoot, "repository root %s is not a directory", abs)
	}
	return &Local{name: name, root: abs}, nil
}

// Name returns the repository name
func (l *Local) Name() string { return l.name }

// Capabilities reports every write as permitted
func (l *Local) Capabilities() Capabilities {
	return Capabilities{CreateDir: true, EditDir: true, EditFile: true, Upload: true}
}

// resolve maps a repository path to a file system path inside root
func (l *Local) resolve(p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	full := filepath.Join(l.root, filepath.FromSlash(clean))
	if full != l.root && !strings.HasPrefix(full, l.root+string(filepath.Separator)) {
		return "", apperror.Permission(CodeOutsideRoot, "path %q is outside the repository", p)
	}
	return full, nil
}

func ioError(op, p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return apperror.NotFound(CodeNotFound, "%s not found", p).Wrap(err)
	}
	if errors.Is(err, fs.ErrExist) {
		return apperror.Developer(CodeExists, "%s already exists", p).Wrap(err)
	}
	return apperror.Critical(CodeIO, "%s %s failed", op, p).Wrap(err)
}

// List returns the entries of dir, directories first, then by name
func (l *Local) List(ctx context.Context, dir string) ([]Entry, error) {
	full, err := l.resolve(dir)
	if err != nil {
		return nil, err
	}
	items, err := os.ReadDir(full)
	if err != nil {
		return nil, ioError("list", dir, err)
	}

	base := path.Clean("/" + dir)
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		e := Entry{
			Name:     item.Name(),
			Path:     path.Join(base, item.Name()),
			Dir:      item.IsDir(),
			Modified: info.ModTime(),
		}
		if !e.Dir {
			e.Size = info.Size()
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Dir != entries[j].Dir {
			return entries[i].Dir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Open opens a file for reading
func (l *Local) Open(_ context.Context, p string) (io.ReadCloser, error) {
	full, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, ioError("open", p, err)
	}
	return f, nil
}

// CreateDir creates dir and any missing parents
func (l *Local) CreateDir(_ context.Context, dir string) error {
	full, err := l.resolve(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return ioError("create", dir, err)
	}
	return nil
}

// Put writes r to p, replacing an existing file
func (l *Local) Put(_ context.Context, p string, r io.Reader) error {
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return ioError("write", p, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return ioError("write", p, err)
	}
	if err := f.Close(); err != nil {
		return ioError("write", p, err)
	}
	return nil
}

// Rename moves from to to. The target must not exist.
func (l *Local) Rename(_ context.Context, from, to string) error {
	src, err := l.resolve(from)
	if err != nil {
		return err
	}
	dst, err := l.resolve(to)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dst); err == nil {
		return apperror.Developer(CodeExists, "%s already exists", to)
	}
	if err := os.Rename(src, dst); err != nil {
		return ioError("rename", from, err)
	}
	return nil
}

// Delete removes a file or an empty directory
func (l *Local) Delete(_ context.Context, p string) error {
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	if full == l.root {
		return apperror.Permission(CodeOutsideRoot, "the repository root cannot be deleted")
	}
	if err := os.Remove(full); err != nil {
		return ioError("delete", p, err)
	}
	return nil
}
