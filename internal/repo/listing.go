package repo

import (
	"context"
	"path"
	"strings"

	"github.com/conduit-lang/recordtree/internal/builder"
	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/i18n"
)

// Listing field names
const (
	FieldPath     = "path"
	FieldName     = "name"
	FieldDir      = "dir"
	FieldSize     = "size"
	FieldModified = "modified"
)

// ListingMetadata describes the columns of a directory listing
func ListingMetadata(repoName string) *data.FieldMetadataSet {
	field := func(name string, t data.FieldType, title string) *data.FieldMetadata {
		return data.NewFieldMetadata(name, t).
			SetProperty(data.PropTitle, title).
			SetProperty(data.PropTableName, repoName)
	}
	return data.NewFieldMetadataSet(
		field(FieldPath, data.TypeString, "FIELD_PATH").SetProperty(data.PropKey, "true"),
		field(FieldName, data.TypeString, "FIELD_NAME"),
		field(FieldDir, data.TypeBool, "FIELD_DIR"),
		field(FieldSize, data.TypeInt, "FIELD_SIZE"),
		field(FieldModified, data.TypeDateTime, "FIELD_MODIFIED"),
	)
}

// ListingRows converts entries to a record set matching ListingMetadata
func ListingRows(entries []Entry) *data.RecordSet {
	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		dir := 0
		if e.Dir {
			dir = 1
		}
		rows = append(rows, map[string]interface{}{
			FieldPath:     e.Path,
			FieldName:     e.Name,
			FieldDir:      dir,
			FieldSize:     e.Size,
			FieldModified: e.Modified,
		})
	}
	return data.FromRows([]string{FieldPath, FieldName, FieldDir, FieldSize, FieldModified}, rows)
}

// Breadcrumbs returns the trail from the repository root to dir
func Breadcrumbs(rootTitle, dir string) []builder.Breadcrumb {
	crumbs := []builder.Breadcrumb{{ID: "/", Title: rootTitle, Path: "/"}}
	current := "/"
	for _, segment := range strings.Split(strings.Trim(path.Clean("/"+dir), "/"), "/") {
		if segment == "" {
			continue
		}
		current = path.Join(current, segment)
		crumbs = append(crumbs, builder.Breadcrumb{ID: current, Title: segment, Path: current})
	}
	return crumbs
}

// RenderListing lists dir and renders it as a repository JSON payload with
// breadcrumbs. Modification times render as dates.
func RenderListing(ctx context.Context, r Repository, dir string, tr i18n.Translator) (string, error) {
	entries, err := r.List(ctx, dir)
	if err != nil {
		return "", err
	}
	return RenderEntries(r.Name(), dir, entries, tr)
}

// RenderEntries renders already listed entries of dir
func RenderEntries(repoName, dir string, entries []Entry, tr i18n.Translator) (string, error) {
	b := builder.NewJSONRepo(FieldModified)
	b.SetMetadata(ListingMetadata(repoName))
	b.SetData(ListingRows(entries))
	if tr != nil {
		b.SetTranslator(tr)
	}
	for _, c := range Breadcrumbs(repoName, dir) {
		b.AddBreadcrumb(c)
	}
	if err := b.Build(); err != nil {
		return "", err
	}
	return b.Result(), nil
}
