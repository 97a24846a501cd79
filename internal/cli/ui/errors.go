package ui

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

var hints = map[apperror.Kind]string{
	apperror.KindDeveloper:  "check the table, field and control declarations",
	apperror.KindPermission: "the storage is read-only or the rights are too low",
	apperror.KindCritical:   "check the database connection and rerun with --debug",
	apperror.KindNotFound:   "check the table name and key value",
}

// FormatError renders err with its kind, code and details. Errors outside
// the taxonomy render as a plain message.
//
//	✗ NOT_FOUND ERR_NO_SUCH_TABLE: table ghost not found
//	   table: ghost
//	   → check the table name and key value
func FormatError(err error, noColor bool) string {
	header := color.New(color.FgRed, color.Bold)
	body := color.New(color.FgRed)
	hint := color.New(color.FgCyan)
	if noColor {
		header.DisableColor()
		body.DisableColor()
		hint.DisableColor()
	}

	var b strings.Builder
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		header.Fprintf(&b, "✗ %v\n", err)
		return b.String()
	}

	header.Fprintf(&b, "✗ %s %s: %s\n", strings.ToUpper(appErr.Kind.String()), appErr.Code, appErr.Message)
	if appErr.Err != nil {
		body.Fprintf(&b, "   cause: %v\n", appErr.Err)
	}
	keys := make([]string, 0, len(appErr.Details))
	for k := range appErr.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		body.Fprintf(&b, "   %s: %v\n", k, appErr.Details[k])
	}
	if h, ok := hints[appErr.Kind]; ok {
		hint.Fprintf(&b, "   → %s\n", h)
	}
	return b.String()
}

// WriteError writes FormatError(err) to w
func WriteError(w io.Writer, err error, noColor bool) {
	fmt.Fprint(w, FormatError(err, noColor))
}

// WriteSuccess writes a success line
func WriteSuccess(w io.Writer, message string, noColor bool) {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	green.Fprintf(w, "✓ %s\n", message)
}
