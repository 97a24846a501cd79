package document

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/i18n"
)

// MsgInternalError replaces the message of developer and critical errors
// outside debug mode
const MsgInternalError = "ERR_INTERNAL"

// PublicCode returns the code shown for err, CodeInternal for errors outside
// the taxonomy
func PublicCode(err error) string {
	if code := apperror.CodeOf(err); code != "" {
		return code
	}
	return CodeInternal
}

// PublicMessage returns the text an end user sees for err. Permission and
// not-found messages are shown; developer and critical detail only in debug.
func PublicMessage(err error, debug bool) string {
	if debug {
		return err.Error()
	}
	switch apperror.KindOf(err) {
	case apperror.KindPermission, apperror.KindNotFound:
		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Message != "" {
			return appErr.Message
		}
		return PublicCode(err)
	default:
		return MsgInternalError
	}
}

// NewErrorDocument renders err as
// <document><errors><error code kind>message</error></errors></document>.
// Debug mode adds the error details as <detail name> children.
func NewErrorDocument(err error, lang language.Tag, tr i18n.Translator, debug bool) *Document {
	d := New(lang)
	d.SetTranslator(tr)

	node := d.root.CreateElement(NodeErrors).CreateElement(NodeError)
	node.CreateAttr("code", PublicCode(err))
	node.CreateAttr("kind", apperror.KindOf(err).String())

	if debug {
		node.SetText(err.Error())
		var appErr *apperror.Error
		if errors.As(err, &appErr) && len(appErr.Details) > 0 {
			keys := make([]string, 0, len(appErr.Details))
			for k := range appErr.Details {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				detail := node.CreateElement("detail")
				detail.CreateAttr("name", k)
				detail.SetText(fmt.Sprint(appErr.Details[k]))
			}
		}
	} else {
		node.SetText(d.translator.Translate(PublicMessage(err, false)))
	}

	d.Finalize()
	return d
}
