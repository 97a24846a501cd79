package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/document"
	"github.com/conduit-lang/recordtree/internal/i18n"
	"github.com/conduit-lang/recordtree/internal/transform"
)

// CodePanic is reported for recovered panics
const CodePanic = "ERR_PANIC"

// Recovery turns a panic into a critical error rendered as an XML error
// document with status 500. The panic value and stack are logged; they
// reach the response only in debug mode.
func Recovery(logger *Logger, debugMode bool) Middleware {
	xml := transform.NewXML(transform.XMLConfig{Debug: debugMode})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				err := panicError(v)
				logger.Error("panic recovered",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Error(err),
					zap.ByteString("stack", debug.Stack()),
				)

				doc := document.NewErrorDocument(err, language.Und, i18n.Identity, debugMode)
				out, terr := xml.Transform(doc)
				if terr != nil {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				_ = transform.Write(w, http.StatusInternalServerError, out)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func panicError(v interface{}) *apperror.Error {
	if err, ok := v.(error); ok {
		return apperror.Critical(CodePanic, "panic: %v", err).Wrap(err)
	}
	return apperror.Critical(CodePanic, "panic: %s", fmt.Sprint(v))
}
