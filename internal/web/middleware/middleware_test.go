package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLogger(zap.New(core)), logs
}

func TestChain_Order(t *testing.T) {
	var called []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = append(called, name+"-before")
				next.ServeHTTP(w, r)
				called = append(called, name+"-after")
			})
		}
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = append(called, "handler")
	})

	base := NewChain(tag("m1"))
	extended := base.Append(tag("m2"))
	extended.Then(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}, called)
	assert.Len(t, base.middlewares, 1, "Append must not mutate the base chain")
	assert.Same(t, base, base.Use(tag("m3")))
}

func TestRequestID(t *testing.T) {
	var fromContext string
	handler := RequestIDWithGenerator(func() string { return "generated" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromContext = GetRequestID(r.Context())
		}))

	tests := []struct {
		name     string
		incoming string
		want     string
	}{
		{"generated when absent", "", "generated"},
		{"incoming header reused", "abc-123", "abc-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(HeaderRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, fromContext)
			assert.Equal(t, tt.want, rec.Header().Get(HeaderRequestID))
		})
	}
}

func TestRequestID_UUID(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestID()(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestLogging(t *testing.T) {
	logger, logs := observed(zapcore.DebugLevel)
	logger.SkipPaths = []string{"/health"}

	handler := NewChain(RequestIDWithGenerator(func() string { return "rid" }), Logging(logger)).
		Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/missing":
				w.WriteHeader(http.StatusNotFound)
			case "/broken":
				w.WriteHeader(http.StatusInternalServerError)
			}
			w.Write([]byte("body"))
		}))

	for _, path := range []string{"/news", "/missing", "/broken", "/health"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "rid", fields["request_id"])
	assert.Equal(t, "/news", fields["path"])
	assert.Equal(t, int64(200), fields["status"])
	assert.Equal(t, int64(4), fields["bytes"])
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		debug    bool
		contains []string
		hidden   string
	}{
		{
			name:     "string panic hidden",
			value:    "secret state",
			contains: []string{`code="ERR_PANIC"`, "ERR_INTERNAL"},
			hidden:   "secret state",
		},
		{
			name:     "error panic in debug",
			value:    errors.New("nil map write"),
			debug:    true,
			contains: []string{"nil map write"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observed(zapcore.ErrorLevel)
			handler := Recovery(logger, tt.debug)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/xml"))
			for _, s := range tt.contains {
				assert.Contains(t, rec.Body.String(), s)
			}
			if tt.hidden != "" {
				assert.NotContains(t, rec.Body.String(), tt.hidden)
			}
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, "panic recovered", logs.All()[0].Message)
		})
	}
}

func TestRecovery_AbortHandlerRepanics(t *testing.T) {
	logger, _ := observed(zapcore.ErrorLevel)
	handler := Recovery(logger, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestStandard(t *testing.T) {
	logger, logs := observed(zapcore.InfoLevel)
	handler := Standard(logger, false).Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	// panic entry then the access entry with the recovered status
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, int64(500), logs.All()[1].ContextMap()["status"])
}
