package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// ETag returns a strong entity tag for the output body
func ETag(out *Output) string {
	hash := sha256.Sum256(out.Body)
	return `"` + hex.EncodeToString(hash[:16]) + `"`
}

// parseIfNoneMatch splits an If-None-Match header into its entity tags
func parseIfNoneMatch(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if header == "*" {
		return []string{"*"}
	}

	var tags []string
	for i := 0; i < len(header); {
		for i < len(header) && (header[i] == ' ' || header[i] == ',') {
			i++
		}
		weak := strings.HasPrefix(header[i:], "W/")
		if weak {
			i += 2
		}
		if i >= len(header) || header[i] != '"' {
			break
		}
		end := strings.IndexByte(header[i+1:], '"')
		if end < 0 {
			break
		}
		tags = append(tags, header[i:i+end+2])
		i += end + 2
	}
	return tags
}

// NotModified reports whether r already holds the representation tagged
// etag. Weak validators compare equal to their strong form.
func NotModified(r *http.Request, etag string) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	for _, tag := range parseIfNoneMatch(r.Header.Get("If-None-Match")) {
		if tag == "*" || tag == etag {
			return true
		}
	}
	return false
}

// WriteConditional is Write for successful GET responses: it tags the body
// and answers 304 without a body when the client's copy is current
func WriteConditional(w http.ResponseWriter, r *http.Request, status int, out *Output) error {
	if status != http.StatusOK {
		return Write(w, status, out)
	}
	etag := ETag(out)
	w.Header().Set("ETag", etag)
	if NotModified(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	return Write(w, status, out)
}
