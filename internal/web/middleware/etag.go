package middleware

import (
	"net/http"
	"strings"
)

// ETag tags every GET response with a weak ETag built from version and
// answers matching conditional requests with 304. version is consulted per
// request; an empty version disables tagging.
func ETag(version func() string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := version()
			if v == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
				next.ServeHTTP(w, r)
				return
			}

			etag := `W/"` + v + `"`
			w.Header().Set("ETag", etag)
			if MatchesETag(etag, ParseIfNoneMatch(r.Header.Get("If-None-Match"))) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ParseIfNoneMatch splits an If-None-Match header into its entity tags
func ParseIfNoneMatch(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if header == "*" {
		return []string{"*"}
	}

	var etags []string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		weak := strings.HasPrefix(part, "W/")
		tag := strings.TrimPrefix(part, "W/")
		if len(tag) < 2 || tag[0] != '"' || tag[len(tag)-1] != '"' {
			continue
		}
		if weak {
			tag = "W/" + tag
		}
		etags = append(etags, tag)
	}
	return etags
}

// MatchesETag uses weak comparison: W/ prefixes are ignored on both sides
func MatchesETag(etag string, etags []string) bool {
	if len(etags) == 1 && etags[0] == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, e := range etags {
		if strings.TrimPrefix(e, "W/") == want {
			return true
		}
	}
	return false
}
