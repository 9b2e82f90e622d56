package middleware

import (
	"net/http"
	"strings"
)

// CORS allows browser tools on the given origins to read the API. "*"
// allows every origin and "*.example.com" allows subdomains. With no
// origins the middleware is a no-op.
//
// The API is read-only, so only GET, HEAD and OPTIONS are advertised and
// credentials are never allowed.
func CORS(origins []string) Middleware {
	return func(next http.Handler) http.Handler {
		if len(origins) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && isOriginAllowed(origin, origins)

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Accept, "+RequestIDHeader)
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		// *.example.com matches subdomains but not the domain itself
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(origin, "."+allowed[2:]) {
			return true
		}
	}
	return false
}
