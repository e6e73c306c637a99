package middleware

import (
	"net/http"
	"strings"
)

// Vary adds Accept to the Vary header since responses are negotiated between JSON
// and CBOR. Origin is added separately by the CORS middleware.
func Vary() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			EnsureVary(w.Header(), "Accept")
			next.ServeHTTP(w, r)
		})
	}
}

// EnsureVary appends each value to the Vary header unless it is already listed.
func EnsureVary(h http.Header, values ...string) {
	present := map[string]struct{}{}
	for _, line := range h.Values("Vary") {
		for part := range strings.SplitSeq(line, ",") {
			if p := strings.TrimSpace(part); p != "" {
				present[strings.ToLower(p)] = struct{}{}
			}
		}
	}
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := present[key]; ok {
			continue
		}
		present[key] = struct{}{}
		h.Add("Vary", v)
	}
}
