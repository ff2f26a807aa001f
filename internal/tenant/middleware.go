package tenant

import (
	"log/slog"
	"net/http"
	"strings"
)

// Middleware installs the clinic code for the wrapped handler.
//
// Resolvers are consulted in order and the first non-empty value wins. A
// resolver error is logged and skipped; the middleware never rejects a
// request, so an unresolved clinic surfaces as ErrUnresolved from the first
// scoped operation instead.
//
// The handler receives a derived request. The inbound request and its context
// are not modified, so nothing remains installed once the handler returns or
// panics.
func Middleware(resolvers ...Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := resolve(r, resolvers)
			if code == "" {
				next.ServeHTTP(w, r.WithContext(Clear(r.Context())))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClinicCode(r.Context(), code)))
		})
	}
}

func resolve(r *http.Request, resolvers []Resolver) string {
	for _, res := range resolvers {
		code, err := res.Resolve(r)
		if err != nil {
			slog.WarnContext(r.Context(), "clinic code resolver failed", "error", err)
			continue
		}
		if code = strings.TrimSpace(code); code != "" {
			return code
		}
	}
	return ""
}
