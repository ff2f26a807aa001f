package tenant

import (
	"context"
	"net/http"
)

// Header is the request header that selects the clinic.
const Header = "X-Clinic-Code"

// Resolver determines the clinic code for a request.
// An empty result with a nil error means "no opinion".
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls f(r).
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// HeaderResolver reads the clinic code from a request header.
type HeaderResolver struct {
	Name string
}

// NewHeaderResolver returns a resolver for the given header, X-Clinic-Code if empty.
func NewHeaderResolver(name string) *HeaderResolver {
	if name == "" {
		name = Header
	}
	return &HeaderResolver{Name: name}
}

// Resolve returns the header value.
func (h *HeaderResolver) Resolve(r *http.Request) (string, error) {
	return r.Header.Get(h.Name), nil
}

// FallbackResolver returns a configured default clinic code,
// typically looked up from the settings store.
type FallbackResolver struct {
	Lookup func(ctx context.Context) (string, error)
}

// Resolve calls the lookup with the request context.
func (f *FallbackResolver) Resolve(r *http.Request) (string, error) {
	if f.Lookup == nil {
		return "", nil
	}
	return f.Lookup(r.Context())
}
