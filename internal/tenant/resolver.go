package tenant

import (
	"net"
	"net/http"
	"strings"
)

// Resolver resolves the business a request operates on, from either the
// configured header or the request subdomain.
type Resolver struct {
	HeaderName      string
	RootDomain      string
	DefaultBusiness string
}

// NewResolver returns a resolver for the given header name, root domain, and
// default business slug. An empty headerName falls back to "X-Business-ID".
func NewResolver(headerName, rootDomain, defaultBusiness string) *Resolver {
	if headerName == "" {
		headerName = "X-Business-ID"
	}
	return &Resolver{
		HeaderName:      headerName,
		RootDomain:      strings.ToLower(strings.TrimSpace(rootDomain)),
		DefaultBusiness: strings.TrimSpace(defaultBusiness),
	}
}

// Middleware resolves the business from the request and injects it into the
// context passed downstream.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		businessID := r.Resolve(req)
		if businessID == "" {
			businessID = r.DefaultBusiness
		}
		if businessID != "" {
			req = req.WithContext(WithBusiness(req.Context(), businessID))
		}
		next.ServeHTTP(w, req)
	})
}

// Resolve reads the business identifier from the configured header, falling
// back to the request subdomain.
func (r *Resolver) Resolve(req *http.Request) string {
	if r == nil || req == nil {
		return ""
	}
	if id := strings.TrimSpace(req.Header.Get(r.HeaderName)); id != "" {
		return id
	}
	host := hostWithoutPort(req.Host)
	if host == "" {
		return ""
	}
	return strings.TrimSpace(r.subdomainFromHost(host))
}

func (r *Resolver) subdomainFromHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if r.RootDomain != "" {
		if host == r.RootDomain {
			return ""
		}
		suffix := "." + r.RootDomain
		if !strings.HasSuffix(host, suffix) {
			return ""
		}
		host = strings.TrimSuffix(host, suffix)
	}
	parts := strings.Split(host, ".")
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func hostWithoutPort(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if strings.HasPrefix(hostport, "[") {
		if idx := strings.Index(hostport, "]"); idx != -1 {
			if host := hostport[1:idx]; host != "" {
				return host
			}
		}
	}
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	if idx := strings.Index(hostport, ":"); idx != -1 && strings.Count(hostport, ":") == 1 {
		return hostport[:idx]
	}
	return hostport
}
