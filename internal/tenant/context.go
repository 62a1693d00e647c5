package tenant

import (
	"context"
	"net/http"
	"strings"

	"github.com/mandi-labs/backend-mandi/internal/common"
)

type contextKey string

const businessContextKey contextKey = "tenant.business"

// WithBusiness stores the business identifier inside the context.
func WithBusiness(ctx context.Context, businessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, businessContextKey, businessID)
}

// BusinessFromContext extracts the business identifier, if one was resolved.
func BusinessFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	businessID, ok := ctx.Value(businessContextKey).(string)
	if !ok {
		return "", false
	}
	businessID = strings.TrimSpace(businessID)
	if businessID == "" {
		return "", false
	}
	return businessID, true
}

// RequireBusiness rejects requests that did not resolve to a business. Owner
// routes sit behind it so handlers can assume the scope exists.
func RequireBusiness(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if _, ok := BusinessFromContext(req.Context()); !ok {
			common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "business scope is required", nil)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// PrefixKey namespaces a cache or queue key per business.
func PrefixKey(businessID, key string) string {
	if businessID == "" {
		return key
	}
	return businessID + ":" + key
}
