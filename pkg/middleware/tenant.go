package middleware

import (
	"context"
	"net/http"

	"workbay/pkg/logger"
)

const TenantIDKey contextKey = "tenant_id"

// TenantHeader carries the tenant identity resolved by the gateway in front
// of this service. The service trusts the header; authentication happens
// upstream.
const TenantHeader = "X-Tenant-ID"

// TenantResolution rejects requests without a tenant identity and places the
// tenant id on the request context. Every repository query is scoped by it.
func TenantResolution(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get(TenantHeader)
			if tenantID == "" {
				log.Warn("Request without tenant identity",
					"method", r.Method,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"X-Tenant-ID header is required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), TenantIDKey, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantFromContext returns the tenant id placed by TenantResolution, or ""
// when the middleware did not run (e.g. health endpoints).
func TenantFromContext(ctx context.Context) string {
	if v := ctx.Value(TenantIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
