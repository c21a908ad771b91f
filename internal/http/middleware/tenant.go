package middleware

import (
	"net/http"
	"strings"

	"github.com/brightsites/leadflow/internal/tenancy"
)

// TenantHeader is the request header carrying the site's tenant identifier.
const TenantHeader = "X-Tenant-Id"

// Tenant copies the tenant identifier from the request header into the
// request context so downstream clients can resolve tenant-scoped
// credentials. Requests without the header pass through unscoped and fall
// back to process-level configuration.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimSpace(r.Header.Get(TenantHeader))
		if tenantID != "" {
			r = r.WithContext(tenancy.WithTenantID(r.Context(), tenantID))
		}
		next.ServeHTTP(w, r)
	})
}
