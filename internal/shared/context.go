package shared

import "context"

// DefaultTenant is the ledger used when a request carries no tenant header.
const DefaultTenant = "primary"

// TenantHeader names the HTTP header that selects the caller's ledger.
const TenantHeader = "X-Tenant-ID"

type contextKey string

const tenantContextKey contextKey = "tenant"

// ContextWithTenant stores the tenant identifier on the context.
func ContextWithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// TenantFromContext returns the request's tenant, falling back to the
// default when the middleware never ran.
func TenantFromContext(ctx context.Context) string {
	if tenant, ok := ctx.Value(tenantContextKey).(string); ok && tenant != "" {
		return tenant
	}
	return DefaultTenant
}

// ValidTenantID restricts tenant identifiers to a safe slug alphabet, since
// they become cache key segments and database filter values.
func ValidTenantID(tenant string) bool {
	if tenant == "" || len(tenant) > 64 {
		return false
	}
	for i := 0; i < len(tenant); i++ {
		c := tenant[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
