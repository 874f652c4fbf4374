package middleware

import (
	"context"
	"net/http"

	"github.com/finkit/glcore/internal/domain"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	// ActorContextKey is the context key for the acting tenant and user.
	ActorContextKey ContextKey = "actor"

	// TenantIDHeader carries the tenant the request acts on behalf of.
	TenantIDHeader = "X-Tenant-ID"
	// UserIDHeader carries the acting user.
	UserIDHeader = "X-User-ID"
)

// TenantContext resolves the acting tenant and user from request headers
// and stores them on the request context. Requests without a tenant are
// rejected; every API operation is tenant-scoped.
func TenantContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantIDHeader)
		if tenantID == "" {
			http.Error(w, "missing tenant header", http.StatusUnauthorized)
			return
		}

		actor := domain.Actor{
			TenantID: tenantID,
			UserID:   r.Header.Get(UserIDHeader),
		}

		ctx := context.WithValue(r.Context(), ActorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActorFromContext extracts the acting tenant and user from context.
func GetActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(domain.Actor)
	return actor, ok
}
