package auth

import (
	"context"
	"net/http"
	"strings"
)

// CallerHeader est posé par l'api-gateway une fois le token validé.
// Le service n'est joignable que derrière la gateway : l'en-tête fait foi.
const CallerHeader = "X-User-Id"

// Clé privée pour le contexte (évite les collisions)
type contextKey struct{ name string }

var callerCtxKey = &contextKey{"caller_id"}

// Middleware recopie l'identité de l'appelant dans le contexte de la requête.
// Pas d'en-tête = requête anonyme, on laisse passer (les lectures sont publiques).
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerID := strings.TrimSpace(r.Header.Get(CallerHeader))
		if callerID == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), callerID)))
	})
}

func WithCaller(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerCtxKey, callerID)
}

// ForContext renvoie l'identité de l'appelant, "" si anonyme.
func ForContext(ctx context.Context) string {
	raw, _ := ctx.Value(callerCtxKey).(string)
	return raw
}
