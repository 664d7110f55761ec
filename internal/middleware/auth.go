package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/listora/listora/internal/response"
	"github.com/listora/listora/internal/token"
)

// AuthMiddleware vérifie l'authentification des requêtes protégées
type AuthMiddleware struct {
	tokens *token.Service
	logger zerolog.Logger
}

// NewAuthMiddleware crée un nouveau middleware d'authentification
func NewAuthMiddleware(tokens *token.Service, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireAuth vérifie le token Bearer et place ses claims dans le contexte.
// Toute absence ou invalidité du token rejette la requête en 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required.")
			return
		}

		claims, err := m.tokens.Validate(tokenString)
		if err != nil {
			m.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("token rejeté")
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		ctx := token.WithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole vérifie que les claims portent le rôle attendu
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := token.FromContext(r.Context())
			if !ok || claims.Role != role {
				response.Error(w, http.StatusUnauthorized, "You are not authorized to access this resource.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extrait le token de l'en-tête Authorization
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
