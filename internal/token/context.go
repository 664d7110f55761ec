package token

import "context"

// key pour stocker les claims dans le contexte
type claimsKeyType struct{}

var claimsKey = claimsKeyType{}

// WithClaims ajoute les claims d'un token validé au contexte
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext récupère les claims du contexte
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}
