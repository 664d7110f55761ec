// Package token gère l'émission et la validation des tokens d'identité JWT.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/listora/listora/internal/config"
	"github.com/listora/listora/internal/models"
)

// Durée de validité d'un token; pas de mécanisme de rafraîchissement
const TokenLifetime = 2 * time.Hour

// Claims contient les attributs d'identité embarqués dans le token
type Claims struct {
	UserID         int    `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
	jwt.RegisteredClaims
}

// Service émet et valide les tokens signés en HS256
type Service struct {
	secret   []byte
	issuer   string
	audience string
}

// NewService crée un nouveau service de tokens
func NewService(cfg config.JWTConfig) *Service {
	return &Service{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// Issue émet un token signé pour un utilisateur connecté
func (s *Service) Issue(user *models.User) (string, error) {
	now := time.Now()

	picture := ""
	if user.ProfilePicture != nil {
		picture = *user.ProfilePicture
	}

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	claims := Claims{
		UserID:         user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           role,
		ProfilePicture: picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("erreur lors de la signature du token: %w", err)
	}

	return signed, nil
}

// Validate vérifie la signature, l'émetteur, l'audience et l'expiration
// d'un token, et renvoie ses claims
func (s *Service) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, fmt.Errorf("token invalide: %w", err)
	}

	if !parsed.Valid {
		return nil, errors.New("token invalide")
	}

	return claims, nil
}
