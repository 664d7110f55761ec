package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/listora/listora/internal/config"
	"github.com/listora/listora/internal/models"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:   "test-secret",
		Issuer:   "http://localhost:8080",
		Audience: "http://localhost:4000",
	}
}

func testUser() *models.User {
	picture := "uploads/profile_pictures/abc.jpg"
	return &models.User{
		ID:             42,
		Name:           "Alice",
		Email:          "alice@example.com",
		Role:           models.RoleAdmin,
		ProfilePicture: &picture,
	}
}

func TestIssueAndValidate(t *testing.T) {
	service := NewService(testConfig())

	signed, err := service.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := service.Validate(signed)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Name != "Alice" {
		t.Errorf("Name = %q, want %q", claims.Name, "Alice")
	}
	if claims.Email != "alice@example.com" || claims.Subject != "alice@example.com" {
		t.Errorf("Email = %q, Subject = %q, want alice@example.com for both", claims.Email, claims.Subject)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, models.RoleAdmin)
	}
	if claims.ProfilePicture != "uploads/profile_pictures/abc.jpg" {
		t.Errorf("ProfilePicture = %q", claims.ProfilePicture)
	}
	if claims.ID == "" {
		t.Error("le jti doit être renseigné")
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		t.Fatalf("GetExpirationTime: %v", err)
	}
	lifetime := time.Until(expiry.Time)
	if lifetime < TokenLifetime-time.Minute || lifetime > TokenLifetime {
		t.Errorf("durée de vie = %v, want ~%v", lifetime, TokenLifetime)
	}
}

func TestIssueDefaultsRole(t *testing.T) {
	service := NewService(testConfig())

	user := testUser()
	user.Role = ""
	user.ProfilePicture = nil

	signed, err := service.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := service.Validate(signed)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if claims.Role != models.RoleUser {
		t.Errorf("Role = %q, want %q", claims.Role, models.RoleUser)
	}
	if claims.ProfilePicture != "" {
		t.Errorf("ProfilePicture = %q, want empty", claims.ProfilePicture)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	service := NewService(testConfig())

	other := NewService(config.JWTConfig{
		Secret:   "another-secret",
		Issuer:   "http://localhost:8080",
		Audience: "http://localhost:4000",
	})

	signed, err := other.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := service.Validate(signed); err == nil {
		t.Error("un token signé avec un autre secret doit être rejeté")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	service := NewService(cfg)

	// Construire un token déjà expiré avec les mêmes paramètres
	now := time.Now().Add(-3 * time.Hour)
	claims := Claims{
		UserID: 42,
		Email:  "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := service.Validate(signed); err == nil {
		t.Error("un token expiré doit être rejeté")
	}
}

func TestValidateRejectsWrongIssuerAndAudience(t *testing.T) {
	cfg := testConfig()
	service := NewService(cfg)

	tests := []struct {
		name     string
		issuer   string
		audience string
	}{
		{"wrong issuer", "http://evil.example.com", cfg.Audience},
		{"wrong audience", cfg.Issuer, "http://evil.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "alice@example.com",
					Issuer:    tt.issuer,
					Audience:  jwt.ClaimStrings{tt.audience},
					IssuedAt:  jwt.NewNumericDate(time.Now()),
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenLifetime)),
				},
			}

			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
			if err != nil {
				t.Fatalf("SignedString: %v", err)
			}

			if _, err := service.Validate(signed); err == nil {
				t.Error("le token doit être rejeté")
			}
		})
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	service := NewService(testConfig())

	for _, tokenString := range []string{"", "not-a-token", strings.Repeat("a", 100)} {
		if _, err := service.Validate(tokenString); err == nil {
			t.Errorf("Validate(%q) doit échouer", tokenString)
		}
	}
}
