package user

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/listora/listora/internal/config"
	"github.com/listora/listora/internal/email"
	"github.com/listora/listora/internal/models"
	"github.com/listora/listora/internal/upload"
)

// stubRepository simule le Repository en mémoire pour tester le service
type stubRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[int]*models.User

	created *models.User

	verifyOK bool
	saveOK   bool
	updateOK bool

	savedResetToken string
	updatedPassword string
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		usersByEmail: map[string]*models.User{},
		usersByID:    map[int]*models.User{},
	}
}

func (r *stubRepository) add(user *models.User) {
	r.usersByEmail[user.Email] = user
	r.usersByID[user.ID] = user
}

func (r *stubRepository) Create(user *models.User) error {
	user.ID = len(r.usersByEmail) + 1
	r.created = user
	r.add(user)
	return nil
}

func (r *stubRepository) GetByID(id int) (*models.User, error) {
	user, ok := r.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *stubRepository) GetByEmail(email string) (*models.User, error) {
	user, ok := r.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *stubRepository) List(role string) ([]*models.User, error) {
	var users []*models.User
	for _, user := range r.usersByEmail {
		if user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *stubRepository) VerifyEmail(email, token string) (bool, error) {
	return r.verifyOK, nil
}

func (r *stubRepository) SaveResetToken(email, token string) (bool, error) {
	if r.saveOK {
		r.savedResetToken = token
	}
	return r.saveOK, nil
}

func (r *stubRepository) UpdatePasswordWithToken(email, token, passwordHash string) (bool, error) {
	if r.updateOK {
		r.updatedPassword = passwordHash
	}
	return r.updateOK, nil
}

func (r *stubRepository) UpdateProfile(id int, name, email string) error {
	return nil
}

func (r *stubRepository) UpdateProfilePicture(id int, path string) error {
	return nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()

	logger := zerolog.Nop()
	// Le SMTP n'est jamais joint: les envois asynchrones échouent en silence
	mailer := email.NewService(config.SMTPConfig{Host: "127.0.0.1", Port: 2525}, logger)
	uploads := upload.NewStore(t.TempDir(), "http://localhost:8080")

	return NewService(repo, mailer, uploads, "http://localhost:5173", logger)
}

func verifiedUser(id int, emailAddr, password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	now := time.Now()
	return &models.User{
		ID:              id,
		Name:            "Alice",
		Email:           emailAddr,
		Password:        string(hash),
		Role:            models.RoleUser,
		EmailVerifiedAt: &now,
	}
}

func TestRegisterCreatesUnverifiedUser(t *testing.T) {
	repo := newStubRepository()
	service := newTestService(t, repo)

	user, err := service.Register("Alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Role != models.RoleUser {
		t.Errorf("Role = %q, want %q", user.Role, models.RoleUser)
	}
	if user.IsVerified() {
		t.Error("un nouveau compte ne doit pas être vérifié")
	}
	if user.VerificationToken == nil || *user.VerificationToken == "" {
		t.Error("un token de vérification doit être généré")
	}
	if user.Password == "secret123" {
		t.Error("le mot de passe ne doit pas être stocké en clair")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")); err != nil {
		t.Errorf("le hash ne correspond pas au mot de passe: %v", err)
	}
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	repo := newStubRepository()
	repo.add(verifiedUser(1, "alice@example.com", "secret123"))
	service := newTestService(t, repo)

	_, err := service.Register("Autre Alice", "alice@example.com", "autre-secret")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestAuthenticateDistinguishesFailures(t *testing.T) {
	repo := newStubRepository()
	repo.add(verifiedUser(1, "alice@example.com", "secret123"))

	unverified := verifiedUser(2, "bob@example.com", "secret123")
	unverified.EmailVerifiedAt = nil
	repo.add(unverified)

	service := newTestService(t, repo)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"email inconnu", "missing@example.com", "secret123", ErrNotFound},
		{"compte non vérifié", "bob@example.com", "secret123", ErrUnverified},
		{"mauvais mot de passe", "alice@example.com", "wrong", ErrInvalidPassword},
		{"identifiants valides", "alice@example.com", "secret123", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := service.Authenticate(tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && user.Email != tt.email {
				t.Errorf("Email = %q, want %q", user.Email, tt.email)
			}
		})
	}
}

func TestVerifyEmailAlreadyVerified(t *testing.T) {
	repo := newStubRepository()
	repo.add(verifiedUser(1, "alice@example.com", "secret123"))
	service := newTestService(t, repo)

	err := service.VerifyEmail("alice@example.com", "any-token")
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Errorf("err = %v, want ErrAlreadyVerified", err)
	}
}

func TestVerifyEmailInvalidToken(t *testing.T) {
	repo := newStubRepository()
	unverified := verifiedUser(1, "alice@example.com", "secret123")
	unverified.EmailVerifiedAt = nil
	repo.add(unverified)
	repo.verifyOK = false
	service := newTestService(t, repo)

	err := service.VerifyEmail("alice@example.com", "wrong-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	repo := newStubRepository()
	repo.saveOK = false
	service := newTestService(t, repo)

	err := service.RequestPasswordReset("missing@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRequestPasswordResetStoresToken(t *testing.T) {
	repo := newStubRepository()
	repo.saveOK = true
	service := newTestService(t, repo)

	if err := service.RequestPasswordReset("alice@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if repo.savedResetToken == "" {
		t.Error("un token de réinitialisation doit être enregistré")
	}
}

func TestResetPasswordInvalidToken(t *testing.T) {
	repo := newStubRepository()
	repo.updateOK = false
	service := newTestService(t, repo)

	err := service.ResetPassword("alice@example.com", "stale-token", "newsecret")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestResetPasswordStoresHash(t *testing.T) {
	repo := newStubRepository()
	repo.updateOK = true
	service := newTestService(t, repo)

	if err := service.ResetPassword("alice@example.com", "reset-token", "newsecret"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.updatedPassword), []byte("newsecret")); err != nil {
		t.Errorf("le hash stocké ne correspond pas au nouveau mot de passe: %v", err)
	}
}

func TestUpdateProfileEmailTakenByOther(t *testing.T) {
	repo := newStubRepository()
	repo.add(verifiedUser(1, "alice@example.com", "secret123"))
	repo.add(verifiedUser(2, "bob@example.com", "secret123"))
	service := newTestService(t, repo)

	err := service.UpdateProfile(2, "Bob", "alice@example.com")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}

	// Garder son propre email ne doit pas compter comme un conflit
	if err := service.UpdateProfile(1, "Alice", "alice@example.com"); err != nil {
		t.Errorf("UpdateProfile avec son propre email: %v", err)
	}
}

func TestGetByIDResolvesMissingPictureToDefault(t *testing.T) {
	repo := newStubRepository()
	repo.add(verifiedUser(1, "alice@example.com", "secret123"))
	service := newTestService(t, repo)

	user, err := service.GetByID(1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	want := "http://localhost:8080/uploads/profile_pictures/" + upload.DefaultPlaceholder
	if user.ProfilePicture == nil || *user.ProfilePicture != want {
		t.Errorf("ProfilePicture = %v, want %q", user.ProfilePicture, want)
	}
}
