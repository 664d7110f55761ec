package user

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/listora/listora/internal/email"
	"github.com/listora/listora/internal/models"
	"github.com/listora/listora/internal/upload"
	"github.com/listora/listora/internal/validation"
)

// Échecs distincts du parcours des comptes, pour des messages adaptés côté handler
var (
	ErrEmailTaken      = errors.New("cet email est déjà utilisé")
	ErrUnverified      = errors.New("email non vérifié")
	ErrInvalidPassword = errors.New("mot de passe incorrect")
	ErrAlreadyVerified = errors.New("cet utilisateur est déjà vérifié")
	ErrInvalidToken    = errors.New("token invalide")
)

// Service gère le cycle de vie des comptes utilisateurs
type Service struct {
	repo         Repository
	emailService *email.Service
	uploads      *upload.Store
	frontendURL  string
	logger       zerolog.Logger
}

// NewService crée un nouveau service utilisateur
func NewService(repo Repository, emailService *email.Service, uploads *upload.Store, frontendURL string, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		emailService: emailService,
		uploads:      uploads,
		frontendURL:  frontendURL,
		logger:       logger,
	}
}

// Register inscrit un nouvel utilisateur non vérifié et déclenche l'email de
// vérification en tâche de fond
func (s *Service) Register(name, emailAddr, password string) (*models.User, error) {
	// Rejeter si l'email est déjà pris
	existing, err := s.repo.GetByEmail(emailAddr)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("erreur lors de la vérification de l'email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	// Hash du mot de passe
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("erreur lors du hachage du mot de passe: %w", err)
	}

	// Générer le token de vérification à usage unique
	verificationToken, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la génération du token: %w", err)
	}

	newUser := &models.User{
		Name:              name,
		Email:             emailAddr,
		Password:          string(hashedPassword),
		Role:              models.RoleUser,
		VerificationToken: &verificationToken,
	}

	if err := s.repo.Create(newUser); err != nil {
		return nil, fmt.Errorf("erreur lors de la création de l'utilisateur: %w", err)
	}

	// L'échec d'envoi n'annule pas le compte créé
	verificationLink := fmt.Sprintf("%s/guest/verify?token=%s&email=%s", s.frontendURL, verificationToken, newUser.Email)
	s.emailService.SendAsync(func() error {
		return s.emailService.SendVerificationEmail(newUser.Email, newUser.Name, verificationLink)
	})

	return newUser, nil
}

// Authenticate vérifie les identifiants d'un utilisateur. Les trois échecs
// possibles sont distincts: ErrNotFound, ErrUnverified, ErrInvalidPassword.
// L'émission du token d'identité reste à la charge de l'appelant.
func (s *Service) Authenticate(emailAddr, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(emailAddr)
	if err != nil {
		return nil, err
	}

	if !user.IsVerified() {
		return nil, ErrUnverified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

// VerifyEmail consomme le token de vérification et pose le timestamp.
// Un compte déjà vérifié renvoie ErrAlreadyVerified plutôt que de re-vérifier.
func (s *Service) VerifyEmail(emailAddr, token string) error {
	user, err := s.repo.GetByEmail(emailAddr)
	if err != nil {
		return err
	}

	if user.IsVerified() {
		return ErrAlreadyVerified
	}

	verified, err := s.repo.VerifyEmail(emailAddr, token)
	if err != nil {
		return fmt.Errorf("erreur lors de la vérification de l'email: %w", err)
	}
	if !verified {
		return ErrInvalidToken
	}

	return nil
}

// RequestPasswordReset regénère le token à usage unique et envoie le lien de
// réinitialisation en tâche de fond
func (s *Service) RequestPasswordReset(emailAddr string) error {
	resetToken, err := generateRandomToken(32)
	if err != nil {
		return fmt.Errorf("erreur lors de la génération du token: %w", err)
	}

	saved, err := s.repo.SaveResetToken(emailAddr, resetToken)
	if err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement du token: %w", err)
	}
	if !saved {
		return ErrNotFound
	}

	resetLink := fmt.Sprintf("%s/guest/reset-password?token=%s&email=%s", s.frontendURL, resetToken, emailAddr)
	s.emailService.SendAsync(func() error {
		return s.emailService.SendPasswordResetEmail(emailAddr, resetLink)
	})

	return nil
}

// ResetPassword remplace le mot de passe si le token correspond exactement au
// token stocké, puis le consomme
func (s *Service) ResetPassword(emailAddr, token, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("erreur lors du hachage du mot de passe: %w", err)
	}

	updated, err := s.repo.UpdatePasswordWithToken(emailAddr, token, string(hashedPassword))
	if err != nil {
		return fmt.Errorf("erreur lors de la mise à jour du mot de passe: %w", err)
	}
	if !updated {
		return ErrInvalidToken
	}

	return nil
}

// GetByID récupère un utilisateur avec sa photo de profil résolue en URL absolue
func (s *Service) GetByID(id int) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.resolveProfilePicture(user)
	return user, nil
}

// GetByEmail récupère un utilisateur avec sa photo de profil résolue en URL absolue
func (s *Service) GetByEmail(emailAddr string) (*models.User, error) {
	user, err := s.repo.GetByEmail(emailAddr)
	if err != nil {
		return nil, err
	}

	s.resolveProfilePicture(user)
	return user, nil
}

// List récupère les comptes de rôle "user"
func (s *Service) List() ([]*models.User, error) {
	return s.repo.List(models.RoleUser)
}

// UpdateProfile met à jour le nom et l'email d'un utilisateur après avoir
// vérifié que l'email n'est pas déjà pris
func (s *Service) UpdateProfile(id int, name, emailAddr string) error {
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	if err := validation.ValidateEmail(emailAddr); err != nil {
		return err
	}

	existing, err := s.repo.GetByEmail(emailAddr)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("erreur lors de la vérification de l'email: %w", err)
	}
	if existing != nil && existing.ID != id {
		return ErrEmailTaken
	}

	return s.repo.UpdateProfile(id, name, emailAddr)
}

// UpdateProfilePicture stocke la nouvelle photo, met à jour le pointeur en
// base, puis supprime l'ancien fichier. L'ancien fichier n'est retiré qu'une
// fois le nouveau durablement écrit et la ligne mise à jour.
func (s *Service) UpdateProfilePicture(id int, fileHeader *multipart.FileHeader, data []byte) (string, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return "", err
	}

	newPath, err := s.uploads.Save(upload.ProfilePicturesFolder, fileHeader, data)
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdateProfilePicture(id, newPath); err != nil {
		// Ne pas laisser le nouveau fichier orphelin
		if cleanupErr := s.uploads.Delete(newPath); cleanupErr != nil {
			s.logger.Error().Err(cleanupErr).Str("path", newPath).Msg("échec du nettoyage du fichier uploadé")
		}
		return "", fmt.Errorf("erreur lors de la mise à jour de la photo de profil: %w", err)
	}

	if user.ProfilePicture != nil {
		if err := s.uploads.Delete(*user.ProfilePicture); err != nil {
			s.logger.Error().Err(err).Str("path", *user.ProfilePicture).Msg("échec de la suppression de l'ancienne photo")
		}
	}

	return s.uploads.URL(&newPath, upload.ProfilePicturesFolder), nil
}

// resolveProfilePicture remplace le chemin stocké par une URL absolue, avec
// repli sur l'image par défaut si le fichier a disparu du stockage
func (s *Service) resolveProfilePicture(user *models.User) {
	resolved := s.uploads.URL(user.ProfilePicture, upload.ProfilePicturesFolder)
	user.ProfilePicture = &resolved
}

// generateRandomToken génère un token aléatoire de la taille donnée
func generateRandomToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
