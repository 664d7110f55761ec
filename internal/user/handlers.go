package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"goji.io/pat"

	"github.com/listora/listora/internal/models"
	"github.com/listora/listora/internal/response"
	"github.com/listora/listora/internal/token"
	"github.com/listora/listora/internal/upload"
	"github.com/listora/listora/internal/validation"
)

// Taille maximale du formulaire multipart en mémoire
const maxMultipartMemory = 10 << 20

// Handlers gère les requêtes HTTP des comptes utilisateurs
type Handlers struct {
	service *Service
	tokens  *token.Service
	uploads *upload.Store
	logger  zerolog.Logger
}

// NewHandlers crée les gestionnaires HTTP des comptes
func NewHandlers(service *Service, tokens *token.Service, uploads *upload.Store, logger zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		tokens:  tokens,
		uploads: uploads,
		logger:  logger,
	}
}

// data pour l'inscription
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// data pour la connexion
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// data pour la vérification de compte
type verifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// data pour la demande de réinitialisation
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// data pour la réinitialisation de mot de passe
type resetPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// data pour la mise à jour de profil
type profileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// usersResponse est la réponse de GET /api/users
type usersResponse struct {
	Status bool           `json:"status"`
	Users  []*models.User `json:"users"`
}

// loginResponse est la réponse de POST /api/users/login
type loginResponse struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// profilePayload est le compte renvoyé par GET /api/users/profile
type profilePayload struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
}

// profileResponse est la réponse de GET /api/users/profile
type profileResponse struct {
	Status bool           `json:"status"`
	User   profilePayload `json:"user"`
}

// updatePictureResponse est la réponse de POST /api/users/profile/update-picture
type updatePictureResponse struct {
	Status         bool   `json:"status"`
	Message        string `json:"message"`
	ProfilePicture string `json:"profile_picture"`
}

// ListHandler gère GET /api/users
func (h *Handlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List()
	if err != nil {
		h.logger.Error().Err(err).Msg("erreur lors de la récupération des utilisateurs")
		response.Error(w, http.StatusInternalServerError, "Failed to fetch users.")
		return
	}

	if users == nil {
		users = []*models.User{}
	}

	response.JSON(w, http.StatusOK, usersResponse{Status: true, Users: users})
}

// RegisterHandler gère POST /api/users/register
func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	// Validation champ par champ avant tout accès au stockage
	if err := validation.ValidateName(req.Name); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.service.Register(req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Error(w, http.StatusConflict, "User already exists.")
			return
		}
		h.logger.Error().Err(err).Msg("erreur lors de l'inscription")
		response.Error(w, http.StatusInternalServerError, "User registration failed.")
		return
	}

	response.OK(w, "You have successfully registered. Please check your email for verification.")
}

// LoginHandler gère POST /api/users/login. Les trois échecs possibles
// produisent des messages distincts.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.Email == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	user, err := h.service.Authenticate(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(w, http.StatusUnauthorized, "Email doesn't exist.")
		case errors.Is(err, ErrUnverified):
			response.Error(w, http.StatusUnauthorized, "Please verify your email before logging in.")
		case errors.Is(err, ErrInvalidPassword):
			response.Error(w, http.StatusUnauthorized, "Password is incorrect.")
		default:
			h.logger.Error().Err(err).Msg("erreur lors de la connexion")
			response.Error(w, http.StatusInternalServerError, "Login failed.")
		}
		return
	}

	signed, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error().Err(err).Msg("erreur lors de l'émission du token")
		response.Error(w, http.StatusInternalServerError, "Login failed.")
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{
		Status:  true,
		Message: "Login successful.",
		Token:   signed,
		User:    user,
	})
}

// VerifyHandler gère POST /api/users/verify-account
func (h *Handlers) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.Email == "" || req.Token == "" {
		response.Error(w, http.StatusBadRequest, "Email and Token are required.")
		return
	}

	if err := h.service.VerifyEmail(req.Email, req.Token); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(w, http.StatusUnauthorized, "Email doesn't exist.")
		case errors.Is(err, ErrAlreadyVerified):
			response.Error(w, http.StatusBadRequest, "Email is already verified.")
		case errors.Is(err, ErrInvalidToken):
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token.")
		default:
			h.logger.Error().Err(err).Msg("erreur lors de la vérification d'email")
			response.Error(w, http.StatusInternalServerError, "Email verification failed.")
		}
		return
	}

	response.OK(w, "Email verified successfully.")
}

// ForgotPasswordHandler gère POST /api/users/forgot-password.
// La réponse ne révèle pas si le compte existe.
func (h *Handlers) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RequestPasswordReset(req.Email); err != nil && !errors.Is(err, ErrNotFound) {
		h.logger.Error().Err(err).Msg("erreur lors de la demande de réinitialisation")
		response.Error(w, http.StatusInternalServerError, "Failed to process request.")
		return
	}

	response.OK(w, "If the email exists, a reset link has been sent.")
}

// ResetPasswordHandler gère POST /api/users/reset-password
func (h *Handlers) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.Email == "" || req.Token == "" {
		response.Error(w, http.StatusBadRequest, "Email and Token are required.")
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ResetPassword(req.Email, req.Token, req.Password); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}
		h.logger.Error().Err(err).Msg("erreur lors de la réinitialisation du mot de passe")
		response.Error(w, http.StatusInternalServerError, "Password reset failed.")
		return
	}

	response.OK(w, "Password has been reset successfully.")
}

// ProfileHandler gère GET /api/users/profile et répond directement depuis les
// claims du token validé
func (h *Handlers) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	picture := claims.ProfilePicture
	pictureURL := h.uploads.URL(&picture, upload.ProfilePicturesFolder)

	response.JSON(w, http.StatusOK, profileResponse{
		Status: true,
		User: profilePayload{
			ID:             claims.UserID,
			Name:           claims.Name,
			Email:          claims.Email,
			Role:           claims.Role,
			ProfilePicture: pictureURL,
		},
	})
}

// UpdatePictureHandler gère POST /api/users/profile/update-picture (multipart)
func (h *Handlers) UpdatePictureHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form.")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "File not provided.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to read uploaded file.")
		return
	}

	pictureURL, err := h.service.UpdateProfilePicture(claims.UserID, fileHeader, data)
	if err != nil {
		var validationErr upload.FileValidationError
		if errors.As(err, &validationErr) {
			response.Error(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		h.logger.Error().Err(err).Int("user_id", claims.UserID).Msg("erreur lors de la mise à jour de la photo de profil")
		response.Error(w, http.StatusInternalServerError, "Failed to update profile picture.")
		return
	}

	response.JSON(w, http.StatusOK, updatePictureResponse{
		Status:         true,
		Message:        "Profile picture updated successfully.",
		ProfilePicture: pictureURL,
	})
}

// UpdateProfileHandler gère POST /api/users/profile/update/{userid}
func (h *Handlers) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(pat.Param(r, "userid"))
	if err != nil || userID == 0 {
		response.Error(w, http.StatusUnauthorized, "You are not authorized!")
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		response.Error(w, http.StatusBadRequest, "Email is required.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		response.Error(w, http.StatusBadRequest, "Name is required.")
		return
	}

	if err := h.service.UpdateProfile(userID, req.Name, req.Email); err != nil {
		var validationErr validation.ValidationError
		switch {
		case errors.Is(err, ErrEmailTaken):
			response.Error(w, http.StatusConflict, "Email already exists.")
		case errors.As(err, &validationErr):
			response.Error(w, http.StatusBadRequest, validationErr.Error())
		default:
			h.logger.Error().Err(err).Int("user_id", userID).Msg("erreur lors de la mise à jour du profil")
			response.Error(w, http.StatusInternalServerError, "Profile update failed.")
		}
		return
	}

	response.OK(w, "Your profile is updated")
}
