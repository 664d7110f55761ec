package listing

import (
	"errors"
	"io"
	"mime/multipart"
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

// Handlers gère les requêtes HTTP des annonces
type Handlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHandlers crée les gestionnaires HTTP des annonces
func NewHandlers(service *Service, logger zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger,
	}
}

// listingDetailResponse est la réponse de GET /api/listing/{id}
type listingDetailResponse struct {
	Status bool                  `json:"status"`
	Data   *models.ListingDetail `json:"data"`
}

// ListHandler gère GET /api/listings?page=&pageSize=&search=&sort=&order=
func (h *Handlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	params := listParamsFromQuery(r)

	result, err := h.service.List(params)
	if err != nil {
		h.logger.Error().Err(err).Msg("erreur lors de la récupération des annonces")
		response.Error(w, http.StatusInternalServerError, "Failed to fetch listings.")
		return
	}

	// Une fenêtre vide, y compris une page au-delà de la dernière, produit
	// l'enveloppe 404 avec les champs de pagination à zéro
	page, _ := result.Data.(ListingsPage)
	if len(page.Listings) == 0 {
		response.JSON(w, http.StatusNotFound, models.PaginatedResponse{
			Message:     "No listings found.",
			StatusCode:  http.StatusNotFound,
			Data:        ListingsPage{Listings: []*models.Listing{}},
			CurrentPage: params.Page,
			PageSize:    params.PageSize,
		})
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// GetHandler gère GET /api/listing/{id}
func (h *Handlers) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(pat.Param(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid listing id.")
		return
	}

	detail, err := h.service.GetDetail(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Listing not found.")
			return
		}
		h.logger.Error().Err(err).Int("id", id).Msg("erreur lors de la récupération de l'annonce")
		response.Error(w, http.StatusInternalServerError, "Failed to fetch listing.")
		return
	}

	response.JSON(w, http.StatusOK, listingDetailResponse{Status: true, Data: detail})
}

// SaveHandler gère POST /api/listings (formulaire multipart).
// Sans champ id c'est une création; avec un id c'est une mise à jour limitée
// au propriétaire ou à un admin.
func (h *Handlers) SaveHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form.")
		return
	}

	listing := &models.Listing{
		UserID:      claims.UserID,
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("desc")),
		Tags:        strings.TrimSpace(r.FormValue("tags")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Link:        strings.TrimSpace(r.FormValue("link")),
	}

	// Validation champ par champ avant tout accès au stockage
	for _, err := range []error{
		validation.ValidateTitle(listing.Title),
		validation.ValidateDescription(listing.Description),
		validation.ValidateTags(listing.Tags),
		validation.ValidateEmail(listing.Email),
		validation.ValidateLink(listing.Link),
	} {
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if rawID := r.FormValue("id"); rawID != "" {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid listing id.")
			return
		}
		listing.ID = id
	}

	if rawCategoryID := r.FormValue("category_id"); rawCategoryID != "" {
		categoryID, err := strconv.Atoi(rawCategoryID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid category id.")
			return
		}
		listing.CategoryID = &categoryID
	}

	// Seul le propriétaire ou un admin peut modifier une annonce existante
	if listing.ID != 0 {
		current, err := h.service.Get(listing.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				response.Error(w, http.StatusNotFound, "Listing not found.")
				return
			}
			h.logger.Error().Err(err).Int("id", listing.ID).Msg("erreur lors de la récupération de l'annonce")
			response.Error(w, http.StatusInternalServerError, "Failed to save listing.")
			return
		}

		if current.UserID != claims.UserID && claims.Role != models.RoleAdmin {
			response.Error(w, http.StatusUnauthorized, "You are not allowed to modify this listing.")
			return
		}
		listing.UserID = current.UserID
	}

	fileHeader, data, err := readFormFile(r, "image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to read uploaded file.")
		return
	}

	existingImage := strings.TrimSpace(r.FormValue("existing_image"))

	if err := h.service.Save(listing, fileHeader, data, existingImage); err != nil {
		switch {
		case errors.Is(err, ErrImageRequired):
			response.Error(w, http.StatusBadRequest, "An image is required to create a listing.")
		case errors.Is(err, ErrNotFound):
			response.Error(w, http.StatusNotFound, "Listing not found.")
		default:
			var validationErr upload.FileValidationError
			if errors.As(err, &validationErr) {
				response.Error(w, http.StatusBadRequest, validationErr.Message)
				return
			}
			h.logger.Error().Err(err).Msg("erreur lors de l'enregistrement de l'annonce")
			response.Error(w, http.StatusInternalServerError, "Failed to save listing.")
		}
		return
	}

	response.OK(w, "Listing saved successfully.")
}

// ApprovalHandler gère PUT /api/listing/approval?Id=&Approved=
func (h *Handlers) ApprovalHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("Id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid listing id.")
		return
	}

	approved, err := strconv.Atoi(r.URL.Query().Get("Approved"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid approval value.")
		return
	}

	if err := h.service.SetApproval(id, approved); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Listing not found.")
			return
		}
		h.logger.Error().Err(err).Int("id", id).Msg("erreur lors de la mise à jour de l'approbation")
		response.Error(w, http.StatusInternalServerError, "Failed to update listing approval.")
		return
	}

	response.OK(w, "Listing approval updated successfully.")
}

// DeleteHandler gère DELETE /api/listing/{id}, réservé au propriétaire ou à un admin
func (h *Handlers) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	id, err := strconv.Atoi(pat.Param(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid listing id.")
		return
	}

	current, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Listing not found.")
			return
		}
		h.logger.Error().Err(err).Int("id", id).Msg("erreur lors de la récupération de l'annonce")
		response.Error(w, http.StatusInternalServerError, "Failed to delete listing.")
		return
	}

	if current.UserID != claims.UserID && claims.Role != models.RoleAdmin {
		response.Error(w, http.StatusUnauthorized, "You are not allowed to delete this listing.")
		return
	}

	if err := h.service.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Listing not found.")
			return
		}
		h.logger.Error().Err(err).Int("id", id).Msg("erreur lors de la suppression de l'annonce")
		response.Error(w, http.StatusInternalServerError, "Failed to delete listing.")
		return
	}

	response.OK(w, "Listing deleted successfully.")
}

// DashboardHandler gère GET /api/users/dashboard?page=&pageSize=&search=
// et renvoie les annonces de l'utilisateur connecté, paginées
func (h *Handlers) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	params := listParamsFromQuery(r)

	result, err := h.service.ListByUser(claims.UserID, params)
	if err != nil {
		h.logger.Error().Err(err).Int("user_id", claims.UserID).Msg("erreur lors de la récupération du tableau de bord")
		response.Error(w, http.StatusInternalServerError, "Failed to fetch listings.")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// listParamsFromQuery lit les paramètres de pagination en bornant page et
// pageSize à des entiers positifs
func listParamsFromQuery(r *http.Request) ListParams {
	query := r.URL.Query()

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(query.Get("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	return ListParams{
		Page:      page,
		PageSize:  pageSize,
		Search:    query.Get("search"),
		SortField: query.Get("sort"),
		SortDesc:  strings.EqualFold(query.Get("order"), "desc"),
	}
}

// readFormFile lit le fichier uploadé du formulaire; l'absence de fichier
// n'est pas une erreur
func readFormFile(r *http.Request, field string) (*multipart.FileHeader, []byte, error) {
	file, fileHeader, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}

	return fileHeader, data, nil
}
