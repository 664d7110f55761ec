package category

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"goji.io/pat"

	"github.com/listora/listora/internal/models"
	"github.com/listora/listora/internal/response"
)

// Handlers gère les requêtes HTTP des catégories
type Handlers struct {
	repo   Repository
	logger zerolog.Logger
}

// NewHandlers crée les gestionnaires HTTP des catégories
func NewHandlers(repo Repository, logger zerolog.Logger) *Handlers {
	return &Handlers{
		repo:   repo,
		logger: logger,
	}
}

// categoriesPayload est le contenu de la réponse de liste des catégories
type categoriesPayload struct {
	Categories []*models.Category `json:"categories"`
}

// categoriesResponse est la réponse de GET /api/categories
type categoriesResponse struct {
	Message    string            `json:"message"`
	StatusCode int               `json:"statusCode"`
	Data       categoriesPayload `json:"data"`
}

// ListHandler gère GET /api/categories?search=
func (h *Handlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	categories, err := h.repo.List(search)
	if err != nil {
		h.logger.Error().Err(err).Msg("erreur lors de la récupération des catégories")
		response.Error(w, http.StatusInternalServerError, "Failed to fetch categories.")
		return
	}

	if len(categories) == 0 {
		response.JSON(w, http.StatusNotFound, categoriesResponse{
			Message:    "No categories found.",
			StatusCode: http.StatusNotFound,
			Data:       categoriesPayload{Categories: []*models.Category{}},
		})
		return
	}

	response.JSON(w, http.StatusOK, categoriesResponse{
		Message:    "Categories fetched successfully.",
		StatusCode: http.StatusOK,
		Data:       categoriesPayload{Categories: categories},
	})
}

// CreateHandler gère POST /api/categories?name=&description=
func (h *Handlers) CreateHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	description := strings.TrimSpace(r.URL.Query().Get("description"))

	if name == "" {
		response.Error(w, http.StatusBadRequest, "category name is required.")
		return
	}
	if description == "" {
		response.Error(w, http.StatusBadRequest, "category description is required.")
		return
	}

	category := &models.Category{
		Name:        name,
		Description: &description,
		// Le slug est dérivé du nom
		Slug: "/" + name,
	}

	if err := h.repo.Insert(category); err != nil {
		h.logger.Error().Err(err).Msg("erreur lors de la création de la catégorie")
		response.Error(w, http.StatusInternalServerError, "Category creation failed.")
		return
	}

	response.OK(w, "Category is created successfully")
}

// DeleteHandler gère DELETE /api/category/{id}
func (h *Handlers) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(pat.Param(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	deleted, err := h.repo.Delete(id)
	if err != nil {
		h.logger.Error().Err(err).Int("id", id).Msg("erreur lors de la suppression de la catégorie")
		response.Error(w, http.StatusInternalServerError, "Category deletion failed.")
		return
	}

	if !deleted {
		response.Error(w, http.StatusNotFound, "Category not found.")
		return
	}

	response.OK(w, "Category is deleted successfully")
}
