package category

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/listora/listora/internal/models"
)

// stubCategoryRepository simule le Repository en mémoire
type stubCategoryRepository struct {
	categories map[int]*models.Category
	nextID     int
	insertErr  error
}

func newStubCategoryRepository() *stubCategoryRepository {
	return &stubCategoryRepository{categories: map[int]*models.Category{}, nextID: 1}
}

func (r *stubCategoryRepository) List(search string) ([]*models.Category, error) {
	var all []*models.Category
	for _, category := range r.categories {
		all = append(all, category)
	}
	return all, nil
}

func (r *stubCategoryRepository) GetByID(id int) (*models.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return category, nil
}

func (r *stubCategoryRepository) Insert(category *models.Category) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	category.ID = r.nextID
	r.nextID++
	r.categories[category.ID] = category
	return nil
}

func (r *stubCategoryRepository) Delete(id int) (bool, error) {
	if _, ok := r.categories[id]; !ok {
		return false, nil
	}
	delete(r.categories, id)
	return true, nil
}

func newTestHandlers() (*Handlers, *stubCategoryRepository) {
	repo := newStubCategoryRepository()
	return NewHandlers(repo, zerolog.Nop()), repo
}

func TestListHandlerEmptyIsNotFound(t *testing.T) {
	handlers, _ := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	handlers.ListHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Code = %d, want 404", rec.Code)
	}

	var body categoriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("corps invalide: %v", err)
	}
	if body.Message != "No categories found." || body.StatusCode != http.StatusNotFound {
		t.Errorf("body = %+v", body)
	}
	if body.Data.Categories == nil || len(body.Data.Categories) != 0 {
		t.Errorf("Categories = %v, want un tableau vide", body.Data.Categories)
	}
}

func TestListHandlerReturnsCategories(t *testing.T) {
	handlers, repo := newTestHandlers()
	description := "Jeux de société"
	repo.categories[1] = &models.Category{ID: 1, Name: "Jeux", Description: &description, Slug: "/Jeux"}

	req := httptest.NewRequest(http.MethodGet, "/api/categories?search=jeu", nil)
	rec := httptest.NewRecorder()
	handlers.ListHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Code = %d, want 200", rec.Code)
	}

	var body categoriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("corps invalide: %v", err)
	}
	if body.Message != "Categories fetched successfully." {
		t.Errorf("Message = %q", body.Message)
	}
	if len(body.Data.Categories) != 1 || body.Data.Categories[0].Name != "Jeux" {
		t.Errorf("Categories = %v", body.Data.Categories)
	}
}

func TestCreateHandlerValidatesQueryParams(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantMessage string
	}{
		{"nom manquant", "/api/categories?description=d", "category name is required."},
		{"description manquante", "/api/categories?name=Jeux", "category description is required."},
		{"nom en espaces", "/api/categories?name=%20%20&description=d", "category name is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers, _ := newTestHandlers()

			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			rec := httptest.NewRecorder()
			handlers.CreateHandler(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Code = %d, want 400", rec.Code)
			}

			var body struct {
				Status  bool   `json:"status"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("corps invalide: %v", err)
			}
			if body.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", body.Message, tt.wantMessage)
			}
		})
	}
}

func TestCreateHandlerDerivesSlug(t *testing.T) {
	handlers, repo := newTestHandlers()

	req := httptest.NewRequest(http.MethodPost, "/api/categories?name=Jeux&description=Jeux+de+soci%C3%A9t%C3%A9", nil)
	rec := httptest.NewRecorder()
	handlers.CreateHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Code = %d, want 200", rec.Code)
	}

	created := repo.categories[1]
	if created == nil {
		t.Fatal("la catégorie doit être insérée")
	}
	if created.Slug != "/Jeux" {
		t.Errorf("Slug = %q, want %q", created.Slug, "/Jeux")
	}
	if created.Description == nil || *created.Description != "Jeux de société" {
		t.Errorf("Description = %v", created.Description)
	}
}

func TestCreateHandlerInsertFailure(t *testing.T) {
	handlers, repo := newTestHandlers()
	repo.insertErr = errors.New("contrainte violée")

	req := httptest.NewRequest(http.MethodPost, "/api/categories?name=Jeux&description=d", nil)
	rec := httptest.NewRecorder()
	handlers.CreateHandler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Code = %d, want 500", rec.Code)
	}
}
