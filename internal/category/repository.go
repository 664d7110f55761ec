package category

import (
	"database/sql"
	"errors"

	"github.com/listora/listora/internal/models"
)

// ErrNotFound est renvoyée quand aucune catégorie ne correspond
var ErrNotFound = errors.New("catégorie non trouvée")

// Repository définit l'accès aux catégories
type Repository interface {
	List(search string) ([]*models.Category, error)
	GetByID(id int) (*models.Category, error)
	Insert(category *models.Category) error
	Delete(id int) (bool, error)
}

// PostgresRepository est l'implémentation PostgreSQL du Repository
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository crée un nouveau repository de catégories
func NewPostgresRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

// List récupère les catégories dont le nom, la description ou le slug
// contiennent la recherche; une recherche vide renvoie tout
func (r *PostgresRepository) List(search string) ([]*models.Category, error) {
	query := `
        SELECT id, name, description, slug, created_at, updated_at
        FROM categories
        WHERE name ILIKE $1 OR COALESCE(description, '') ILIKE $1 OR slug ILIKE $1
        ORDER BY id ASC
    `

	rows, err := r.db.Query(query, "%"+search+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.Slug,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// GetByID récupère une catégorie par son ID
func (r *PostgresRepository) GetByID(id int) (*models.Category, error) {
	query := `
        SELECT id, name, description, slug, created_at, updated_at
        FROM categories
        WHERE id = $1
    `

	category := &models.Category{}
	err := r.db.QueryRow(query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.Slug,
		&category.CreatedAt,
		&category.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return category, nil
}

// Insert ajoute une nouvelle catégorie dans la base de données
func (r *PostgresRepository) Insert(category *models.Category) error {
	query := `
        INSERT INTO categories (name, description, slug)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `

	return r.db.QueryRow(
		query,
		category.Name,
		category.Description,
		category.Slug,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

// Delete supprime une catégorie
func (r *PostgresRepository) Delete(id int) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
