package listing

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/listora/listora/internal/models"
)

// ErrNotFound est renvoyée quand aucune annonce ne correspond
var ErrNotFound = errors.New("annonce non trouvée")

// Champs de tri autorisés; tout autre champ retombe sur l'id
var sortFields = map[string]string{
	"id":         "id",
	"title":      "title",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ListParams décrit une fenêtre de pagination avec recherche et tri.
// Page et PageSize sont des entiers positifs à base 1, déjà bornés par l'appelant.
type ListParams struct {
	Page      int
	PageSize  int
	Search    string
	SortField string
	SortDesc  bool
}

// Repository définit l'accès aux annonces
type Repository interface {
	List(params ListParams) ([]*models.Listing, int, error)
	ListByUser(userID int, params ListParams) ([]*models.Listing, int, error)
	GetByID(id int) (*models.Listing, error)
	GetImagePath(id int) (*string, error)
	Insert(listing *models.Listing) error
	Update(listing *models.Listing) error
	SetApproval(id, approved int) (bool, error)
	Delete(id int) (bool, error)
}

// PostgresRepository est l'implémentation PostgreSQL du Repository
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository crée un nouveau repository d'annonces
func NewPostgresRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

// List récupère une page d'annonces filtrée par recherche, avec le total
// calculé indépendamment de la fenêtre. La recherche est une sous-chaîne
// insensible à la casse sur le titre, les tags et la description.
func (r *PostgresRepository) List(params ListParams) ([]*models.Listing, int, error) {
	pattern := "%" + params.Search + "%"

	var totalCount int
	countQuery := `
        SELECT COUNT(*) FROM listings
        WHERE title ILIKE $1 OR tags ILIKE $1 OR description ILIKE $1
    `
	if err := r.db.QueryRow(countQuery, pattern).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
        SELECT id, user_id, title, description, tags, email, link, image,
               approved, category_id, created_at, updated_at
        FROM listings
        WHERE title ILIKE $1 OR tags ILIKE $1 OR description ILIKE $1
        ORDER BY %s %s
        LIMIT $2 OFFSET $3
    `, sortField(params.SortField), sortDirection(params.SortDesc))

	offset := (params.Page - 1) * params.PageSize
	rows, err := r.db.Query(query, pattern, params.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}

	return listings, totalCount, nil
}

// ListByUser récupère une page des annonces d'un utilisateur, les plus
// récentes d'abord
func (r *PostgresRepository) ListByUser(userID int, params ListParams) ([]*models.Listing, int, error) {
	pattern := "%" + params.Search + "%"

	var totalCount int
	countQuery := `
        SELECT COUNT(*) FROM listings
        WHERE user_id = $1 AND (title ILIKE $2 OR tags ILIKE $2 OR description ILIKE $2)
    `
	if err := r.db.QueryRow(countQuery, userID, pattern).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT id, user_id, title, description, tags, email, link, image,
               approved, category_id, created_at, updated_at
        FROM listings
        WHERE user_id = $1 AND (title ILIKE $2 OR tags ILIKE $2 OR description ILIKE $2)
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4
    `

	offset := (params.Page - 1) * params.PageSize
	rows, err := r.db.Query(query, userID, pattern, params.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}

	return listings, totalCount, nil
}

// GetByID récupère une annonce par son ID
func (r *PostgresRepository) GetByID(id int) (*models.Listing, error) {
	query := `
        SELECT id, user_id, title, description, tags, email, link, image,
               approved, category_id, created_at, updated_at
        FROM listings
        WHERE id = $1
    `

	listing := &models.Listing{}
	err := r.db.QueryRow(query, id).Scan(
		&listing.ID,
		&listing.UserID,
		&listing.Title,
		&listing.Description,
		&listing.Tags,
		&listing.Email,
		&listing.Link,
		&listing.Image,
		&listing.Approved,
		&listing.CategoryID,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return listing, nil
}

// GetImagePath récupère le chemin d'image actuellement stocké pour une annonce
func (r *PostgresRepository) GetImagePath(id int) (*string, error) {
	var path *string
	err := r.db.QueryRow(`SELECT image FROM listings WHERE id = $1`, id).Scan(&path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return path, nil
}

// Insert ajoute une nouvelle annonce dans la base de données
func (r *PostgresRepository) Insert(listing *models.Listing) error {
	query := `
        INSERT INTO listings (user_id, title, description, tags, email, link, image, approved, category_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at
    `

	return r.db.QueryRow(
		query,
		listing.UserID,
		listing.Title,
		listing.Description,
		listing.Tags,
		listing.Email,
		listing.Link,
		listing.Image,
		listing.Approved,
		listing.CategoryID,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
}

// Update met à jour une annonce existante. L'état d'approbation n'est jamais
// modifié ici: seule SetApproval peut le changer.
func (r *PostgresRepository) Update(listing *models.Listing) error {
	query := `
        UPDATE listings
        SET title = $1, description = $2, tags = $3, email = $4, link = $5,
            image = $6, category_id = $7, updated_at = CURRENT_TIMESTAMP
        WHERE id = $8
    `

	_, err := r.db.Exec(
		query,
		listing.Title,
		listing.Description,
		listing.Tags,
		listing.Email,
		listing.Link,
		listing.Image,
		listing.CategoryID,
		listing.ID,
	)
	return err
}

// SetApproval change l'état d'approbation d'une annonce
func (r *PostgresRepository) SetApproval(id, approved int) (bool, error) {
	result, err := r.db.Exec(`UPDATE listings SET approved = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, approved, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// Delete supprime une annonce
func (r *PostgresRepository) Delete(id int) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// sortField borne le champ de tri à la liste autorisée
func sortField(field string) string {
	if column, ok := sortFields[field]; ok {
		return column
	}
	return "id"
}

// sortDirection renvoie ASC sauf si le tri descendant est explicitement demandé
func sortDirection(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// scanListings lit toutes les lignes d'un résultat de requête
func scanListings(rows *sql.Rows) ([]*models.Listing, error) {
	var listings []*models.Listing
	for rows.Next() {
		listing := &models.Listing{}
		if err := rows.Scan(
			&listing.ID,
			&listing.UserID,
			&listing.Title,
			&listing.Description,
			&listing.Tags,
			&listing.Email,
			&listing.Link,
			&listing.Image,
			&listing.Approved,
			&listing.CategoryID,
			&listing.CreatedAt,
			&listing.UpdatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}

	return listings, rows.Err()
}
