package user

import (
	"database/sql"
	"errors"

	"github.com/listora/listora/internal/models"
)

// ErrNotFound est renvoyée quand aucun utilisateur ne correspond
var ErrNotFound = errors.New("utilisateur non trouvé")

// Repository définit l'accès aux comptes utilisateurs
type Repository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	List(role string) ([]*models.User, error)
	VerifyEmail(email, token string) (bool, error)
	SaveResetToken(email, token string) (bool, error)
	UpdatePasswordWithToken(email, token, passwordHash string) (bool, error)
	UpdateProfile(id int, name, email string) error
	UpdateProfilePicture(id int, path string) error
}

// PostgresRepository est l'implémentation PostgreSQL du Repository
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository crée un nouveau repository utilisateur
func NewPostgresRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

// Create ajoute un nouvel utilisateur non vérifié dans la base de données
func (r *PostgresRepository) Create(user *models.User) error {
	query := `
        INSERT INTO users (name, email, password, role, email_verified_at, remember_token)
        VALUES ($1, $2, $3, $4, NULL, $5)
        RETURNING id, created_at, updated_at
    `

	return r.db.QueryRow(
		query,
		user.Name,
		user.Email,
		user.Password,
		user.Role,
		user.VerificationToken,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetByID récupère un utilisateur par son ID
func (r *PostgresRepository) GetByID(id int) (*models.User, error) {
	query := `
        SELECT id, name, email, password, role, email_verified_at,
               remember_token, profile_picture, created_at, updated_at
        FROM users
        WHERE id = $1
    `

	return r.scanUser(r.db.QueryRow(query, id))
}

// GetByEmail récupère un utilisateur par son email (correspondance exacte)
func (r *PostgresRepository) GetByEmail(email string) (*models.User, error) {
	query := `
        SELECT id, name, email, password, role, email_verified_at,
               remember_token, profile_picture, created_at, updated_at
        FROM users
        WHERE email = $1
    `

	return r.scanUser(r.db.QueryRow(query, email))
}

// List récupère les utilisateurs portant le rôle donné
func (r *PostgresRepository) List(role string) ([]*models.User, error) {
	query := `
        SELECT id, name, email, role, created_at, updated_at
        FROM users
        WHERE role = $1
        ORDER BY id ASC
    `

	rows, err := r.db.Query(query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// VerifyEmail pose le timestamp de vérification et consomme le token.
// Renvoie false si le token ne correspond pas ou si le compte est déjà vérifié.
func (r *PostgresRepository) VerifyEmail(email, token string) (bool, error) {
	query := `
        UPDATE users
        SET email_verified_at = CURRENT_TIMESTAMP, remember_token = NULL, updated_at = CURRENT_TIMESTAMP
        WHERE email = $1 AND remember_token = $2 AND email_verified_at IS NULL
    `

	result, err := r.db.Exec(query, email, token)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// SaveResetToken enregistre un nouveau token de réinitialisation à usage unique
func (r *PostgresRepository) SaveResetToken(email, token string) (bool, error) {
	query := `
        UPDATE users
        SET remember_token = $1, updated_at = CURRENT_TIMESTAMP
        WHERE email = $2
    `

	result, err := r.db.Exec(query, token, email)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// UpdatePasswordWithToken remplace le mot de passe et consomme le token de
// réinitialisation. Renvoie false si le token ne correspond pas.
func (r *PostgresRepository) UpdatePasswordWithToken(email, token, passwordHash string) (bool, error) {
	query := `
        UPDATE users
        SET password = $1, remember_token = NULL, updated_at = CURRENT_TIMESTAMP
        WHERE email = $2 AND remember_token = $3
    `

	result, err := r.db.Exec(query, passwordHash, email, token)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// UpdateProfile met à jour le nom et l'email d'un utilisateur
func (r *PostgresRepository) UpdateProfile(id int, name, email string) error {
	query := `
        UPDATE users
        SET name = $1, email = $2, updated_at = CURRENT_TIMESTAMP
        WHERE id = $3
    `

	_, err := r.db.Exec(query, name, email, id)
	return err
}

// UpdateProfilePicture enregistre le chemin de la photo de profil
func (r *PostgresRepository) UpdateProfilePicture(id int, path string) error {
	query := `
        UPDATE users
        SET profile_picture = $1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $2
    `

	_, err := r.db.Exec(query, path, id)
	return err
}

// scanUser lit une ligne complète de la table users
func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.EmailVerifiedAt,
		&user.VerificationToken,
		&user.ProfilePicture,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}
