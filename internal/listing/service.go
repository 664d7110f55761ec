package listing

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/listora/listora/internal/models"
	"github.com/listora/listora/internal/upload"
)

// ErrImageRequired est renvoyée quand une création d'annonce n'apporte ni
// nouvelle image ni référence à une image existante
var ErrImageRequired = errors.New("une image est obligatoire")

// UserGetter résout le propriétaire d'une annonce
type UserGetter interface {
	GetByID(id int) (*models.User, error)
}

// CategoryGetter résout la catégorie d'une annonce
type CategoryGetter interface {
	GetByID(id int) (*models.Category, error)
}

// ListingsPage est le contenu typé de l'enveloppe paginée des annonces
type ListingsPage struct {
	Listings []*models.Listing `json:"listings"`
}

// Service gère le cycle de vie des annonces
type Service struct {
	repo       Repository
	users      UserGetter
	categories CategoryGetter
	uploads    *upload.Store
	logger     zerolog.Logger
}

// NewService crée un nouveau service d'annonces
func NewService(repo Repository, users UserGetter, categories CategoryGetter, uploads *upload.Store, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		categories: categories,
		uploads:    uploads,
		logger:     logger,
	}
}

// List récupère une page d'annonces avec leurs images résolues en URL absolues
func (s *Service) List(params ListParams) (models.PaginatedResponse, error) {
	listings, totalCount, err := s.repo.List(params)
	if err != nil {
		return models.PaginatedResponse{}, fmt.Errorf("erreur lors de la récupération des annonces: %w", err)
	}

	listings = nonNil(listings)
	s.resolveImages(listings)

	return models.NewPaginatedResponse(
		"Listings fetched successfully.",
		http.StatusOK,
		ListingsPage{Listings: listings},
		params.Page,
		params.PageSize,
		totalCount,
	), nil
}

// ListByUser récupère une page des annonces d'un utilisateur, les plus
// récentes d'abord
func (s *Service) ListByUser(userID int, params ListParams) (models.PaginatedResponse, error) {
	listings, totalCount, err := s.repo.ListByUser(userID, params)
	if err != nil {
		return models.PaginatedResponse{}, fmt.Errorf("erreur lors de la récupération des annonces: %w", err)
	}

	listings = nonNil(listings)
	s.resolveImages(listings)

	return models.NewPaginatedResponse(
		"Listings fetched successfully.",
		http.StatusOK,
		ListingsPage{Listings: listings},
		params.Page,
		params.PageSize,
		totalCount,
	), nil
}

// Get récupère une annonce brute, sans résolution d'image ni de relations.
// Les handlers s'en servent pour les contrôles de propriété.
func (s *Service) Get(id int) (*models.Listing, error) {
	return s.repo.GetByID(id)
}

// GetDetail récupère une annonce avec son auteur et sa catégorie résolus par
// deux lectures supplémentaires, pas par jointure SQL
func (s *Service) GetDetail(id int) (*models.ListingDetail, error) {
	listing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.resolveImages([]*models.Listing{listing})

	detail := &models.ListingDetail{Listing: listing}

	owner, err := s.users.GetByID(listing.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Int("user_id", listing.UserID).Msg("propriétaire de l'annonce introuvable")
	} else {
		detail.User = owner
	}

	if listing.CategoryID != nil {
		category, err := s.categories.GetByID(*listing.CategoryID)
		if err != nil {
			s.logger.Warn().Err(err).Int("category_id", *listing.CategoryID).Msg("catégorie de l'annonce introuvable")
		} else {
			detail.Category = category
		}
	}

	return detail, nil
}

// Save crée ou met à jour une annonce avec sa gestion d'image.
// À la création, une nouvelle image est obligatoire sauf si une référence
// d'image existante est fournie, et l'annonce démarre en attente d'approbation.
// À la mise à jour, l'ancien fichier n'est supprimé qu'après l'écriture du
// nouveau et la mise à jour de la ligne; sans nouvelle image, le chemin
// existant est conservé tel quel.
func (s *Service) Save(listing *models.Listing, fileHeader *multipart.FileHeader, data []byte, existingImage string) error {
	hasNewImage := fileHeader != nil && len(data) > 0

	if listing.ID == 0 {
		if !hasNewImage && existingImage == "" {
			return ErrImageRequired
		}

		if hasNewImage {
			path, err := s.uploads.Save(upload.ListingPicturesFolder, fileHeader, data)
			if err != nil {
				return err
			}
			listing.Image = &path
		} else {
			listing.Image = &existingImage
		}

		listing.Approved = models.ApprovalPending
		if err := s.repo.Insert(listing); err != nil {
			return fmt.Errorf("erreur lors de la création de l'annonce: %w", err)
		}

		return nil
	}

	oldPath, err := s.repo.GetImagePath(listing.ID)
	if err != nil {
		return err
	}

	if hasNewImage {
		path, err := s.uploads.Save(upload.ListingPicturesFolder, fileHeader, data)
		if err != nil {
			return err
		}
		listing.Image = &path
	} else {
		// Conserver le chemin existant tel quel
		listing.Image = oldPath
	}

	if err := s.repo.Update(listing); err != nil {
		return fmt.Errorf("erreur lors de la mise à jour de l'annonce: %w", err)
	}

	// Supprimer l'ancien fichier seulement une fois le pointeur remplacé
	if hasNewImage && oldPath != nil {
		if err := s.uploads.Delete(*oldPath); err != nil {
			s.logger.Error().Err(err).Str("path", *oldPath).Msg("échec de la suppression de l'ancienne image")
		}
	}

	return nil
}

// SetApproval change l'état d'approbation d'une annonce. C'est la seule
// opération autorisée à le modifier.
func (s *Service) SetApproval(id, approved int) error {
	ok, err := s.repo.SetApproval(id, approved)
	if err != nil {
		return fmt.Errorf("erreur lors de la mise à jour de l'approbation: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete supprime une annonce
func (s *Service) Delete(id int) error {
	ok, err := s.repo.Delete(id)
	if err != nil {
		return fmt.Errorf("erreur lors de la suppression de l'annonce: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// resolveImages remplace les chemins stockés par des URLs absolues, avec
// repli sur l'image par défaut quand aucune image n'est associée
func (s *Service) resolveImages(listings []*models.Listing) {
	for _, listing := range listings {
		resolved := s.uploads.URL(listing.Image, upload.ListingPicturesFolder)
		listing.Image = &resolved
	}
}

// nonNil garantit un tableau JSON vide plutôt que null pour une fenêtre vide
func nonNil(listings []*models.Listing) []*models.Listing {
	if listings == nil {
		return []*models.Listing{}
	}
	return listings
}
