// Package upload gère le stockage des fichiers uploadés et leur résolution en URL.
package upload

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Dossiers de stockage par type d'entité
const (
	ListingPicturesFolder = "listing_pictures"
	ProfilePicturesFolder = "profile_pictures"
)

// DefaultPlaceholder est l'image servie quand aucun fichier n'est associé
const DefaultPlaceholder = "default-avatar.jpeg"

// Store persiste les fichiers uploadés sous un dossier public servi en statique.
// Les chemins renvoyés sont relatifs au dossier public (ex: uploads/listing_pictures/x.jpg).
type Store struct {
	publicDir string
	baseURL   string
}

// NewStore crée un nouveau store de fichiers
func NewStore(publicDir, baseURL string) *Store {
	return &Store{
		publicDir: publicDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Save valide puis écrit un fichier uploadé sous uploads/<folder> avec un nom
// généré sans collision, et renvoie son chemin relatif
func (s *Store) Save(folder string, fileHeader *multipart.FileHeader, data []byte) (string, error) {
	if err := ValidateImageUpload(fileHeader, data); err != nil {
		return "", err
	}

	// Normaliser l'orientation EXIF avant écriture
	data = NormalizeOrientation(data)

	dir := filepath.Join(s.publicDir, "uploads", folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("erreur lors de la création du dossier d'uploads: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	name := uuid.NewString() + ext

	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("erreur lors de l'écriture du fichier: %w", err)
	}

	return filepath.ToSlash(filepath.Join("uploads", folder, name)), nil
}

// Delete supprime un fichier stocké; un chemin vide est ignoré
func (s *Store) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}

	fullPath := filepath.Join(s.publicDir, filepath.FromSlash(strings.TrimPrefix(relPath, "/")))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("erreur lors de la suppression du fichier %s: %w", relPath, err)
	}

	return nil
}

// Exists indique si un fichier stocké est présent sur le disque
func (s *Store) Exists(relPath string) bool {
	if relPath == "" {
		return false
	}

	fullPath := filepath.Join(s.publicDir, filepath.FromSlash(strings.TrimPrefix(relPath, "/")))
	info, err := os.Stat(fullPath)
	return err == nil && !info.IsDir()
}

// URL résout un chemin stocké en URL absolue, avec repli sur l'image par
// défaut du dossier quand le chemin est vide ou que le fichier a disparu
func (s *Store) URL(relPath *string, folder string) string {
	if relPath == nil || *relPath == "" || !s.Exists(*relPath) {
		return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, folder, DefaultPlaceholder)
	}

	return s.baseURL + "/" + strings.TrimPrefix(*relPath, "/")
}
