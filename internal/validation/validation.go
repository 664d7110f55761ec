// internal/validation/validation.go
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// Règles de validation
const (
	MinPasswordLength    = 6
	MaxPasswordLength    = 128
	MinNameLength        = 2
	MaxNameLength        = 100
	MaxTitleLength       = 200
	MaxTagsLength        = 255
	MaxDescriptionLength = 5000
)

// ValidationError représente une erreur de validation
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail valide un email
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)

	if email == "" {
		return ValidationError{Field: "email", Message: "l'email est obligatoire"}
	}

	if len(email) > 254 {
		return ValidationError{Field: "email", Message: "l'email est trop long (max 254 caractères)"}
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return ValidationError{Field: "email", Message: "format d'email invalide"}
	}

	return nil
}

// ValidatePassword valide un mot de passe
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "le mot de passe est obligatoire"}
	}

	if len(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("le mot de passe doit contenir au moins %d caractères", MinPasswordLength)}
	}

	if len(password) > MaxPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("le mot de passe doit contenir au maximum %d caractères", MaxPasswordLength)}
	}

	return nil
}

// ValidateName valide un nom d'affichage
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return ValidationError{Field: "name", Message: "le nom est obligatoire"}
	}

	if len(name) < MinNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("le nom doit contenir au moins %d caractères", MinNameLength)}
	}

	if len(name) > MaxNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("le nom doit contenir au maximum %d caractères", MaxNameLength)}
	}

	return nil
}

// ValidateTitle valide le titre d'une annonce
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)

	if title == "" {
		return ValidationError{Field: "title", Message: "le titre est obligatoire"}
	}

	if len(title) > MaxTitleLength {
		return ValidationError{Field: "title", Message: fmt.Sprintf("le titre doit contenir au maximum %d caractères", MaxTitleLength)}
	}

	return nil
}

// ValidateDescription valide la description d'une annonce
func ValidateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return ValidationError{Field: "desc", Message: "la description est obligatoire"}
	}

	if len(desc) > MaxDescriptionLength {
		return ValidationError{Field: "desc", Message: fmt.Sprintf("la description doit contenir au maximum %d caractères", MaxDescriptionLength)}
	}

	return nil
}

// ValidateTags valide la liste de tags d'une annonce
func ValidateTags(tags string) error {
	if strings.TrimSpace(tags) == "" {
		return ValidationError{Field: "tags", Message: "les tags sont obligatoires"}
	}

	if len(tags) > MaxTagsLength {
		return ValidationError{Field: "tags", Message: fmt.Sprintf("les tags doivent contenir au maximum %d caractères", MaxTagsLength)}
	}

	return nil
}

// ValidateLink valide le lien externe d'une annonce
func ValidateLink(link string) error {
	link = strings.TrimSpace(link)

	if link == "" {
		return ValidationError{Field: "link", Message: "le lien est obligatoire"}
	}

	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "link", Message: "format de lien invalide"}
	}

	return nil
}
