package models

import "time"

// États d'approbation d'une annonce
const (
	ApprovalPending  = 0
	ApprovalApproved = 1
	ApprovalRejected = 2
)

// Listing représente une annonce publiée par un utilisateur
type Listing struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"desc"`
	Tags        string    `json:"tags"`
	Email       string    `json:"email"`
	Link        string    `json:"link"`
	Image       *string   `json:"image"`
	Approved    int       `json:"approved"`
	CategoryID  *int      `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingDetail est la vue jointe d'une annonce avec son auteur et sa catégorie
type ListingDetail struct {
	Listing  *Listing  `json:"listing"`
	User     *User     `json:"user"`
	Category *Category `json:"category"`
}
