package models

import (
	"time"

	"github.com/google/uuid"
)

// Site is the hosted web property a domain gets bound to. Site CRUD lives
// elsewhere; this module only reads sites and maintains the bound-domain
// reference.
type Site struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`
	// Domain is the currently bound custom domain, empty when none.
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy reports whether the given user owns this site.
func (s *Site) OwnedBy(userID uuid.UUID) bool {
	return s.OwnerID == userID
}
