// Package site provides Site persistence: an in-memory store for tests and a
// Postgres-backed store for production.
package site

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"zorgsites/internal/sites/models"
	"zorgsites/pkg/platform/sentinel"
)

// InMemory is a map-backed store, safe for concurrent use. Tests only.
type InMemory struct {
	mu    sync.RWMutex
	sites map[uuid.UUID]*models.Site
}

func NewInMemory() *InMemory {
	return &InMemory{sites: make(map[uuid.UUID]*models.Site)}
}

func (s *InMemory) Create(_ context.Context, site *models.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[site.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *site
	s.sites[site.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *site
	return &cp, nil
}

// SetDomain updates the site's bound-domain reference.
func (s *InMemory) SetDomain(_ context.Context, id uuid.UUID, domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	site, ok := s.sites[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	site.Domain = domain
	site.UpdatedAt = time.Now()
	return nil
}

// ClearDomain removes the site's bound-domain reference.
func (s *InMemory) ClearDomain(ctx context.Context, id uuid.UUID) error {
	return s.SetDomain(ctx, id, "")
}
