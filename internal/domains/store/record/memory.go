// Package record provides DomainRecord persistence: an in-memory store for
// tests and a Postgres-backed store for production.
package record

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"zorgsites/internal/domains/models"
	"zorgsites/pkg/platform/sentinel"
)

// InMemory is a map-backed store, safe for concurrent use. Tests only.
type InMemory struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*models.DomainRecord
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[uuid.UUID]*models.DomainRecord)}
}

// Create inserts the record after checking both single-active invariants:
// the site must not already hold a non-terminal record, and the domain must
// not be claimed by a non-terminal record of any site.
func (s *InMemory) Create(_ context.Context, rec *models.DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records {
		if existing.Status.IsTerminal() {
			continue
		}
		if existing.SiteID == rec.SiteID || existing.Domain == rec.Domain {
			return sentinel.ErrConflict
		}
	}

	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *InMemory) Update(_ context.Context, rec *models.DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// FindActiveBySite returns the site's non-terminal record, if any.
func (s *InMemory) FindActiveBySite(_ context.Context, siteID uuid.UUID) (*models.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.SiteID == siteID && !rec.Status.IsTerminal() {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// FindActiveByDomain returns the non-terminal record claiming the domain,
// if any.
func (s *InMemory) FindActiveByDomain(_ context.Context, domain string) (*models.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.Domain == domain && !rec.Status.IsTerminal() {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ListBySite returns all records for a site, terminal ones included.
func (s *InMemory) ListBySite(_ context.Context, siteID uuid.UUID) ([]*models.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.DomainRecord
	for _, rec := range s.records {
		if rec.SiteID == siteID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}
