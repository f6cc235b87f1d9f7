package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"zorgsites/internal/audit"
	"zorgsites/internal/domains/metrics"
	"zorgsites/internal/domains/models"
	"zorgsites/internal/hosting"
	"zorgsites/internal/registrar"
	sitemodels "zorgsites/internal/sites/models"
	"zorgsites/internal/upstream"
	dErrors "zorgsites/pkg/domain-errors"
	"zorgsites/pkg/platform/sentinel"
	"zorgsites/pkg/requestcontext"
)

type RecordStore interface {
	Create(ctx context.Context, rec *models.DomainRecord) error
	Update(ctx context.Context, rec *models.DomainRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DomainRecord, error)
	FindActiveBySite(ctx context.Context, siteID uuid.UUID) (*models.DomainRecord, error)
	FindActiveByDomain(ctx context.Context, domain string) (*models.DomainRecord, error)
	ListBySite(ctx context.Context, siteID uuid.UUID) ([]*models.DomainRecord, error)
}

type SiteStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*sitemodels.Site, error)
	SetDomain(ctx context.Context, id uuid.UUID, domain string) error
	ClearDomain(ctx context.Context, id uuid.UUID) error
}

// Registrar is the slice of the registrar client the service consumes.
type Registrar interface {
	CheckDomains(ctx context.Context, domains []string) (map[string]registrar.AvailabilityStatus, error)
	CheckDomain(ctx context.Context, domain string) (registrar.AvailabilityStatus, error)
	Register(ctx context.Context, domain string) error
	UpsertDNS(ctx context.Context, domain string, entries []registrar.DNSEntry) error
}

// HostingPlatform is the slice of the hosting client the service consumes.
type HostingPlatform interface {
	Attach(ctx context.Context, domain string) (hosting.AttachResult, error)
	Detach(ctx context.Context, domain string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AvailabilityCache caches registrar availability verdicts. Implementations
// must be safe for concurrent use; a nil cache disables caching.
type AvailabilityCache interface {
	Get(ctx context.Context, domain string) (registrar.AvailabilityStatus, bool)
	Set(ctx context.Context, domain string, status registrar.AvailabilityStatus)
}

// DNSTargets are the hosting platform's canonical DNS targets: an A record
// at the apex and a CNAME at www.
type DNSTargets struct {
	ApexIP      string
	CNAMETarget string
}

// Service orchestrates domain acquisition and binding.
type Service struct {
	records   RecordStore
	sites     SiteStore
	registrar Registrar
	hosting   HostingPlatform
	targets   DNSTargets

	cache          AvailabilityCache
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAvailabilityCache(cache AvailabilityCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// New constructs a Service.
func New(records RecordStore, sites SiteStore, reg Registrar, host HostingPlatform, targets DNSTargets, opts ...Option) *Service {
	s := &Service{
		records:   records,
		sites:     sites,
		registrar: reg,
		hosting:   host,
		targets:   targets,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ownedSite loads a site and verifies the caller owns it. A site the caller
// cannot access is reported as not found, never as forbidden, so the API does
// not leak which site IDs exist.
func (s *Service) ownedSite(ctx context.Context, siteID uuid.UUID) (*sitemodels.Site, error) {
	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "site not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load site")
	}
	if userID := requestcontext.UserID(ctx); userID != uuid.Nil && !site.OwnedBy(userID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "site not found")
	}
	return site, nil
}

// upstreamError translates an upstream client failure into a caller-facing
// domain error. Detail stays in the log; the caller only sees the category.
func upstreamError(err error, msg string) error {
	if upstream.CategoryOf(err) == upstream.CategoryTimeout {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	if upstream.CategoryOf(err) == upstream.CategoryConflict {
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
}

func (s *Service) emitAudit(ctx context.Context, action audit.EventAction, siteID uuid.UUID, domain, detail string) {
	event := audit.Event{
		Action:    action,
		UserID:    requestcontext.UserID(ctx),
		SiteID:    siteID,
		Domain:    domain,
		RequestID: requestcontext.RequestID(ctx),
		Detail:    detail,
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"site_id", siteID,
			"error", err,
		)
	}
}
