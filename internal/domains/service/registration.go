package service

import (
	"context"
	"errors"
	"time"

	"zorgsites/internal/audit"
	"zorgsites/internal/domains/dnsname"
	"zorgsites/internal/domains/models"
	"zorgsites/internal/domains/pricing"
	"zorgsites/internal/registrar"
	dErrors "zorgsites/pkg/domain-errors"
	"zorgsites/pkg/platform/sentinel"
	"zorgsites/pkg/requestcontext"
)

const registrationTerm = 365 * 24 * time.Hour

// Register purchases a domain through the registrar and binds it to the
// site, driving the record through the full state machine. The domain is
// bought before DNS and hosting are configured; a failure after purchase
// marks the record failed but the purchase itself is not reversed (the
// registrar offers no cancellation call).
func (s *Service) Register(ctx context.Context, req *models.RegisterDomainRequest) (*models.RegisterDomainResponse, error) {
	if s.metrics != nil {
		s.metrics.RegistrationsStarted.Inc()
		defer s.metrics.ObserveRegisterPipeline(time.Now())
	}

	site, err := s.ownedSite(ctx, req.SiteID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	rec := models.NewDomainRecord(site.ID, req.Domain, dnsname.TLD(req.Domain), models.ModeRegistered, now)
	price := pricing.ForDomain(req.Domain)
	rec.PriceCents = int(price.SaleCents)
	rec.CostCents = int(price.CostCents)

	// Create is the conflict gate: the store enforces one non-terminal
	// record per site and one non-terminal claim per domain atomically.
	if err := s.records.Create(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "site or domain already has an active registration")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create domain record")
	}

	s.emitAudit(ctx, audit.EventDomainRequested, site.ID, rec.Domain, "")

	// Availability re-check right before purchase. Narrows the window in
	// which the registrar's inventory changes under us; cannot close it.
	if err := s.advance(ctx, rec, models.StatusCheckingAvailability); err != nil {
		return nil, err
	}
	status, err := s.registrar.CheckDomain(ctx, rec.Domain)
	if err != nil {
		return nil, s.failRecord(ctx, rec, "availability check failed", err)
	}
	if !status.Available() {
		err := dErrors.New(dErrors.CodeConflict, "domain is no longer available")
		return nil, s.failRecord(ctx, rec, "domain not available at purchase time", err)
	}

	// Purchase. This spends real money; there is no idempotency key, so a
	// failure here is terminal rather than retried.
	if err := s.advance(ctx, rec, models.StatusRegistering); err != nil {
		return nil, err
	}
	if err := s.registrar.Register(ctx, rec.Domain); err != nil {
		return nil, s.failRecord(ctx, rec, "registrar rejected registration", err)
	}

	registeredAt := time.Now()
	expiresAt := registeredAt.Add(registrationTerm)
	rec.RegisteredAt = &registeredAt
	rec.ExpiresAt = &expiresAt

	if err := s.advance(ctx, rec, models.StatusDNSConfiguring); err != nil {
		return nil, err
	}

	// DNS failure after a successful purchase leaves the record parked in
	// dns_configuring with dns_configured=false for operator follow-up.
	// Marking it failed here would strand a domain we already paid for.
	if err := s.registrar.UpsertDNS(ctx, rec.Domain, s.dnsEntries()); err != nil {
		s.logger.ErrorContext(ctx, "dns configuration failed after purchase",
			"domain", rec.Domain,
			"site_id", site.ID,
			"error", err,
		)
		if uerr := s.records.Update(ctx, rec); uerr != nil {
			s.logger.ErrorContext(ctx, "failed to persist domain record", "record_id", rec.ID, "error", uerr)
		}
		if serr := s.sites.SetDomain(ctx, site.ID, rec.Domain); serr != nil {
			s.logger.ErrorContext(ctx, "failed to update site domain reference", "site_id", site.ID, "error", serr)
		}
		s.emitAudit(ctx, audit.EventDomainRegistered, site.ID, rec.Domain, "dns configuration pending")
		return s.registerResponse(rec), nil
	}
	rec.DNSConfigured = true

	// Hosting attachment is best-effort: the retry endpoint exists because
	// it is the flakiest, asynchronous step. The record still goes active
	// once DNS points at the platform.
	if _, err := s.hosting.Attach(ctx, rec.Domain); err != nil {
		s.logger.WarnContext(ctx, "hosting attach failed, retry available",
			"domain", rec.Domain,
			"site_id", site.ID,
			"error", err,
		)
	}
	if _, err := s.hosting.Attach(ctx, "www."+rec.Domain); err != nil {
		s.logger.WarnContext(ctx, "hosting attach failed for www, retry available",
			"domain", rec.Domain,
			"site_id", site.ID,
			"error", err,
		)
	}

	if err := s.advance(ctx, rec, models.StatusActive); err != nil {
		return nil, err
	}

	if err := s.sites.SetDomain(ctx, site.ID, rec.Domain); err != nil {
		s.logger.ErrorContext(ctx, "failed to update site domain reference",
			"site_id", site.ID,
			"domain", rec.Domain,
			"error", err,
		)
	}

	s.emitAudit(ctx, audit.EventDomainRegistered, site.ID, rec.Domain, "")
	if s.metrics != nil {
		s.metrics.RegistrationsCompleted.Inc()
	}
	return s.registerResponse(rec), nil
}

// Connect binds a domain the user already owns. No registrar call is made;
// the response carries the DNS records the user must create themselves.
func (s *Service) Connect(ctx context.Context, req *models.ConnectDomainRequest) (*models.ConnectDomainResponse, error) {
	site, err := s.ownedSite(ctx, req.SiteID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	rec := models.NewDomainRecord(site.ID, req.Domain, dnsname.TLD(req.Domain), models.ModeConnected, now)

	if err := s.records.Create(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "site or domain already has an active registration")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create domain record")
	}

	// Best-effort attach so the platform starts verifying as soon as the
	// user's DNS propagates.
	if _, err := s.hosting.Attach(ctx, rec.Domain); err != nil {
		s.logger.WarnContext(ctx, "hosting attach failed, retry available",
			"domain", rec.Domain,
			"site_id", site.ID,
			"error", err,
		)
	}
	if _, err := s.hosting.Attach(ctx, "www."+rec.Domain); err != nil {
		s.logger.WarnContext(ctx, "hosting attach failed for www, retry available",
			"domain", rec.Domain,
			"site_id", site.ID,
			"error", err,
		)
	}

	if err := s.sites.SetDomain(ctx, site.ID, rec.Domain); err != nil {
		s.logger.ErrorContext(ctx, "failed to update site domain reference",
			"site_id", site.ID,
			"domain", rec.Domain,
			"error", err,
		)
	}

	s.emitAudit(ctx, audit.EventDomainConnected, site.ID, rec.Domain, "")
	if s.metrics != nil {
		s.metrics.DomainsConnected.Inc()
	}

	return &models.ConnectDomainResponse{
		Success: true,
		Domain:  rec.Domain,
		DNS: models.DNSInstructions{
			A:     models.DNSInstruction{Type: "A", Name: "@", Value: s.targets.ApexIP},
			CNAME: models.DNSInstruction{Type: "CNAME", Name: "www", Value: s.targets.CNAMETarget},
		},
	}, nil
}

// Disconnect detaches the site's domain from the hosting platform and closes
// the record. The record row survives with a terminal status; history is
// never deleted.
func (s *Service) Disconnect(ctx context.Context, req *models.DisconnectDomainRequest) (*models.DisconnectDomainResponse, error) {
	site, err := s.ownedSite(ctx, req.SiteID)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.FindActiveBySite(ctx, site.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "site has no domain to disconnect")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain record")
	}

	// Detach treats "not found" as success; the domain may already be gone
	// on the platform side. Anything else aborts before we touch state.
	if _, err := s.hosting.Detach(ctx, rec.Domain); err != nil {
		return nil, upstreamError(err, "failed to detach domain from hosting platform")
	}
	if _, err := s.hosting.Detach(ctx, "www."+rec.Domain); err != nil {
		return nil, upstreamError(err, "failed to detach domain from hosting platform")
	}

	if err := s.sites.ClearDomain(ctx, site.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear site domain reference")
	}

	now := requestcontext.Now(ctx)
	if err := rec.MarkDisconnected(now); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist domain record")
	}

	s.emitAudit(ctx, audit.EventDomainDisconnected, site.ID, rec.Domain, "")
	if s.metrics != nil {
		s.metrics.DomainsDisconnected.Inc()
	}
	return &models.DisconnectDomainResponse{Success: true}, nil
}

// advance moves the record forward and persists the transition immediately,
// so the stored status always reflects how far the pipeline got.
func (s *Service) advance(ctx context.Context, rec *models.DomainRecord, next models.DomainStatus) error {
	if err := rec.Advance(next, time.Now()); err != nil {
		return err
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist domain record")
	}
	return nil
}

// failRecord marks the record failed, persists it and returns the
// caller-facing error. Pipeline state must never be lost silently, so
// persistence happens before the error propagates.
func (s *Service) failRecord(ctx context.Context, rec *models.DomainRecord, reason string, cause error) error {
	s.logger.ErrorContext(ctx, "registration pipeline failed",
		"domain", rec.Domain,
		"site_id", rec.SiteID,
		"status", rec.Status,
		"reason", reason,
		"error", cause,
	)

	rec.MarkFailed(reason, time.Now())
	if err := s.records.Update(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist failed domain record",
			"record_id", rec.ID,
			"error", err,
		)
	}

	s.emitAudit(ctx, audit.EventDomainFailed, rec.SiteID, rec.Domain, reason)
	if s.metrics != nil {
		s.metrics.RegistrationsFailed.Inc()
	}

	if dErrors.HasCode(cause, dErrors.CodeConflict) {
		return cause
	}
	return upstreamError(cause, "domain registration failed")
}

func (s *Service) dnsEntries() []registrar.DNSEntry {
	return []registrar.DNSEntry{
		{Name: "@", Type: "A", Content: s.targets.ApexIP, Expire: 3600},
		{Name: "www", Type: "CNAME", Content: s.targets.CNAMETarget, Expire: 3600},
	}
}

func (s *Service) registerResponse(rec *models.DomainRecord) *models.RegisterDomainResponse {
	resp := &models.RegisterDomainResponse{
		Success:        true,
		Domain:         rec.Domain,
		Status:         string(rec.Status),
		Price:          rec.PriceCents,
		PriceFormatted: pricing.Price{SaleCents: int64(rec.PriceCents), CostCents: int64(rec.CostCents)}.Format(),
	}
	if rec.Status == models.StatusActive {
		resp.NextSteps = []string{"Je domein is actief. Het kan tot 24 uur duren voordat het overal bereikbaar is."}
	} else {
		resp.NextSteps = []string{"De DNS-configuratie wordt afgerond. Controleer de status later opnieuw."}
	}
	return resp
}
