package service

import (
	"context"
	"errors"

	"zorgsites/internal/audit"
	"zorgsites/internal/domains/models"
	dErrors "zorgsites/pkg/domain-errors"
	"zorgsites/pkg/platform/sentinel"
)

// RetryBinding re-attaches the site's domain on the hosting platform, apex
// and www both. The dashboard exposes this because attachment is the step
// that fails most often and platform verification is asynchronous; the
// operation is safe to repeat since attach is idempotent.
func (s *Service) RetryBinding(ctx context.Context, req *models.RetryBindingRequest) (*models.RetryBindingResponse, error) {
	site, err := s.ownedSite(ctx, req.SiteID)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.FindActiveBySite(ctx, site.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "site has no domain to retry")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain record")
	}

	apex, err := s.hosting.Attach(ctx, rec.Domain)
	if err != nil {
		return nil, upstreamError(err, "failed to attach domain to hosting platform")
	}
	if _, err := s.hosting.Attach(ctx, "www."+rec.Domain); err != nil {
		// The apex succeeded; a www failure degrades rather than fails.
		s.logger.WarnContext(ctx, "hosting attach failed for www",
			"domain", rec.Domain,
			"site_id", site.ID,
			"error", err,
		)
	}

	// A verified attachment completes a record that was parked waiting for
	// the hosting side.
	if apex.Verified && rec.Status == models.StatusDNSConfiguring {
		if err := s.advance(ctx, rec, models.StatusActive); err != nil {
			return nil, err
		}
	}

	s.emitAudit(ctx, audit.EventBindingRetried, site.ID, rec.Domain, "")
	if s.metrics != nil {
		s.metrics.BindingRetries.Inc()
	}

	return &models.RetryBindingResponse{
		Success:  true,
		Verified: apex.Verified,
	}, nil
}
