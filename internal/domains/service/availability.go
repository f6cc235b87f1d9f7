package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"zorgsites/internal/domains/dnsname"
	"zorgsites/internal/domains/models"
	"zorgsites/internal/domains/pricing"
	"zorgsites/internal/domains/suggest"
	"zorgsites/internal/registrar"
	pkgstrings "zorgsites/pkg/platform/strings"
)

const (
	checkBatchSize       = 10
	checkMaxInFlight     = 4
	suggestCheckDeadline = 8 * time.Second
)

// CheckDomain checks availability of a single domain and attaches pricing.
func (s *Service) CheckDomain(ctx context.Context, req *models.CheckDomainRequest) (*models.DomainCheckResult, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveAvailabilityCheck(time.Now())
	}

	status, err := s.checkOne(ctx, req.Domain)
	if err != nil {
		s.logger.ErrorContext(ctx, "availability check failed",
			"domain", req.Domain,
			"error", err,
		)
		return nil, upstreamError(err, "domain availability check failed")
	}

	result := checkResult(req.Domain, status)
	return &result, nil
}

// checkOne consults the cache before asking the registrar, and fills the
// cache on a miss.
func (s *Service) checkOne(ctx context.Context, domain string) (registrar.AvailabilityStatus, error) {
	if s.cache != nil {
		if status, ok := s.cache.Get(ctx, domain); ok {
			return status, nil
		}
	}
	status, err := s.registrar.CheckDomain(ctx, domain)
	if err != nil {
		return registrar.StatusUnknown, err
	}
	if s.cache != nil && status != registrar.StatusUnknown {
		s.cache.Set(ctx, domain, status)
	}
	return status, nil
}

// checkMany checks a set of domains with bounded parallelism. Input is
// deduplicated first. The returned map holds a verdict for every input
// domain; domains the registrar did not answer for are StatusUnknown.
func (s *Service) checkMany(ctx context.Context, domains []string) (map[string]registrar.AvailabilityStatus, error) {
	domains = pkgstrings.DedupeAndTrimLower(domains)
	results := make(map[string]registrar.AvailabilityStatus, len(domains))
	if len(domains) == 0 {
		return results, nil
	}

	// Cache hits are resolved up front; only misses go to the registrar.
	var misses []string
	for _, d := range domains {
		if s.cache != nil {
			if status, ok := s.cache.Get(ctx, d); ok {
				results[d] = status
				continue
			}
		}
		misses = append(misses, d)
	}
	if len(misses) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkMaxInFlight)

	for start := 0; start < len(misses); start += checkBatchSize {
		batch := misses[start:min(start+checkBatchSize, len(misses))]
		g.Go(func() error {
			verdicts, err := s.registrar.CheckDomains(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for d, status := range verdicts {
				results[d] = status
				if s.cache != nil && status != registrar.StatusUnknown {
					s.cache.Set(ctx, d, status)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Suggest generates candidate domains for a person and profession, checks
// their availability and ranks the results. When the registrar is down the
// suggestions are still returned, with unknown availability, rather than
// failing the whole request.
func (s *Service) Suggest(ctx context.Context, req *models.SuggestionsRequest) (*models.SuggestionsResponse, error) {
	candidates := suggest.Generate(req.Naam, req.Beroep)
	if len(candidates) == 0 {
		return &models.SuggestionsResponse{Suggestions: []models.DomainCheckResult{}}, nil
	}

	domains := make([]string, len(candidates))
	for i, c := range candidates {
		domains[i] = c.Domain
	}

	checkCtx, cancel := context.WithTimeout(ctx, suggestCheckDeadline)
	defer cancel()

	verdicts, err := s.checkMany(checkCtx, domains)
	if err != nil {
		s.logger.WarnContext(ctx, "suggestion availability check degraded",
			"candidates", len(domains),
			"error", err,
		)
		verdicts = map[string]registrar.AvailabilityStatus{}
	}

	results := make([]models.DomainCheckResult, len(candidates))
	availableCount := 0
	for i, c := range candidates {
		status, ok := verdicts[c.Domain]
		if !ok {
			status = registrar.StatusUnknown
		}
		results[i] = checkResult(c.Domain, status)
		if results[i].Available != nil && *results[i].Available {
			availableCount++
		}
	}

	// Available first, then preferred TLD order, input order last.
	sort.SliceStable(results, func(i, j int) bool {
		ai, aj := boolRank(results[i].Available), boolRank(results[j].Available)
		if ai != aj {
			return ai < aj
		}
		pi, pj := suggest.TLDPriority(results[i].TLD), suggest.TLDPriority(results[j].TLD)
		return pi < pj
	})

	return &models.SuggestionsResponse{
		Suggestions:    results,
		AvailableCount: availableCount,
	}, nil
}

// boolRank orders true < unknown(nil) < false.
func boolRank(b *bool) int {
	switch {
	case b != nil && *b:
		return 0
	case b == nil:
		return 1
	default:
		return 2
	}
}

func checkResult(domain string, status registrar.AvailabilityStatus) models.DomainCheckResult {
	price := pricing.ForDomain(domain)
	result := models.DomainCheckResult{
		Domain:         domain,
		Status:         string(status),
		TLD:            dnsname.TLD(domain),
		Price:          int(price.SaleCents),
		PriceFormatted: price.Format(),
	}
	if status != registrar.StatusUnknown {
		available := status.Available()
		result.Available = &available
	}
	return result
}
