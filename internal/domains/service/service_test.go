package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zorgsites/internal/domains/models"
	"zorgsites/internal/domains/store/record"
	"zorgsites/internal/hosting"
	"zorgsites/internal/registrar"
	sitemodels "zorgsites/internal/sites/models"
	"zorgsites/internal/sites/store/site"
	"zorgsites/internal/upstream"
	dErrors "zorgsites/pkg/domain-errors"
	"zorgsites/pkg/requestcontext"
)

type fakeRegistrar struct {
	mu sync.Mutex

	statuses    map[string]registrar.AvailabilityStatus
	checkErr    error
	registerErr error
	dnsErr      error

	registered []string
	dnsUpserts []string
}

func (f *fakeRegistrar) CheckDomains(_ context.Context, domains []string) (map[string]registrar.AvailabilityStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	out := make(map[string]registrar.AvailabilityStatus, len(domains))
	for _, d := range domains {
		status, ok := f.statuses[d]
		if !ok {
			status = registrar.StatusFree
		}
		out[d] = status
	}
	return out, nil
}

func (f *fakeRegistrar) CheckDomain(ctx context.Context, domain string) (registrar.AvailabilityStatus, error) {
	res, err := f.CheckDomains(ctx, []string{domain})
	if err != nil {
		return registrar.StatusUnknown, err
	}
	return res[domain], nil
}

func (f *fakeRegistrar) Register(_ context.Context, domain string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, domain)
	return nil
}

func (f *fakeRegistrar) UpsertDNS(_ context.Context, domain string, _ []registrar.DNSEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dnsErr != nil {
		return f.dnsErr
	}
	f.dnsUpserts = append(f.dnsUpserts, domain)
	return nil
}

type fakeHosting struct {
	mu sync.Mutex

	attachErr error
	detachErr error
	verified  bool

	attached []string
	detached []string
}

func (f *fakeHosting) Attach(_ context.Context, domain string) (hosting.AttachResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attachErr != nil {
		return hosting.AttachResult{}, f.attachErr
	}
	f.attached = append(f.attached, domain)
	return hosting.AttachResult{Attached: true, Verified: f.verified}, nil
}

func (f *fakeHosting) Detach(_ context.Context, domain string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detachErr != nil {
		return false, f.detachErr
	}
	f.detached = append(f.detached, domain)
	return true, nil
}

type fixture struct {
	svc     *Service
	records *record.InMemory
	sites   *site.InMemory
	reg     *fakeRegistrar
	host    *fakeHosting
	siteID  uuid.UUID
	ownerID uuid.UUID
	ctx     context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		records: record.NewInMemory(),
		sites:   site.NewInMemory(),
		reg:     &fakeRegistrar{statuses: map[string]registrar.AvailabilityStatus{}},
		host:    &fakeHosting{},
		siteID:  uuid.New(),
		ownerID: uuid.New(),
	}

	now := time.Now()
	require.NoError(t, f.sites.Create(context.Background(), &sitemodels.Site{
		ID:        f.siteID,
		OwnerID:   f.ownerID,
		Name:      "Praktijk Test",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	f.svc = New(f.records, f.sites, f.reg, f.host,
		DNSTargets{ApexIP: "76.76.21.21", CNAMETarget: "cname.vercel-dns.com"},
	)
	f.ctx = requestcontext.WithUserID(context.Background(), f.ownerID)
	return f
}

func TestRegister_FullPipeline(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Register(f.ctx, &models.RegisterDomainRequest{
		Domain: "mijnzorg.nl",
		SiteID: f.siteID,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "mijnzorg.nl", resp.Domain)
	assert.Equal(t, string(models.StatusActive), resp.Status)
	assert.Equal(t, 1250, resp.Price)
	assert.Equal(t, "€12,50/jaar", resp.PriceFormatted)

	rec, err := f.records.FindActiveBySite(f.ctx, f.siteID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, rec.Status)
	assert.True(t, rec.DNSConfigured)
	assert.Equal(t, 1250, rec.PriceCents)
	assert.Equal(t, 499, rec.CostCents)
	require.NotNil(t, rec.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(365*24*time.Hour), *rec.ExpiresAt, time.Minute)

	assert.Equal(t, []string{"mijnzorg.nl"}, f.reg.registered)
	assert.Equal(t, []string{"mijnzorg.nl"}, f.reg.dnsUpserts)
	assert.Contains(t, f.host.attached, "mijnzorg.nl")
	assert.Contains(t, f.host.attached, "www.mijnzorg.nl")

	s, err := f.sites.FindByID(f.ctx, f.siteID)
	require.NoError(t, err)
	assert.Equal(t, "mijnzorg.nl", s.Domain)
}

func TestRegister_ConflictWhenDomainHeldByAnotherSite(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(f.ctx, &models.RegisterDomainRequest{
		Domain: "mijnzorg.nl",
		SiteID: f.siteID,
	})
	require.NoError(t, err)

	otherOwner := uuid.New()
	otherSite := uuid.New()
	now := time.Now()
	require.NoError(t, f.sites.Create(context.Background(), &sitemodels.Site{
		ID: otherSite, OwnerID: otherOwner, Name: "Andere Praktijk", CreatedAt: now, UpdatedAt: now,
	}))

	_, err = f.svc.Register(requestcontext.WithUserID(context.Background(), otherOwner),
		&models.RegisterDomainRequest{Domain: "mijnzorg.nl", SiteID: otherSite})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRegister_ConflictWhenSiteAlreadyHasDomain(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(f.ctx, &models.RegisterDomainRequest{Domain: "eerste.nl", SiteID: f.siteID})
	require.NoError(t, err)

	_, err = f.svc.Register(f.ctx, &models.RegisterDomainRequest{Domain: "tweede.nl", SiteID: f.siteID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRegister_DomainTakenMarksRecordFailed(t *testing.T) {
	f := newFixture(t)
	f.reg.statuses["bezet.nl"] = registrar.StatusNotFree

	_, err := f.svc.Register(f.ctx, &models.RegisterDomainRequest{Domain: "bezet.nl", SiteID: f.siteID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	all, err := f.records.ListBySite(f.ctx, f.siteID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusFailed, all[0].Status)
	assert.Empty(t, f.reg.registered, "no purchase should happen for a taken domain")
}

func TestRegister_RegistrarOutageMarksRecordFailed(t *testing.T) {
	f := newFixture(t)
	f.reg.registerErr = upstream.FromStatus("registrar", 502, "bad gateway")

	_, err := f.svc.Register(f.ctx, &models.RegisterDomainRequest{Domain: "pech.nl", SiteID: f.siteID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))

	all, err := f.records.ListBySite(f.ctx, f.siteID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusFailed, all[0].Status)
}

func TestRegister_DNSFailureParksRecordNotFailed(t *testing.T) {
	f := newFixture(t)
	f.reg.dnsErr = upstream.FromTransport("registrar", context.DeadlineExceeded)

	resp, err := f.svc.Register(f.ctx, &models.RegisterDomainRequest{Domain: "half.nl", SiteID: f.siteID})
	require.NoError(t, err, "a paid-for domain must not surface as a failed request")

	assert.True(t, resp.Success)
	assert.Equal(t, string(models.StatusDNSConfiguring), resp.Status)

	rec, err := f.records.FindActiveBySite(f.ctx, f.siteID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDNSConfiguring, rec.Status)
	assert.False(t, rec.DNSConfigured)
	assert.Equal(t, []string{"half.nl"}, f.reg.registered, "purchase went through before DNS failed")
}

func TestRegister_SiteNotOwnedReportsNotFound(t *testing.T) {
	f := newFixture(t)

	stranger := requestcontext.WithUserID(context.Background(), uuid.New())
	_, err := f.svc.Register(stranger, &models.RegisterDomainRequest{Domain: "mijnzorg.nl", SiteID: f.siteID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestConnect_ReturnsDNSInstructions(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Connect(f.ctx, &models.ConnectDomainRequest{Domain: "eigen.nl", SiteID: f.siteID})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, models.DNSInstruction{Type: "A", Name: "@", Value: "76.76.21.21"}, resp.DNS.A)
	assert.Equal(t, models.DNSInstruction{Type: "CNAME", Name: "www", Value: "cname.vercel-dns.com"}, resp.DNS.CNAME)

	rec, err := f.records.FindActiveBySite(f.ctx, f.siteID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDNSConfiguring, rec.Status)
	assert.Equal(t, models.ModeConnected, rec.AcquisitionMode)
	assert.Empty(t, f.reg.registered, "connect never calls the registrar")
}

func TestDisconnect_ClosesRecordAndClearsSite(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(f.ctx, &models.RegisterDomainRequest{Domain: "weg.nl", SiteID: f.siteID})
	require.NoError(t, err)

	resp, err := f.svc.Disconnect(f.ctx, &models.DisconnectDomainRequest{SiteID: f.siteID})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	assert.Contains(t, f.host.detached, "weg.nl")
	assert.Contains(t, f.host.detached, "www.weg.nl")

	s, err := f.sites.FindByID(f.ctx, f.siteID)
	require.NoError(t, err)
	assert.Empty(t, s.Domain)

	all, err := f.records.ListBySite(f.ctx, f.siteID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusDisconnected, all[0].Status)
}

func TestDisconnect_WithoutDomainIsValidationError(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Disconnect(f.ctx, &models.DisconnectDomainRequest{SiteID: f.siteID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRetryBinding_VerifiedActivatesParkedRecord(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Connect(f.ctx, &models.ConnectDomainRequest{Domain: "eigen.nl", SiteID: f.siteID})
	require.NoError(t, err)

	f.host.verified = true
	resp, err := f.svc.RetryBinding(f.ctx, &models.RetryBindingRequest{SiteID: f.siteID})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.Verified)

	rec, err := f.records.FindActiveBySite(f.ctx, f.siteID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, rec.Status)
}

func TestRetryBinding_IsRepeatable(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Connect(f.ctx, &models.ConnectDomainRequest{Domain: "eigen.nl", SiteID: f.siteID})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		resp, err := f.svc.RetryBinding(f.ctx, &models.RetryBindingRequest{SiteID: f.siteID})
		require.NoError(t, err)
		assert.True(t, resp.Success)
	}
}

func TestRetryBinding_WithoutDomainIsValidationError(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RetryBinding(f.ctx, &models.RetryBindingRequest{SiteID: f.siteID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCheckDomain_AttachesPricing(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CheckDomain(f.ctx, &models.CheckDomainRequest{Domain: "mijnzorg.nl"})
	require.NoError(t, err)

	require.NotNil(t, result.Available)
	assert.True(t, *result.Available)
	assert.Equal(t, ".nl", result.TLD)
	assert.Equal(t, 1250, result.Price)
	assert.Equal(t, "€12,50/jaar", result.PriceFormatted)
}

func TestSuggest_RanksAvailableFirst(t *testing.T) {
	f := newFixture(t)
	f.reg.statuses["lisadevries.nl"] = registrar.StatusNotFree

	resp, err := f.svc.Suggest(f.ctx, &models.SuggestionsRequest{Naam: "Lisa de Vries", Beroep: "verpleegkundige"})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Suggestions)
	assert.LessOrEqual(t, len(resp.Suggestions), 20)
	assert.Positive(t, resp.AvailableCount)

	first := resp.Suggestions[0]
	require.NotNil(t, first.Available)
	assert.True(t, *first.Available)

	last := resp.Suggestions[len(resp.Suggestions)-1]
	require.NotNil(t, last.Available)
	assert.False(t, *last.Available, "the taken domain ranks last")
}

func TestSuggest_RegistrarDownDegradesGracefully(t *testing.T) {
	f := newFixture(t)
	f.reg.checkErr = upstream.FromTransport("registrar", context.DeadlineExceeded)

	resp, err := f.svc.Suggest(f.ctx, &models.SuggestionsRequest{Naam: "Lisa de Vries", Beroep: "verpleegkundige"})
	require.NoError(t, err, "suggestions must survive a registrar outage")

	require.NotEmpty(t, resp.Suggestions)
	assert.Zero(t, resp.AvailableCount)
	for _, sug := range resp.Suggestions {
		assert.Nil(t, sug.Available)
	}
}

func TestSingleActiveRecordInvariant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(f.ctx, &models.RegisterDomainRequest{Domain: "eerste.nl", SiteID: f.siteID})
	require.NoError(t, err)

	_, err = f.svc.Disconnect(f.ctx, &models.DisconnectDomainRequest{SiteID: f.siteID})
	require.NoError(t, err)

	_, err = f.svc.Register(f.ctx, &models.RegisterDomainRequest{Domain: "tweede.nl", SiteID: f.siteID})
	require.NoError(t, err)

	all, err := f.records.ListBySite(f.ctx, f.siteID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active := 0
	for _, rec := range all {
		if !rec.Status.IsTerminal() {
			active++
		}
	}
	assert.Equal(t, 1, active)
}
