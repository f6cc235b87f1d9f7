package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zorgsites/internal/domains/models"
	dErrors "zorgsites/pkg/domain-errors"
	"zorgsites/pkg/testutil"
)

// stubService returns canned responses; the handler tests only cover
// decoding, validation and error mapping.
type stubService struct {
	checkResult *models.DomainCheckResult
	registerErr error

	lastRegister *models.RegisterDomainRequest
}

func (s *stubService) CheckDomain(_ context.Context, req *models.CheckDomainRequest) (*models.DomainCheckResult, error) {
	if s.checkResult != nil {
		return s.checkResult, nil
	}
	available := true
	return &models.DomainCheckResult{
		Domain:         req.Domain,
		Available:      &available,
		Status:         "free",
		TLD:            ".nl",
		Price:          1250,
		PriceFormatted: "€12,50/jaar",
	}, nil
}

func (s *stubService) Suggest(_ context.Context, _ *models.SuggestionsRequest) (*models.SuggestionsResponse, error) {
	return &models.SuggestionsResponse{Suggestions: []models.DomainCheckResult{}}, nil
}

func (s *stubService) Register(_ context.Context, req *models.RegisterDomainRequest) (*models.RegisterDomainResponse, error) {
	s.lastRegister = req
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &models.RegisterDomainResponse{Success: true, Domain: req.Domain, Status: "active"}, nil
}

func (s *stubService) Connect(_ context.Context, req *models.ConnectDomainRequest) (*models.ConnectDomainResponse, error) {
	return &models.ConnectDomainResponse{Success: true, Domain: req.Domain}, nil
}

func (s *stubService) Disconnect(_ context.Context, _ *models.DisconnectDomainRequest) (*models.DisconnectDomainResponse, error) {
	return &models.DisconnectDomainResponse{Success: true}, nil
}

func (s *stubService) RetryBinding(_ context.Context, _ *models.RetryBindingRequest) (*models.RetryBindingResponse, error) {
	return &models.RetryBindingResponse{Success: true, Verified: true}, nil
}

func newRouter(svc *stubService) http.Handler {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func TestCheck_NormalizesDomain(t *testing.T) {
	svc := &stubService{}
	router := newRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/domains/check", map[string]string{
		"domain": "  https://MijnZorg.NL/ ",
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[models.DomainCheckResult](t, rr)
	assert.Equal(t, "mijnzorg.nl", resp.Domain)
	assert.Equal(t, "€12,50/jaar", resp.PriceFormatted)
}

func TestCheck_RejectsInvalidDomain(t *testing.T) {
	router := newRouter(&stubService{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/domains/check", map[string]string{
		"domain": "not a domain",
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestCheck_RejectsMalformedJSON(t *testing.T) {
	router := newRouter(&stubService{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/domains/check", nil)
	req.Body = http.NoBody
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestRegister_PassesNormalizedRequest(t *testing.T) {
	svc := &stubService{}
	router := newRouter(svc)
	siteID := uuid.New()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/domains/register", map[string]any{
		"domain": "MijnZorg.nl",
		"siteId": siteID,
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	require.NotNil(t, svc.lastRegister)
	assert.Equal(t, "mijnzorg.nl", svc.lastRegister.Domain)
	assert.Equal(t, siteID, svc.lastRegister.SiteID)
}

func TestRegister_MissingSiteID(t *testing.T) {
	router := newRouter(&stubService{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/domains/register", map[string]any{
		"domain": "mijnzorg.nl",
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestRegister_MapsConflictTo409(t *testing.T) {
	svc := &stubService{registerErr: dErrors.New(dErrors.CodeConflict, "domain is no longer available")}
	router := newRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/domains/register", map[string]any{
		"domain": "bezet.nl",
		"siteId": uuid.New(),
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	resp := testutil.UnmarshalErrorResponse(t, rr)
	assert.Equal(t, "domain is no longer available", resp["error_description"])
}

func TestRegister_MapsUpstreamOutageTo503(t *testing.T) {
	svc := &stubService{registerErr: dErrors.New(dErrors.CodeUnavailable, "domain registration failed")}
	router := newRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/domains/register", map[string]any{
		"domain": "pech.nl",
		"siteId": uuid.New(),
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusServiceUnavailable, "unavailable")
}

func TestDisconnectAndRetryRoutes(t *testing.T) {
	router := newRouter(&stubService{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/domains/disconnect", map[string]any{
		"siteId": uuid.New(),
	})
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/domains/retry-vercel", map[string]any{
		"siteId": uuid.New(),
	})
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[models.RetryBindingResponse](t, rr)
	assert.True(t, resp.Verified)
}
