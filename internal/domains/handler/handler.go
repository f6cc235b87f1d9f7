// Package handler exposes the domains module over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zorgsites/internal/domains/models"
	"zorgsites/pkg/platform/httputil"
	"zorgsites/pkg/requestcontext"
)

// DomainService is the slice of the domains service the handler consumes.
type DomainService interface {
	CheckDomain(ctx context.Context, req *models.CheckDomainRequest) (*models.DomainCheckResult, error)
	Suggest(ctx context.Context, req *models.SuggestionsRequest) (*models.SuggestionsResponse, error)
	Register(ctx context.Context, req *models.RegisterDomainRequest) (*models.RegisterDomainResponse, error)
	Connect(ctx context.Context, req *models.ConnectDomainRequest) (*models.ConnectDomainResponse, error)
	Disconnect(ctx context.Context, req *models.DisconnectDomainRequest) (*models.DisconnectDomainResponse, error)
	RetryBinding(ctx context.Context, req *models.RetryBindingRequest) (*models.RetryBindingResponse, error)
}

type Handler struct {
	svc    DomainService
	logger *slog.Logger
}

func New(svc DomainService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the domain routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/domains", func(r chi.Router) {
		r.Post("/check", h.check)
		r.Post("/suggestions", h.suggestions)
		r.Post("/register", h.register)
		r.Post("/connect", h.connect)
		r.Post("/disconnect", h.disconnect)
		r.Post("/retry-vercel", h.retryBinding)
	})
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CheckDomainRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.svc.CheckDomain(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.SuggestionsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	resp, err := h.svc.Suggest(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.RegisterDomainRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	resp, err := h.svc.Register(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.ConnectDomainRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	resp, err := h.svc.Connect(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.DisconnectDomainRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	resp, err := h.svc.Disconnect(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) retryBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.RetryBindingRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	resp, err := h.svc.RetryBinding(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
