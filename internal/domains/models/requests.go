package models

import (
	"strings"

	"github.com/google/uuid"

	"zorgsites/internal/domains/dnsname"
	dErrors "zorgsites/pkg/domain-errors"
)

type CheckDomainRequest struct {
	Domain string `json:"domain"`
}

func (r *CheckDomainRequest) Normalize() {
	if r == nil {
		return
	}
	r.Domain = dnsname.Normalize(r.Domain)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *CheckDomainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if len(r.Domain) > 253 {
		return dErrors.New(dErrors.CodeValidation, "domain must be 253 characters or less")
	}

	if r.Domain == "" {
		return dErrors.New(dErrors.CodeValidation, "domain is required")
	}

	if !dnsname.IsValid(r.Domain) {
		return dErrors.New(dErrors.CodeValidation, "domain is not a valid domain name")
	}

	return nil
}

type SuggestionsRequest struct {
	Naam   string `json:"naam"`
	Beroep string `json:"beroep"`
}

func (r *SuggestionsRequest) Normalize() {
	if r == nil {
		return
	}
	r.Naam = strings.TrimSpace(r.Naam)
	r.Beroep = strings.TrimSpace(r.Beroep)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *SuggestionsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if len(r.Naam) > 128 {
		return dErrors.New(dErrors.CodeValidation, "naam must be 128 characters or less")
	}
	if len(r.Beroep) > 128 {
		return dErrors.New(dErrors.CodeValidation, "beroep must be 128 characters or less")
	}

	if r.Naam == "" {
		return dErrors.New(dErrors.CodeValidation, "naam is required")
	}

	return nil
}

type RegisterDomainRequest struct {
	Domain string    `json:"domain"`
	SiteID uuid.UUID `json:"siteId"`
}

func (r *RegisterDomainRequest) Normalize() {
	if r == nil {
		return
	}
	r.Domain = dnsname.Normalize(r.Domain)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *RegisterDomainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if len(r.Domain) > 253 {
		return dErrors.New(dErrors.CodeValidation, "domain must be 253 characters or less")
	}

	if r.Domain == "" {
		return dErrors.New(dErrors.CodeValidation, "domain is required")
	}
	if r.SiteID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "siteId is required")
	}

	if !dnsname.IsValid(r.Domain) {
		return dErrors.New(dErrors.CodeValidation, "domain is not a valid domain name")
	}

	return nil
}

type ConnectDomainRequest struct {
	Domain string    `json:"domain"`
	SiteID uuid.UUID `json:"siteId"`
}

func (r *ConnectDomainRequest) Normalize() {
	if r == nil {
		return
	}
	r.Domain = dnsname.Normalize(r.Domain)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *ConnectDomainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if len(r.Domain) > 253 {
		return dErrors.New(dErrors.CodeValidation, "domain must be 253 characters or less")
	}

	if r.Domain == "" {
		return dErrors.New(dErrors.CodeValidation, "domain is required")
	}
	if r.SiteID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "siteId is required")
	}

	if !dnsname.IsValid(r.Domain) {
		return dErrors.New(dErrors.CodeValidation, "domain is not a valid domain name")
	}

	return nil
}

type DisconnectDomainRequest struct {
	SiteID uuid.UUID `json:"siteId"`
}

func (r *DisconnectDomainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if r.SiteID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "siteId is required")
	}

	return nil
}

type RetryBindingRequest struct {
	SiteID uuid.UUID `json:"siteId"`
}

func (r *RetryBindingRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if r.SiteID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "siteId is required")
	}

	return nil
}
