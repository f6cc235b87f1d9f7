package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "zorgsites/pkg/domain-errors"
)

// DomainStatus is the closed set of states a domain record moves through.
type DomainStatus string

const (
	StatusRequested            DomainStatus = "requested"
	StatusCheckingAvailability DomainStatus = "checking_availability"
	StatusRegistering          DomainStatus = "registering"
	StatusDNSConfiguring       DomainStatus = "dns_configuring"
	StatusActive               DomainStatus = "active"
	StatusFailed               DomainStatus = "failed"
	StatusDisconnected         DomainStatus = "disconnected"
)

// forwardTransitions lists the allowed forward step per state. The terminal
// states failed and disconnected are additionally reachable from every
// non-terminal state.
var forwardTransitions = map[DomainStatus]DomainStatus{
	StatusRequested:            StatusCheckingAvailability,
	StatusCheckingAvailability: StatusRegistering,
	StatusRegistering:          StatusDNSConfiguring,
	StatusDNSConfiguring:       StatusActive,
}

// IsTerminal reports whether the status admits no further transitions.
func (s DomainStatus) IsTerminal() bool {
	return s == StatusFailed || s == StatusDisconnected
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Transitions are monotonic forward; failed and disconnected are reachable
// from any non-terminal state.
func (s DomainStatus) CanTransitionTo(next DomainStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusFailed || next == StatusDisconnected {
		return true
	}
	return forwardTransitions[s] == next
}

func (s DomainStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusCheckingAvailability, StatusRegistering,
		StatusDNSConfiguring, StatusActive, StatusFailed, StatusDisconnected:
		return true
	}
	return false
}

// AcquisitionMode distinguishes domains purchased through the registrar from
// domains the user already owns elsewhere.
type AcquisitionMode string

const (
	ModeRegistered AcquisitionMode = "registered"
	ModeConnected  AcquisitionMode = "connected"
)

// DomainRecord is the unit of work for the acquisition pipeline.
//
// Invariants:
//   - Domain is fully qualified, lowercase, without a trailing dot
//   - at most one record per site is in a non-terminal state
//   - a domain held by one site cannot be claimed by another while the
//     first record is non-terminal
//   - records are never deleted; disconnect sets a terminal status so the
//     audit history survives
type DomainRecord struct {
	ID              uuid.UUID       `json:"id"`
	SiteID          uuid.UUID       `json:"site_id"`
	Domain          string          `json:"domain"`
	TLD             string          `json:"tld"`
	AcquisitionMode AcquisitionMode `json:"acquisition_mode"`
	Status          DomainStatus    `json:"status"`

	// Price and cost apply to registered mode only.
	PriceCents int `json:"price_cents,omitempty"`
	CostCents  int `json:"cost_cents,omitempty"`

	DNSConfigured bool `json:"dns_configured"`

	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// LastError keeps the most recent failure detail for operator follow-up.
	LastError string `json:"-"`
}

// NewDomainRecord constructs a record at the pipeline's entry state for the
// given mode: requested for registered domains, dns_configuring for
// connected ones (the user configures DNS on their own registrar).
func NewDomainRecord(siteID uuid.UUID, domain, tld string, mode AcquisitionMode, now time.Time) *DomainRecord {
	status := StatusRequested
	if mode == ModeConnected {
		status = StatusDNSConfiguring
	}
	return &DomainRecord{
		ID:              uuid.New(),
		SiteID:          siteID,
		Domain:          domain,
		TLD:             tld,
		AcquisitionMode: mode,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Advance moves the record to next after checking the transition is legal.
func (r *DomainRecord) Advance(next DomainStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeConflict, "domain record cannot move from %s to %s", r.Status, next)
	}
	r.Status = next
	r.UpdatedAt = now
	return nil
}

// MarkFailed records a terminal failure with the underlying detail. Calling
// it on an already-terminal record is a no-op so late pipeline errors do not
// clobber an earlier terminal state.
func (r *DomainRecord) MarkFailed(detail string, now time.Time) {
	if r.Status.IsTerminal() {
		return
	}
	r.Status = StatusFailed
	r.LastError = detail
	r.UpdatedAt = now
}

// MarkDisconnected sets the terminal disconnected state.
func (r *DomainRecord) MarkDisconnected(now time.Time) error {
	return r.Advance(StatusDisconnected, now)
}
