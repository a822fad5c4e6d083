// Package service implements the lead lifecycle: create-once per session,
// update-in-place, and the qualification gate in between.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"inmo24x7_backend/internal/leads/repository"
	"inmo24x7_backend/internal/leads/transport"
	"inmo24x7_backend/internal/session"
	"inmo24x7_backend/platform/apperr"
	"inmo24x7_backend/platform/logger"
	"inmo24x7_backend/platform/phone"
)

// Service provides lead lifecycle management and the read surface.
type Service struct {
	repo repository.LeadsRepository
	log  *logger.Logger
}

// New creates a new leads service.
func New(repo repository.LeadsRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// LoadOrCreate decides whether the session already owns a lead, needs one
// created, or has not captured enough yet.
//
// An existing lead id is returned unchanged, so a session never inserts a
// second record. Otherwise a lead is created only once the qualification
// predicate holds (operation, zone, and a positive budget); until then the
// result is nil without error.
func (s *Service) LoadOrCreate(ctx context.Context, visitorID string, tenantID uuid.UUID, sourceType string, data session.LeadData, existingLeadID *uuid.UUID) (*uuid.UUID, error) {
	if existingLeadID != nil {
		return existingLeadID, nil
	}

	if !data.IsQualified() {
		return nil, nil
	}

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		TenantID:       tenantID,
		VisitorID:      visitorID,
		SourceType:     sourceType,
		Operacion:      optional(data.Operacion),
		Zona:           optional(data.Zona),
		PresupuestoMax: optionalFloat(data.PresupuestoMax),
		Nombre:         optional(data.Nombre),
		Contacto:       optional(phone.NormalizeE164(data.Contacto)),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("lead created", "leadId", lead.ID, "visitorId", visitorID, "source", sourceType)
	return &lead.ID, nil
}

// ApplyUpdate merges the captured fields into the persisted lead. Only fields
// present in data are written; the summary, when non-empty, is stored verbatim.
// An empty patch is a no-op.
func (s *Service) ApplyUpdate(ctx context.Context, leadID uuid.UUID, data session.LeadData, summary string) error {
	params := repository.UpdateLeadParams{
		Operacion:      optional(data.Operacion),
		Zona:           optional(data.Zona),
		PresupuestoMax: optionalFloat(data.PresupuestoMax),
		Nombre:         optional(data.Nombre),
		Contacto:       optional(phone.NormalizeE164(data.Contacto)),
		Summary:        optional(summary),
	}
	return s.repo.Update(ctx, leadID, params)
}

// GetByID fetches a lead for the HTTP surface, scoped to the tenant.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	if lead.TenantID != tenantID {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	return transport.ToLeadResponse(lead), nil
}

// GetByVisitor returns the visitor's most recent lead within the tenant.
func (s *Service) GetByVisitor(ctx context.Context, tenantID uuid.UUID, visitorID string) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByVisitor(ctx, visitorID, &tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	return transport.ToLeadResponse(lead), nil
}

// List returns recent leads for the tenant, optionally filtered by source channel.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, sourceType string, limit int) ([]transport.LeadResponse, error) {
	leads, err := s.repo.List(ctx, tenantID, sourceType, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}

	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, transport.ToLeadResponse(lead))
	}
	return out, nil
}

// Delete removes a lead within the tenant.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.repo.Delete(ctx, tenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete lead", err)
	}
	return nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func optionalFloat(value float64) *float64 {
	if value <= 0 {
		return nil
	}
	return &value
}
