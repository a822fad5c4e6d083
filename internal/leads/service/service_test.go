package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"inmo24x7_backend/internal/leads/repository"
	"inmo24x7_backend/internal/session"
	"inmo24x7_backend/platform/apperr"
	"inmo24x7_backend/platform/logger"
)

type fakeRepo struct {
	leads     map[uuid.UUID]repository.Lead
	createErr error
	updates   []repository.UpdateLeadParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: make(map[uuid.UUID]repository.Lead)}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	if f.createErr != nil {
		return repository.Lead{}, f.createErr
	}
	lead := repository.Lead{
		ID:             uuid.New(),
		TenantID:       params.TenantID,
		VisitorID:      params.VisitorID,
		SourceType:     params.SourceType,
		Operacion:      params.Operacion,
		Zona:           params.Zona,
		PresupuestoMax: params.PresupuestoMax,
		Nombre:         params.Nombre,
		Contacto:       params.Contacto,
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateLeadParams) error {
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.updates = append(f.updates, params)
	if params.Operacion != nil {
		lead.Operacion = params.Operacion
	}
	if params.Zona != nil {
		lead.Zona = params.Zona
	}
	if params.PresupuestoMax != nil {
		lead.PresupuestoMax = params.PresupuestoMax
	}
	if params.Nombre != nil {
		lead.Nombre = params.Nombre
	}
	if params.Contacto != nil {
		lead.Contacto = params.Contacto
	}
	if params.Summary != nil {
		lead.Summary = params.Summary
	}
	f.leads[id] = lead
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) GetByVisitor(_ context.Context, visitorID string, _ *uuid.UUID) (repository.Lead, error) {
	for _, lead := range f.leads {
		if lead.VisitorID == visitorID {
			return lead, nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, tenantID uuid.UUID, sourceType string, _ int) ([]repository.Lead, error) {
	var out []repository.Lead
	for _, lead := range f.leads {
		if lead.TenantID != tenantID {
			continue
		}
		if sourceType != "" && lead.SourceType != sourceType {
			continue
		}
		out = append(out, lead)
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

var testTenant = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func newTestService(repo repository.LeadsRepository) *Service {
	return New(repo, logger.New("test"))
}

func TestLoadOrCreate_ReturnsExistingLeadUnchanged(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	existing := uuid.New()

	id, err := svc.LoadOrCreate(context.Background(), "visitor-1", testTenant, "web_chat",
		session.LeadData{Operacion: "venta", Zona: "Palermo", PresupuestoMax: 1}, &existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == nil || *id != existing {
		t.Fatalf("expected existing id returned, got %v", id)
	}
	if len(repo.leads) != 0 {
		t.Fatalf("expected no new lead created, got %d", len(repo.leads))
	}
}

func TestLoadOrCreate_DoesNothingWhileUnqualified(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	id, err := svc.LoadOrCreate(context.Background(), "visitor-1", testTenant, "web_chat",
		session.LeadData{Zona: "Palermo", Nombre: "Ana"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != nil {
		t.Fatalf("expected nil id for unqualified data, got %v", id)
	}
	if len(repo.leads) != 0 {
		t.Fatalf("expected no lead created, got %d", len(repo.leads))
	}
}

func TestLoadOrCreate_CreatesOnceQualified(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	id, err := svc.LoadOrCreate(context.Background(), "visitor-1", testTenant, "web_chat",
		session.LeadData{Operacion: "venta", Zona: "Palermo", PresupuestoMax: 120000000}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == nil {
		t.Fatalf("expected lead created")
	}

	lead := repo.leads[*id]
	if lead.VisitorID != "visitor-1" || lead.SourceType != "web_chat" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if lead.Operacion == nil || *lead.Operacion != "venta" {
		t.Fatalf("expected operacion persisted, got %+v", lead.Operacion)
	}
	if lead.PresupuestoMax == nil || *lead.PresupuestoMax != 120000000 {
		t.Fatalf("expected presupuesto persisted, got %+v", lead.PresupuestoMax)
	}
}

func TestLoadOrCreate_NormalizesContactPhone(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	id, err := svc.LoadOrCreate(context.Background(), "visitor-1", testTenant, "web_chat",
		session.LeadData{Operacion: "venta", Zona: "Palermo", PresupuestoMax: 1, Contacto: "11 4444-5555"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lead := repo.leads[*id]
	if lead.Contacto == nil || *lead.Contacto != "+541144445555" {
		t.Fatalf("expected normalized phone, got %+v", lead.Contacto)
	}
}

func TestLoadOrCreate_PropagatesCreateErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("connection refused")
	svc := newTestService(repo)

	_, err := svc.LoadOrCreate(context.Background(), "visitor-1", testTenant, "web_chat",
		session.LeadData{Operacion: "venta", Zona: "Palermo", PresupuestoMax: 1}, nil)
	if err == nil {
		t.Fatalf("expected error propagated")
	}
}

func TestApplyUpdate_WritesOnlyProvidedFields(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	id, err := svc.LoadOrCreate(context.Background(), "visitor-1", testTenant, "web_chat",
		session.LeadData{Operacion: "venta", Zona: "Palermo", PresupuestoMax: 1}, nil)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := svc.ApplyUpdate(context.Background(), *id, session.LeadData{Nombre: "Ana"}, ""); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	patch := repo.updates[len(repo.updates)-1]
	if patch.Nombre == nil || *patch.Nombre != "Ana" {
		t.Fatalf("expected nombre in patch, got %+v", patch.Nombre)
	}
	if patch.Zona != nil || patch.Summary != nil {
		t.Fatalf("expected absent fields omitted from patch, got %+v", patch)
	}

	lead := repo.leads[*id]
	if lead.Zona == nil || *lead.Zona != "Palermo" {
		t.Fatalf("expected zona untouched, got %+v", lead.Zona)
	}
}

func TestApplyUpdate_StoresSummaryVerbatim(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	id, err := svc.LoadOrCreate(context.Background(), "visitor-1", testTenant, "web_chat",
		session.LeadData{Operacion: "venta", Zona: "Palermo", PresupuestoMax: 1}, nil)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	summary := "Motivo: quiere visitar. Busca venta en Palermo."
	if err := svc.ApplyUpdate(context.Background(), *id, session.LeadData{}, summary); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	lead := repo.leads[*id]
	if lead.Summary == nil || *lead.Summary != summary {
		t.Fatalf("expected summary stored verbatim, got %+v", lead.Summary)
	}
}

func TestGetByID_MapsMissingLeadToNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.GetByID(context.Background(), testTenant, uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found kind, got %v", err)
	}
}

func TestGetByID_HidesLeadsFromOtherTenants(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	id, err := svc.LoadOrCreate(context.Background(), "visitor-1", testTenant, "web_chat",
		session.LeadData{Operacion: "venta", Zona: "Palermo", PresupuestoMax: 1}, nil)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	otherTenant := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	_, err = svc.GetByID(context.Background(), otherTenant, *id)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for foreign tenant, got %v", err)
	}
}

func TestDelete_MapsMissingLeadToNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	err := svc.Delete(context.Background(), testTenant, uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found kind, got %v", err)
	}
}
