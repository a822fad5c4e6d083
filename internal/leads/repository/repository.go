// Package repository persists leads in Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound distinguishes an absent lead from a transport or store failure.
var ErrNotFound = errors.New("lead not found")

// Source channels a lead can originate from.
const (
	SourceWebChat    = "web_chat"
	SourceWhatsApp   = "whatsapp"
	SourceForm       = "form"
	SourceBackoffice = "backoffice"
)

// Lead is the persisted qualification record.
type Lead struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	VisitorID      string
	SourceType     string
	Operacion      *string
	Zona           *string
	PresupuestoMax *float64
	Nombre         *string
	Contacto       *string
	Summary        *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateLeadParams carries the fields for a new lead. Optional qualification
// fields stay nil when not yet captured.
type CreateLeadParams struct {
	TenantID       uuid.UUID
	VisitorID      string
	SourceType     string
	Operacion      *string
	Zona           *string
	PresupuestoMax *float64
	Nombre         *string
	Contacto       *string
}

// UpdateLeadParams is a partial patch; nil fields are left untouched.
type UpdateLeadParams struct {
	Operacion      *string
	Zona           *string
	PresupuestoMax *float64
	Nombre         *string
	Contacto       *string
	Summary        *string
}

// LeadsRepository is the CRUD surface the lifecycle service depends on.
type LeadsRepository interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) error
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	GetByVisitor(ctx context.Context, visitorID string, tenantID *uuid.UUID) (Lead, error)
	List(ctx context.Context, tenantID uuid.UUID, sourceType string, limit int) ([]Lead, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// Repository is the pgx implementation of LeadsRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, tenant_id, visitor_id, source_type, operacion, zona, presupuesto_max, nombre, contacto, summary, created_at, updated_at`

// Create inserts a new lead. Store rejections surface as errors and are never
// retried here.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (tenant_id, visitor_id, source_type, operacion, zona, presupuesto_max, nombre, contacto)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+leadColumns,
		params.TenantID, params.VisitorID, params.SourceType,
		params.Operacion, params.Zona, params.PresupuestoMax, params.Nombre, params.Contacto,
	)
	return scanLead(row)
}

// Update applies a partial patch. A patch with no fields set is a no-op.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) error {
	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Operacion != nil {
		add("operacion", *params.Operacion)
	}
	if params.Zona != nil {
		add("zona", *params.Zona)
	}
	if params.PresupuestoMax != nil {
		add("presupuesto_max", *params.PresupuestoMax)
	}
	if params.Nombre != nil {
		add("nombre", *params.Nombre)
	}
	if params.Contacto != nil {
		add("contacto", *params.Contacto)
	}
	if params.Summary != nil {
		add("summary", *params.Summary)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a single lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// GetByVisitor returns the most recent lead for a visitor, optionally scoped
// to a tenant.
func (r *Repository) GetByVisitor(ctx context.Context, visitorID string, tenantID *uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE visitor_id = $1`
	args := []interface{}{visitorID}
	if tenantID != nil {
		query += ` AND tenant_id = $2`
		args = append(args, *tenantID)
	}
	query += ` ORDER BY created_at DESC LIMIT 1`

	row := r.pool.QueryRow(ctx, query, args...)
	return scanLead(row)
}

// List returns recent leads for a tenant, optionally filtered by source channel.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, sourceType string, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	if sourceType != "" {
		query += ` AND source_type = $2`
		args = append(args, sourceType)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// Delete removes a lead within a tenant.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanLead(row scannable) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.TenantID, &lead.VisitorID, &lead.SourceType,
		&lead.Operacion, &lead.Zona, &lead.PresupuestoMax,
		&lead.Nombre, &lead.Contacto, &lead.Summary,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

var _ LeadsRepository = (*Repository)(nil)
