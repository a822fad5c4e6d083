package transport

import (
	"time"

	"github.com/google/uuid"

	"inmo24x7_backend/internal/leads/repository"
)

// ListLeadsRequest filters the lead list.
type ListLeadsRequest struct {
	SourceType string `form:"sourceType" validate:"omitempty,oneof=web_chat whatsapp form backoffice"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=200"`
}

// LeadResponse is the wire representation of a lead.
type LeadResponse struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenantId"`
	VisitorID      string    `json:"visitorId"`
	SourceType     string    `json:"sourceType"`
	Operacion      *string   `json:"operacion"`
	Zona           *string   `json:"zona"`
	PresupuestoMax *float64  `json:"presupuestoMax"`
	Nombre         *string   `json:"nombre"`
	Contacto       *string   `json:"contacto"`
	Summary        *string   `json:"summary"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

// LeadListResponse wraps the lead list.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// ToLeadResponse maps a repository lead to its wire form.
func ToLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:             lead.ID,
		TenantID:       lead.TenantID,
		VisitorID:      lead.VisitorID,
		SourceType:     lead.SourceType,
		Operacion:      lead.Operacion,
		Zona:           lead.Zona,
		PresupuestoMax: lead.PresupuestoMax,
		Nombre:         lead.Nombre,
		Contacto:       lead.Contacto,
		Summary:        lead.Summary,
		CreatedAt:      lead.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      lead.UpdatedAt.Format(time.RFC3339),
	}
}
