// Package session provides per-user conversation state storage.
package session

import (
	"context"

	"github.com/google/uuid"
)

// MaxHistory bounds the retained transcript to the most recent turns.
// Older turns are silently discarded (sliding window, not summarized).
const MaxHistory = 10

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single transcript entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LeadData is the partially-captured qualification record accumulated from
// tool calls across turns. Zero values mean "not captured yet".
type LeadData struct {
	Operacion      string  `json:"operacion,omitempty"`
	Zona           string  `json:"zona,omitempty"`
	PresupuestoMax float64 `json:"presupuestoMax,omitempty"`
	Nombre         string  `json:"nombre,omitempty"`
	Contacto       string  `json:"contacto,omitempty"`
}

// Merge copies the provided (non-zero) fields of other into d, leaving the
// rest untouched.
func (d *LeadData) Merge(other LeadData) {
	if other.Operacion != "" {
		d.Operacion = other.Operacion
	}
	if other.Zona != "" {
		d.Zona = other.Zona
	}
	if other.PresupuestoMax > 0 {
		d.PresupuestoMax = other.PresupuestoMax
	}
	if other.Nombre != "" {
		d.Nombre = other.Nombre
	}
	if other.Contacto != "" {
		d.Contacto = other.Contacto
	}
}

// IsQualified reports whether enough data has been captured to persist a lead:
// operation and zone set, and a positive budget.
func (d LeadData) IsQualified() bool {
	return d.Operacion != "" && d.Zona != "" && d.PresupuestoMax > 0
}

// Session is the per-user conversational and qualification state retained
// across turns.
type Session struct {
	UserID   string     `json:"userId"`
	History  []Turn     `json:"history"`
	LeadData LeadData   `json:"leadData"`
	LeadID   *uuid.UUID `json:"leadId,omitempty"`
}

// AppendTurn adds a turn to the history, keeping only the most recent
// MaxHistory entries.
func (s *Session) AppendTurn(role, content string) {
	s.History = append(s.History, Turn{Role: role, Content: content})
	if len(s.History) > MaxHistory {
		s.History = s.History[len(s.History)-MaxHistory:]
	}
}

// Store is keyed storage of sessions. Load never fails with "not found":
// unknown users get a freshly initialized session. Save is last-writer-wins;
// turn serialization for a user is the orchestrator's responsibility.
type Store interface {
	Load(ctx context.Context, userID string) (Session, error)
	Save(ctx context.Context, userID string, sess Session) error
	Reset(ctx context.Context, userID string) error
}

// NewSession returns an empty session for the given user.
func NewSession(userID string) Session {
	return Session{UserID: userID, History: []Turn{}}
}
