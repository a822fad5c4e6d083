package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	catalogservice "inmo24x7_backend/internal/catalog/service"
	"inmo24x7_backend/internal/session"
	"inmo24x7_backend/platform/ai/openaichat"
	"inmo24x7_backend/platform/logger"
)

// Tool names as declared to the model.
const (
	toolSearch  = "buscarPropiedades"
	toolContact = "guardarContacto"
	toolHandoff = "derivarAHumano"
)

// SearchArgs are the arguments of buscarPropiedades.
type SearchArgs struct {
	Operacion      string  `json:"operacion"`
	Zona           string  `json:"zona"`
	PresupuestoMax float64 `json:"presupuestoMax"`
}

// ContactArgs are the arguments of guardarContacto.
type ContactArgs struct {
	Nombre   string `json:"nombre"`
	Contacto string `json:"contacto"`
}

// HandoffArgs are the arguments of derivarAHumano.
type HandoffArgs struct {
	Summary string `json:"summary"`
}

// ToolResult is one executed call's outcome, keyed by the model-issued call id
// so the follow-up completion can match results to requests regardless of order.
type ToolResult struct {
	ToolCallID string
	Name       string
	Content    string
}

// HandoffRequest signals that the turn should end with a human-agent handoff.
type HandoffRequest struct {
	Summary string
}

// Declarations returns the function declarations advertised to the model.
func Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        toolSearch,
			Description: "Busca propiedades disponibles que coincidan con la operación, la zona y el presupuesto máximo del visitante. Devuelve hasta 3 resultados ordenados por precio.",
			ParametersJsonSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"operacion": map[string]any{
						"type":        "string",
						"enum":        []string{"venta", "alquiler"},
						"description": "Tipo de operación que busca el visitante.",
					},
					"zona": map[string]any{
						"type":        "string",
						"description": "Barrio o zona de interés, por ejemplo 'Palermo' o 'Zona Norte'.",
					},
					"presupuestoMax": map[string]any{
						"type":        "number",
						"description": "Presupuesto máximo en pesos argentinos.",
					},
				},
				"required": []string{"operacion", "zona", "presupuestoMax"},
			},
		},
		{
			Name:        toolContact,
			Description: "Guarda el nombre y/o el dato de contacto (teléfono o email) del visitante.",
			ParametersJsonSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"nombre": map[string]any{
						"type":        "string",
						"description": "Nombre del visitante.",
					},
					"contacto": map[string]any{
						"type":        "string",
						"description": "Teléfono o email del visitante.",
					},
				},
			},
		},
		{
			Name:        toolHandoff,
			Description: "Deriva la conversación a un asesor humano. Usar cuando el visitante lo pide o cuando la consulta excede al asistente.",
			ParametersJsonSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"summary": map[string]any{
						"type":        "string",
						"description": "Resumen breve de lo que busca el visitante y por qué se deriva.",
					},
				},
				"required": []string{"summary"},
			},
		},
	}
}

// LeadLifecycle is the slice of the leads service the dispatcher needs.
type LeadLifecycle interface {
	LoadOrCreate(ctx context.Context, visitorID string, tenantID uuid.UUID, sourceType string, data session.LeadData, existingLeadID *uuid.UUID) (*uuid.UUID, error)
	ApplyUpdate(ctx context.Context, leadID uuid.UUID, data session.LeadData, summary string) error
}

// Dispatcher executes model-issued tool calls against the catalog and the
// session's qualification state.
type Dispatcher struct {
	catalog *catalogservice.Service
	leads   LeadLifecycle
	log     *logger.Logger
}

// NewDispatcher creates a tool dispatcher.
func NewDispatcher(catalog *catalogservice.Service, leads LeadLifecycle, log *logger.Logger) *Dispatcher {
	return &Dispatcher{catalog: catalog, leads: leads, log: log}
}

type searchResultItem struct {
	Titulo    string  `json:"titulo"`
	Operacion string  `json:"operacion"`
	Zona      string  `json:"zona"`
	Precio    float64 `json:"precio"`
	Link      string  `json:"link,omitempty"`
}

// Execute runs each call in order and returns one result per known tool call,
// keyed by call id. A call with undecodable arguments yields an error payload
// instead of failing the batch; a call naming an unknown tool is skipped.
// Lead persistence happens as a side effect and never fails the turn.
func (d *Dispatcher) Execute(ctx context.Context, sess *session.Session, tenantID uuid.UUID, sourceType string, calls []openaichat.ToolCall) ([]ToolResult, *HandoffRequest) {
	results := make([]ToolResult, 0, len(calls))
	var handoff *HandoffRequest

	for _, call := range calls {
		name := call.Function.Name
		switch name {
		case toolSearch:
			results = append(results, d.runSearch(ctx, sess, tenantID, sourceType, call))
		case toolContact:
			results = append(results, d.runContact(ctx, sess, tenantID, sourceType, call))
		case toolHandoff:
			result, req := d.runHandoff(ctx, sess, tenantID, sourceType, call)
			results = append(results, result)
			if req != nil {
				handoff = req
			}
		default:
			d.log.Warn("unknown tool requested by model", "tool", name, "callId", call.ID)
		}
	}

	return results, handoff
}

func (d *Dispatcher) runSearch(ctx context.Context, sess *session.Session, tenantID uuid.UUID, sourceType string, call openaichat.ToolCall) ToolResult {
	var args SearchArgs
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		d.log.ToolDispatch(toolSearch, call.ID, false)
		return errorResult(call, "argumentos inválidos para la búsqueda")
	}

	sess.LeadData.Merge(session.LeadData{
		Operacion:      strings.ToLower(strings.TrimSpace(args.Operacion)),
		Zona:           strings.TrimSpace(args.Zona),
		PresupuestoMax: args.PresupuestoMax,
	})
	d.persistLead(ctx, sess, tenantID, sourceType, "")

	properties := d.catalog.Search(catalogservice.SearchParams{
		Operacion:      sess.LeadData.Operacion,
		Zona:           sess.LeadData.Zona,
		PresupuestoMax: sess.LeadData.PresupuestoMax,
	})

	items := make([]searchResultItem, 0, len(properties))
	for _, p := range properties {
		items = append(items, searchResultItem{
			Titulo:    p.Titulo,
			Operacion: p.Operacion,
			Zona:      p.Zona,
			Precio:    p.Precio,
			Link:      p.Link,
		})
	}

	content, _ := json.Marshal(map[string]any{"results": items})
	d.log.ToolDispatch(toolSearch, call.ID, true)
	return ToolResult{ToolCallID: call.ID, Name: toolSearch, Content: string(content)}
}

func (d *Dispatcher) runContact(ctx context.Context, sess *session.Session, tenantID uuid.UUID, sourceType string, call openaichat.ToolCall) ToolResult {
	var args ContactArgs
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		d.log.ToolDispatch(toolContact, call.ID, false)
		return errorResult(call, "argumentos inválidos para guardar el contacto")
	}

	sess.LeadData.Merge(session.LeadData{
		Nombre:   strings.TrimSpace(args.Nombre),
		Contacto: strings.TrimSpace(args.Contacto),
	})
	d.persistLead(ctx, sess, tenantID, sourceType, "")

	payload := map[string]any{"ok": true}
	if sess.LeadID != nil {
		payload["leadId"] = sess.LeadID.String()
	}
	content, _ := json.Marshal(payload)

	d.log.ToolDispatch(toolContact, call.ID, true)
	return ToolResult{ToolCallID: call.ID, Name: toolContact, Content: string(content)}
}

func (d *Dispatcher) runHandoff(ctx context.Context, sess *session.Session, tenantID uuid.UUID, sourceType string, call openaichat.ToolCall) (ToolResult, *HandoffRequest) {
	var args HandoffArgs
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		d.log.ToolDispatch(toolHandoff, call.ID, false)
		return errorResult(call, "argumentos inválidos para la derivación"), nil
	}

	// The model's summary is stored and relayed verbatim.
	summary := strings.TrimSpace(args.Summary)
	if summary == "" {
		summary = "Lead interesado"
	}
	d.persistLead(ctx, sess, tenantID, sourceType, summary)

	content, _ := json.Marshal(map[string]any{"ok": true, "summary": summary})
	d.log.ToolDispatch(toolHandoff, call.ID, true)
	return ToolResult{ToolCallID: call.ID, Name: toolHandoff, Content: string(content)},
		&HandoffRequest{Summary: summary}
}

// EnsureLead runs the lead lifecycle for the session's current state before
// the model is consulted, so a qualified session whose lead creation failed on
// an earlier turn gets another chance. Failures never block the turn.
func (d *Dispatcher) EnsureLead(ctx context.Context, sess *session.Session, tenantID uuid.UUID, sourceType string) {
	d.persistLead(ctx, sess, tenantID, sourceType, "")
}

// persistLead runs the create-once/update-in-place lifecycle for the session.
// Persistence failures are logged and swallowed; the conversation continues.
func (d *Dispatcher) persistLead(ctx context.Context, sess *session.Session, tenantID uuid.UUID, sourceType, summary string) {
	id, err := d.leads.LoadOrCreate(ctx, sess.UserID, tenantID, sourceType, sess.LeadData, sess.LeadID)
	if err != nil {
		d.log.DatabaseError("lead create", err)
		return
	}
	if id == nil {
		return
	}

	if sess.LeadID == nil {
		sess.LeadID = id
		if summary == "" {
			return
		}
	}

	if err := d.leads.ApplyUpdate(ctx, *sess.LeadID, sess.LeadData, summary); err != nil {
		d.log.DatabaseError("lead update", err)
	}
}

func errorResult(call openaichat.ToolCall, message string) ToolResult {
	content, _ := json.Marshal(map[string]string{"error": message})
	return ToolResult{ToolCallID: call.ID, Name: call.Function.Name, Content: string(content)}
}
