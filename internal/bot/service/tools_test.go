package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inmo24x7_backend/internal/catalog/loader"
	catalogservice "inmo24x7_backend/internal/catalog/service"
	"inmo24x7_backend/internal/session"
	"inmo24x7_backend/platform/ai/openaichat"
	"inmo24x7_backend/platform/logger"
)

type fakeLifecycle struct {
	created    []session.LeadData
	updates    []string
	nextLeadID *uuid.UUID
}

func (f *fakeLifecycle) LoadOrCreate(_ context.Context, _ string, _ uuid.UUID, _ string, data session.LeadData, existing *uuid.UUID) (*uuid.UUID, error) {
	if existing != nil {
		return existing, nil
	}
	if !data.IsQualified() {
		return nil, nil
	}
	f.created = append(f.created, data)
	if f.nextLeadID == nil {
		id := uuid.New()
		f.nextLeadID = &id
	}
	return f.nextLeadID, nil
}

func (f *fakeLifecycle) ApplyUpdate(_ context.Context, _ uuid.UUID, _ session.LeadData, summary string) error {
	f.updates = append(f.updates, summary)
	return nil
}

var testTenant = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func testCatalog() *catalogservice.Service {
	return catalogservice.NewWithProperties([]loader.Property{
		{ID: "ZP-000001", Operacion: "venta", Zona: "Palermo Soho", Precio: 110000000, Titulo: "Depto Soho", Link: "https://example.com/1", Disponible: true},
		{ID: "ZP-000002", Operacion: "venta", Zona: "Palermo Hollywood", Precio: 155000000, Titulo: "Depto Hollywood", Link: "https://example.com/2", Disponible: true},
	}, nil)
}

func newTestDispatcher(lifecycle *fakeLifecycle) *Dispatcher {
	return NewDispatcher(testCatalog(), lifecycle, logger.New("test"))
}

func toolCall(id, name, args string) openaichat.ToolCall {
	return openaichat.ToolCall{
		ID:   id,
		Type: "function",
		Function: openaichat.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestExecute_ResultsKeyedByCallIDInOrder(t *testing.T) {
	dispatcher := newTestDispatcher(&fakeLifecycle{})
	sess := session.NewSession("user-1")

	results, _ := dispatcher.Execute(context.Background(), &sess, testTenant, "web_chat", []openaichat.ToolCall{
		toolCall("call_b", toolContact, `{"nombre":"Ana"}`),
		toolCall("call_a", toolSearch, `{"operacion":"venta","zona":"Palermo","presupuestoMax":120000000}`),
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ToolCallID != "call_b" || results[1].ToolCallID != "call_a" {
		t.Fatalf("expected results in call order keyed by id, got %q then %q", results[0].ToolCallID, results[1].ToolCallID)
	}
	if results[1].Name != toolSearch {
		t.Fatalf("expected tool name carried on result, got %q", results[1].Name)
	}
}

func TestExecute_SearchReturnsMatchingListings(t *testing.T) {
	dispatcher := newTestDispatcher(&fakeLifecycle{})
	sess := session.NewSession("user-1")

	results, _ := dispatcher.Execute(context.Background(), &sess, testTenant, "web_chat", []openaichat.ToolCall{
		toolCall("call_1", toolSearch, `{"operacion":"venta","zona":"palermo soho","presupuestoMax":120000000}`),
	})

	var payload struct {
		Results []searchResultItem `json:"results"`
	}
	if err := json.Unmarshal([]byte(results[0].Content), &payload); err != nil {
		t.Fatalf("result content is not JSON: %v", err)
	}
	if len(payload.Results) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(payload.Results))
	}
	if payload.Results[0].Titulo != "Depto Soho" {
		t.Fatalf("unexpected listing: %+v", payload.Results[0])
	}
}

func TestExecute_SearchMergesArgsIntoLeadData(t *testing.T) {
	lifecycle := &fakeLifecycle{}
	dispatcher := newTestDispatcher(lifecycle)
	sess := session.NewSession("user-1")
	sess.LeadData.Nombre = "Ana"

	dispatcher.Execute(context.Background(), &sess, testTenant, "web_chat", []openaichat.ToolCall{
		toolCall("call_1", toolSearch, `{"operacion":"Venta","zona":"Palermo","presupuestoMax":120000000}`),
	})

	if sess.LeadData.Operacion != "venta" {
		t.Fatalf("expected operacion lowercased and merged, got %q", sess.LeadData.Operacion)
	}
	if sess.LeadData.Zona != "Palermo" || sess.LeadData.PresupuestoMax != 120000000 {
		t.Fatalf("expected search args merged, got %+v", sess.LeadData)
	}
	if sess.LeadData.Nombre != "Ana" {
		t.Fatalf("expected existing fields preserved, got %+v", sess.LeadData)
	}
}

func TestExecute_QualifiedSearchCreatesLeadOnce(t *testing.T) {
	lifecycle := &fakeLifecycle{}
	dispatcher := newTestDispatcher(lifecycle)
	sess := session.NewSession("user-1")

	calls := []openaichat.ToolCall{
		toolCall("call_1", toolSearch, `{"operacion":"venta","zona":"Palermo","presupuestoMax":120000000}`),
	}
	dispatcher.Execute(context.Background(), &sess, testTenant, "web_chat", calls)
	dispatcher.Execute(context.Background(), &sess, testTenant, "web_chat", calls)

	if len(lifecycle.created) != 1 {
		t.Fatalf("expected exactly one lead created, got %d", len(lifecycle.created))
	}
	if sess.LeadID == nil {
		t.Fatalf("expected lead id attached to session")
	}
}

func TestExecute_InvalidArgumentsYieldErrorResultWithoutFailingBatch(t *testing.T) {
	dispatcher := newTestDispatcher(&fakeLifecycle{})
	sess := session.NewSession("user-1")

	results, _ := dispatcher.Execute(context.Background(), &sess, testTenant, "web_chat", []openaichat.ToolCall{
		toolCall("call_1", toolSearch, `{"presupuestoMax":"mucho"}`),
		toolCall("call_2", toolContact, `{"nombre":"Ana","contacto":"ana@example.com"}`),
	})

	if len(results) != 2 {
		t.Fatalf("expected both calls to produce results, got %d", len(results))
	}
	if !strings.Contains(results[0].Content, "error") {
		t.Fatalf("expected error payload for bad args, got %q", results[0].Content)
	}
	if results[1].Content != `{"ok":true}` {
		t.Fatalf("expected second call unaffected, got %q", results[1].Content)
	}
	if sess.LeadData.Nombre != "Ana" {
		t.Fatalf("expected contact merged despite earlier failure, got %+v", sess.LeadData)
	}
}

func TestExecute_UnknownToolIsSkipped(t *testing.T) {
	dispatcher := newTestDispatcher(&fakeLifecycle{})
	sess := session.NewSession("user-1")

	results, _ := dispatcher.Execute(context.Background(), &sess, testTenant, "web_chat", []openaichat.ToolCall{
		toolCall("call_1", "reservarVisita", `{}`),
		toolCall("call_2", toolContact, `{"nombre":"Ana"}`),
	})

	if len(results) != 1 {
		t.Fatalf("expected unknown tool to produce no entry, got %d results", len(results))
	}
	if results[0].ToolCallID != "call_2" {
		t.Fatalf("expected only the known call's result, got %q", results[0].ToolCallID)
	}
}

func TestExecute_HandoffStoresModelSummaryVerbatim(t *testing.T) {
	lifecycle := &fakeLifecycle{}
	dispatcher := newTestDispatcher(lifecycle)
	sess := session.NewSession("user-1")
	sess.LeadData = session.LeadData{
		Operacion:      "venta",
		Zona:           "Palermo",
		PresupuestoMax: 120000000,
	}

	results, handoff := dispatcher.Execute(context.Background(), &sess, testTenant, "web_chat", []openaichat.ToolCall{
		toolCall("call_1", toolHandoff, `{"summary":"Quiere coordinar una visita en Palermo"}`),
	})

	if handoff == nil {
		t.Fatalf("expected handoff request")
	}
	if handoff.Summary != "Quiere coordinar una visita en Palermo" {
		t.Fatalf("expected the model's summary verbatim, got %q", handoff.Summary)
	}

	var payload struct {
		OK      bool   `json:"ok"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(results[0].Content), &payload); err != nil {
		t.Fatalf("result content is not JSON: %v", err)
	}
	if !payload.OK || payload.Summary != handoff.Summary {
		t.Fatalf("expected acknowledgment carrying the summary, got %q", results[0].Content)
	}
	if len(lifecycle.updates) == 0 || lifecycle.updates[len(lifecycle.updates)-1] != handoff.Summary {
		t.Fatalf("expected summary persisted on the lead, got %v", lifecycle.updates)
	}
}

func TestExecute_HandoffWithoutSummaryFallsBack(t *testing.T) {
	dispatcher := newTestDispatcher(&fakeLifecycle{})
	sess := session.NewSession("user-1")

	_, handoff := dispatcher.Execute(context.Background(), &sess, testTenant, "web_chat", []openaichat.ToolCall{
		toolCall("call_1", toolHandoff, `{}`),
	})

	if handoff == nil || handoff.Summary != "Lead interesado" {
		t.Fatalf("expected fallback summary, got %+v", handoff)
	}
}
