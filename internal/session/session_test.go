package session

import "testing"

func TestAppendTurn_KeepsOnlyMostRecentTurns(t *testing.T) {
	sess := NewSession("user-1")
	for i := 0; i < MaxHistory+5; i++ {
		sess.AppendTurn(RoleUser, "mensaje")
	}

	if len(sess.History) != MaxHistory {
		t.Fatalf("expected history capped at %d, got %d", MaxHistory, len(sess.History))
	}
}

func TestAppendTurn_DropsOldestFirst(t *testing.T) {
	sess := NewSession("user-1")
	sess.AppendTurn(RoleUser, "primero")
	for i := 0; i < MaxHistory; i++ {
		sess.AppendTurn(RoleAssistant, "relleno")
	}

	for _, turn := range sess.History {
		if turn.Content == "primero" {
			t.Fatalf("expected oldest turn to be discarded")
		}
	}
}

func TestLeadDataMerge_OnlyOverwritesProvidedFields(t *testing.T) {
	data := LeadData{Operacion: "venta", Zona: "Palermo", Nombre: "Ana"}
	data.Merge(LeadData{Zona: "Belgrano", PresupuestoMax: 100000000})

	if data.Operacion != "venta" {
		t.Fatalf("expected operacion untouched, got %q", data.Operacion)
	}
	if data.Zona != "Belgrano" {
		t.Fatalf("expected zona overwritten, got %q", data.Zona)
	}
	if data.PresupuestoMax != 100000000 {
		t.Fatalf("expected presupuesto set, got %f", data.PresupuestoMax)
	}
	if data.Nombre != "Ana" {
		t.Fatalf("expected nombre untouched, got %q", data.Nombre)
	}
}

func TestIsQualified_RequiresOperationZoneAndPositiveBudget(t *testing.T) {
	cases := []struct {
		name string
		data LeadData
		want bool
	}{
		{"all fields", LeadData{Operacion: "venta", Zona: "Palermo", PresupuestoMax: 1}, true},
		{"missing operacion", LeadData{Zona: "Palermo", PresupuestoMax: 1}, false},
		{"missing zona", LeadData{Operacion: "venta", PresupuestoMax: 1}, false},
		{"zero budget", LeadData{Operacion: "venta", Zona: "Palermo"}, false},
		{"contact only", LeadData{Nombre: "Ana", Contacto: "+5491144445555"}, false},
	}

	for _, tc := range cases {
		if got := tc.data.IsQualified(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
