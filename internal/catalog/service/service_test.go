package service

import (
	"testing"

	"inmo24x7_backend/internal/catalog/loader"
)

func testProperties() []loader.Property {
	return []loader.Property{
		{ID: "ZP-000001", Operacion: "venta", Zona: "Palermo Soho", Precio: 120000000, Titulo: "Depto Soho", Disponible: true},
		{ID: "ZP-000002", Operacion: "venta", Zona: "Palermo Hollywood", Precio: 155000000, Titulo: "Depto Hollywood", Disponible: true},
		{ID: "ZP-000003", Operacion: "venta", Zona: "Palermo Botánico", Precio: 90000000, Titulo: "Depto Botánico", Disponible: true},
		{ID: "ZP-000004", Operacion: "venta", Zona: "Palermo Soho", Precio: 110000000, Titulo: "Depto Soho 2", Disponible: true},
		{ID: "ZP-000005", Operacion: "alquiler", Zona: "Palermo Soho", Precio: 450000, Titulo: "Alquiler Soho", Disponible: true},
		{ID: "ZP-000006", Operacion: "venta", Zona: "Belgrano", Precio: 98000000, Titulo: "Depto Belgrano", Disponible: true},
		{ID: "ZP-000007", Operacion: "venta", Zona: "Palermo Soho", Precio: 80000000, Titulo: "No disponible", Disponible: false},
	}
}

func TestSearch_FiltersByOperationZoneAndBudget(t *testing.T) {
	svc := NewWithProperties(testProperties(), nil)

	results := svc.Search(SearchParams{
		Operacion:      "venta",
		Zona:           "palermo",
		PresupuestoMax: 130000000,
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(results))
	}
	for _, p := range results {
		if p.Operacion != "venta" {
			t.Fatalf("expected only venta results, got %q", p.Operacion)
		}
		if p.Precio > 130000000 {
			t.Fatalf("expected prices within budget, got %f", p.Precio)
		}
	}
}

func TestSearch_SortsByPriceAscending(t *testing.T) {
	svc := NewWithProperties(testProperties(), nil)

	results := svc.Search(SearchParams{
		Operacion:      "venta",
		Zona:           "palermo",
		PresupuestoMax: 200000000,
	})

	for i := 1; i < len(results); i++ {
		if results[i].Precio < results[i-1].Precio {
			t.Fatalf("results not sorted by price: %f before %f", results[i-1].Precio, results[i].Precio)
		}
	}
}

func TestSearch_CapsResultsAtDefaultLimit(t *testing.T) {
	svc := NewWithProperties(testProperties(), nil)

	results := svc.Search(SearchParams{
		Operacion:      "venta",
		Zona:           "palermo",
		PresupuestoMax: 500000000,
	})

	if len(results) != DefaultLimit {
		t.Fatalf("expected %d results, got %d", DefaultLimit, len(results))
	}
}

func TestSearch_ZoneMatchIsCaseInsensitiveSubstring(t *testing.T) {
	svc := NewWithProperties(testProperties(), nil)

	results := svc.Search(SearchParams{
		Operacion:      "venta",
		Zona:           "SOHO",
		PresupuestoMax: 200000000,
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 Soho matches, got %d", len(results))
	}
}

func TestSearch_ExcludesUnavailableListings(t *testing.T) {
	svc := NewWithProperties(testProperties(), nil)

	results := svc.Search(SearchParams{
		Operacion:      "venta",
		Zona:           "palermo soho",
		PresupuestoMax: 200000000,
	})

	for _, p := range results {
		if !p.Disponible {
			t.Fatalf("unavailable listing %q leaked into results", p.Titulo)
		}
	}
}

func TestSearch_NoMatchesReturnsEmptySlice(t *testing.T) {
	svc := NewWithProperties(testProperties(), nil)

	results := svc.Search(SearchParams{
		Operacion:      "alquiler",
		Zona:           "Belgrano",
		PresupuestoMax: 1000000,
	})

	if results == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
