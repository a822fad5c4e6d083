package session

import (
	"context"
	"testing"
)

func TestMemoryStore_LoadUnknownUserReturnsFreshSession(t *testing.T) {
	store := NewMemoryStore()

	sess, err := store.Load(context.Background(), "nuevo")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sess.UserID != "nuevo" {
		t.Fatalf("expected fresh session for user, got %q", sess.UserID)
	}
	if len(sess.History) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(sess.History))
	}
}

func TestMemoryStore_SaveThenLoadRoundTrips(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := NewSession("user-1")
	sess.AppendTurn(RoleUser, "hola")
	sess.LeadData.Zona = "Palermo"
	if err := store.Save(ctx, "user-1", sess); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.History) != 1 || loaded.History[0].Content != "hola" {
		t.Fatalf("expected saved history, got %+v", loaded.History)
	}
	if loaded.LeadData.Zona != "Palermo" {
		t.Fatalf("expected saved lead data, got %+v", loaded.LeadData)
	}
}

func TestMemoryStore_ResetDiscardsSession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := NewSession("user-1")
	sess.AppendTurn(RoleUser, "hola")
	if err := store.Save(ctx, "user-1", sess); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := store.Reset(ctx, "user-1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	loaded, err := store.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.History) != 0 {
		t.Fatalf("expected history cleared after reset, got %d turns", len(loaded.History))
	}
}

func TestMemoryStore_UsersAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := NewSession("user-1")
	sess.LeadData.Operacion = "venta"
	if err := store.Save(ctx, "user-1", sess); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	other, err := store.Load(ctx, "user-2")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if other.LeadData.Operacion != "" {
		t.Fatalf("expected user-2 session to be empty, got %+v", other.LeadData)
	}
}
