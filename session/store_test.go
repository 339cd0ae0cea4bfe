package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSaveRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := Session{
		ID:            "sess-1",
		UpstreamToken: "upstream-jwt",
		Email:         "doc@example.com",
		UserID:        "doc-42",
		Role:          RoleDoctor,
		CreatedAt:     time.Now(),
	}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Read(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.UpstreamToken != "upstream-jwt" || got.UserID != "doc-42" || got.Role != RoleDoctor {
		t.Fatalf("read back wrong session: %+v", got)
	}
}

func TestMemoryStoreReadUnknown(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Read(context.Background(), "missing"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := Session{ID: "sess-1", UpstreamToken: "tok", UserID: "doc-1", Role: RoleDoctor}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Read(ctx, "sess-1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after Clear, got %v", err)
	}
}

func TestMemoryStoreRejectsIncompleteSession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// A session with no upstream token cannot authorize anything.
	store.Save(ctx, Session{ID: "sess-1", UserID: "doc-1", Role: RoleDoctor})
	if _, err := store.Read(ctx, "sess-1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for tokenless session, got %v", err)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Save(ctx, Session{ID: "sess-1", UpstreamToken: "old", UserID: "doc-1"})
	store.Save(ctx, Session{ID: "sess-1", UpstreamToken: "new", UserID: "doc-1"})

	got, err := store.Read(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.UpstreamToken != "new" {
		t.Fatalf("expected newest token, got %q", got.UpstreamToken)
	}
}
