package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"

	"plotchat/internal/domain"
)

var (
	_ UserRepository    = (*MemoryUserRepository)(nil)
	_ UserRepository    = (*PgUserRepository)(nil)
	_ SessionRepository = (*MemorySessionRepository)(nil)
	_ SessionRepository = (*PgSessionRepository)(nil)
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	user := domain.User{ID: "u1", Username: "ana", Email: "ana@example.com", PasswordHash: "h", CreatedAt: time.Now().UTC()}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, domain.User{ID: "u2", Username: "ana"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, err := repo.GetByUsername(ctx, "ana")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if diff := cmp.Diff(user, got); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
	if _, err := repo.GetByUsername(ctx, "nadie"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestMemorySessionRepository_CreateAndAppend(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first, err := repo.Create(ctx, domain.ChatRecord{UserID: "u1", Title: "Hola", CreatedAt: now})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := repo.Create(ctx, domain.ChatRecord{UserID: "u1", Title: "Graph", CreatedAt: now})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected sequential ids, got %d %d", first.ID, second.ID)
	}

	turn := domain.Turn{User: "Graph", Assistant: "#", Time: "2024-05-01 12:00:00"}
	if err := repo.AppendTurn(ctx, "u1", second.ID, turn); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.GetForUser(ctx, "u1", second.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff([]domain.Turn{turn}, got.Turns); diff != "" {
		t.Fatalf("turns mismatch (-want +got):\n%s", diff)
	}

	got.Turns[0].User = "mutated"
	again, _ := repo.GetForUser(ctx, "u1", second.ID)
	if again.Turns[0].User != "Graph" {
		t.Fatalf("stored turns must not alias returned records")
	}

	list, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Fatalf("expected records ordered by id, got %+v", list)
	}
}

func TestMemorySessionRepository_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	rec, _ := repo.Create(ctx, domain.ChatRecord{UserID: "u1", Title: "privado"})

	if _, err := repo.GetForUser(ctx, "u2", rec.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows for foreign session, got %v", err)
	}
	if err := repo.AppendTurn(ctx, "u2", rec.ID, domain.Turn{User: "x"}); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows on foreign append, got %v", err)
	}
	list, _ := repo.ListByUser(ctx, "u2")
	if len(list) != 0 {
		t.Fatalf("expected no sessions for u2, got %d", len(list))
	}
}
