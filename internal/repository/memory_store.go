package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"plotchat/internal/domain"
)

// MemoryUserRepository guarda usuarios en memoria. Se usa cuando no hay DATABASE_URL.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]domain.User
	byUsername map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[string]domain.User),
		byUsername: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return ErrUserExists
	}
	r.byID[user.ID] = user
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	id, ok := r.byUsername[username]
	r.mu.RUnlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

// MemorySessionRepository guarda sesiones en memoria con ids secuenciales desde 1.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	nextID   int64
	sessions map[int64]domain.ChatRecord
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[int64]domain.ChatRecord),
	}
}

func (r *MemorySessionRepository) Create(_ context.Context, record domain.ChatRecord) (domain.ChatRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	record.ID = r.nextID
	record.Turns = copyTurns(record.Turns)
	record.UpdatedAt = record.CreatedAt
	r.sessions[record.ID] = record
	return cloneRecord(record), nil
}

func (r *MemorySessionRepository) GetForUser(_ context.Context, userID string, id int64) (domain.ChatRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[id]
	if !ok || rec.UserID != userID {
		return domain.ChatRecord{}, pgx.ErrNoRows
	}
	return cloneRecord(rec), nil
}

func (r *MemorySessionRepository) ListByUser(_ context.Context, userID string) ([]domain.ChatRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.ChatRecord{}
	for _, rec := range r.sessions {
		if rec.UserID == userID {
			result = append(result, cloneRecord(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemorySessionRepository) AppendTurn(_ context.Context, userID string, id int64, turn domain.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok || rec.UserID != userID {
		return pgx.ErrNoRows
	}
	rec.Turns = append(copyTurns(rec.Turns), turn)
	rec.UpdatedAt = time.Now().UTC()
	r.sessions[id] = rec
	return nil
}

func cloneRecord(rec domain.ChatRecord) domain.ChatRecord {
	rec.Turns = copyTurns(rec.Turns)
	return rec
}

func copyTurns(turns []domain.Turn) []domain.Turn {
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}
