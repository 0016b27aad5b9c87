package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plotchat/internal/domain"
)

// SessionRepository persiste las sesiones de chat de cada usuario. Una sesion
// de otro usuario se trata igual que una inexistente: pgx.ErrNoRows.
type SessionRepository interface {
	Create(ctx context.Context, record domain.ChatRecord) (domain.ChatRecord, error)
	GetForUser(ctx context.Context, userID string, id int64) (domain.ChatRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ChatRecord, error)
	AppendTurn(ctx context.Context, userID string, id int64, turn domain.Turn) error
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, record domain.ChatRecord) (domain.ChatRecord, error) {
	const query = `
		INSERT INTO chat_sessions (user_id, title, turns, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $4)
		RETURNING id
	`
	if record.Turns == nil {
		record.Turns = []domain.Turn{}
	}
	turns, err := json.Marshal(record.Turns)
	if err != nil {
		return domain.ChatRecord{}, fmt.Errorf("marshal turns: %w", err)
	}
	record.UpdatedAt = record.CreatedAt
	err = r.pool.QueryRow(ctx, query,
		record.UserID,
		record.Title,
		string(turns),
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return domain.ChatRecord{}, err
	}
	return record, nil
}

func (r *PgSessionRepository) GetForUser(ctx context.Context, userID string, id int64) (domain.ChatRecord, error) {
	const query = `
		SELECT id, user_id, title, turns, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1 AND user_id = $2
	`
	var rec domain.ChatRecord
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Title,
		&rec.Turns,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ChatRecord{}, err
	}
	return rec, err
}

func (r *PgSessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.ChatRecord, error) {
	const query = `
		SELECT id, user_id, title, turns, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.ChatRecord{}
	for rows.Next() {
		var rec domain.ChatRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Title,
			&rec.Turns,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PgSessionRepository) AppendTurn(ctx context.Context, userID string, id int64, turn domain.Turn) error {
	const query = `
		UPDATE chat_sessions
		SET turns = turns || $3::jsonb, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`
	payload, err := json.Marshal([]domain.Turn{turn})
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, id, userID, string(payload))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
