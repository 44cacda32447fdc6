package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meetpoll/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// CreateWithSuggestions inserts the event and its suggestions in one
// transaction so the at-least-one-suggestion invariant holds for every
// committed event.
func (r *eventRepository) CreateWithSuggestions(ctx context.Context, e *domain.Event, suggestions []*domain.Suggestion) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	eventQuery := `
		INSERT INTO events (uuid, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, eventQuery, e.UUID, e.Name, e.OwnerID, e.CreatedAt, e.UpdatedAt).Scan(&e.ID); err != nil {
		return err
	}

	suggestionQuery := `
		INSERT INTO suggestions (event_id, description, position, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for _, sug := range suggestions {
		sug.EventID = e.ID
		if err := tx.QueryRowContext(ctx, suggestionQuery, sug.EventID, sug.Description, sug.Position, sug.CreatedAt).Scan(&sug.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, uuid, name, owner_id, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByUUID(ctx context.Context, uuid string) (*domain.Event, error) {
	query := `
		SELECT id, uuid, name, owner_id, created_at, updated_at
		FROM events
		WHERE uuid = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, uuid))
}

func (r *eventRepository) scanOne(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(&e.ID, &e.UUID, &e.Name, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := `
		SELECT id, uuid, name, owner_id, created_at, updated_at
		FROM events
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(&e.ID, &e.UUID, &e.Name, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Delete removes the event. Suggestions, votes, and invitations are removed by
// ON DELETE CASCADE on their foreign keys.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
