package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"meetpoll/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{
		DB: db,
	}
}

// CreateWithoutName persists a guest identified by email only. The name column
// stays empty until the guest ever provides one.
func (r *guestRepository) CreateWithoutName(ctx context.Context, email string) (*domain.Guest, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	g := &domain.Guest{
		Email:     email,
		CreatedAt: time.Now(),
	}
	query := `
		INSERT INTO guests (name, email, created_at)
		VALUES ('', $1, $2)
		RETURNING id
	`
	if err := r.DB.QueryRowContext(ctx, query, g.Email, g.CreatedAt).Scan(&g.ID); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) GetByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	query := `
		SELECT id, name, email, created_at
		FROM guests
		WHERE email = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	query := `
		SELECT id, name, email, created_at
		FROM guests
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *guestRepository) scanOne(row *sql.Row) (*domain.Guest, error) {
	g := &domain.Guest{}
	err := row.Scan(&g.ID, &g.Name, &g.Email, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}
