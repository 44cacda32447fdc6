package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"meetpoll/internal/domain"
)

// pqUniqueViolation is the Postgres error code for unique constraint violations.
const pqUniqueViolation = "23505"

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

// Create persists the invitation. The unique index on
// (event_id, invitee_type, invitee_id) is the authoritative duplicate guard:
// the application pre-check is an optimization, and a racing insert loses here
// with ErrDuplicateInvite instead of a second row.
func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (event_id, invitee_type, invitee_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, inv.EventID, inv.InviteeType, inv.InviteeID, inv.CreatedAt).
		Scan(&inv.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.ErrDuplicateInvite
		}
		return err
	}
	return nil
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	query := `
		SELECT id, event_id, invitee_type, invitee_id, created_at
		FROM invitations
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv := &domain.Invitation{}
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.InviteeType, &inv.InviteeID, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

func (r *invitationRepository) ListByEventIDPaginated(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM invitations WHERE event_id = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, event_id, invitee_type, invitee_id, created_at
		FROM invitations
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv := &domain.Invitation{}
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.InviteeType, &inv.InviteeID, &inv.CreatedAt); err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, total, nil
}

func (r *invitationRepository) Exists(ctx context.Context, eventID string, inviteeType domain.InviteeType, inviteeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invitations
			WHERE event_id = $1 AND invitee_type = $2 AND invitee_id = $3
		)
	`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, inviteeType, inviteeID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
