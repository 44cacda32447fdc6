package postgres

import (
	"context"
	"database/sql"
	"errors"

	"meetpoll/internal/domain"
)

type groupRepository struct {
	DB *sql.DB
}

func NewGroupRepository(db *sql.DB) domain.GroupRepository {
	return &groupRepository{
		DB: db,
	}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	query := `
		INSERT INTO groups (name, email, yammer_group_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, group.Name, group.Email, group.YammerGroupID, group.CreatedAt).
		Scan(&group.ID)
}

func (r *groupRepository) GetByYammerGroupID(ctx context.Context, yammerGroupID string) (*domain.Group, error) {
	query := `
		SELECT id, name, email, yammer_group_id, created_at
		FROM groups
		WHERE yammer_group_id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, yammerGroupID))
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	query := `
		SELECT id, name, email, yammer_group_id, created_at
		FROM groups
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *groupRepository) scanOne(row *sql.Row) (*domain.Group, error) {
	g := &domain.Group{}
	err := row.Scan(&g.ID, &g.Name, &g.Email, &g.YammerGroupID, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}
