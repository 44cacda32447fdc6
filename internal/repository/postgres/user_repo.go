package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meetpoll/internal/domain"
)

type userRepository struct {
	DB     *sql.DB
	cipher domain.TokenCipher
}

// NewUserRepository returns a UserRepository. Access tokens are encrypted with
// the given cipher before they reach the database and decrypted on read.
func NewUserRepository(db *sql.DB, cipher domain.TokenCipher) domain.UserRepository {
	return &userRepository{
		DB:     db,
		cipher: cipher,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	encToken, err := r.cipher.Encrypt(user.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	query := `
		INSERT INTO users (name, email, image, yammer_user_id, yammer_network_id, yammer_staging, encrypted_access_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Image,
		user.YammerUserID, user.YammerNetworkID, user.YammerStaging,
		encToken, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
}

const userColumns = `id, name, email, image, yammer_user_id, yammer_network_id, yammer_staging, encrypted_access_token, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByYammerUserID(ctx context.Context, yammerUserID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE yammer_user_id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, yammerUserID))
}

func (r *userRepository) scanOne(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	var encToken string
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Image,
		&u.YammerUserID, &u.YammerNetworkID, &u.YammerStaging,
		&encToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	token, err := r.cipher.Decrypt(encToken)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	u.AccessToken = token
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	encToken, err := r.cipher.Encrypt(user.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	query := `
		UPDATE users
		SET name = $1, email = $2, image = $3, yammer_network_id = $4, yammer_staging = $5, encrypted_access_token = $6, updated_at = NOW()
		WHERE id = $7
	`
	result, err := r.DB.ExecContext(ctx, query,
		user.Name, user.Email, user.Image,
		user.YammerNetworkID, user.YammerStaging, encToken,
		user.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
