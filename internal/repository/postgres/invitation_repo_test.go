package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"meetpoll/internal/domain"
)

func TestInvitationRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations \(event_id, invitee_type, invitee_id, created_at\)`).
					WithArgs("event-1", domain.InviteeTypeGuest, "guest-1", now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-1"))
			},
		},
		{
			name: "unique violation becomes duplicate invite",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations`).
					WillReturnError(&pq.Error{Code: pqUniqueViolation})
			},
			wantErr: domain.ErrDuplicateInvite,
		},
		{
			name: "other db error passes through",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewInvitationRepository(db)

			inv := &domain.Invitation{EventID: "event-1", InviteeType: domain.InviteeTypeGuest, InviteeID: "guest-1", CreatedAt: now}
			err = repo.Create(ctx, inv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "inv-1", inv.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_Exists(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("event-1", domain.InviteeTypeUser, "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewInvitationRepository(db)
	exists, err := repo.Exists(ctx, "event-1", domain.InviteeTypeUser, "user-1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_ListByEventIDPaginated(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM invitations WHERE event_id = \$1`).
		WithArgs("event-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT id, event_id, invitee_type, invitee_id, created_at`).
		WithArgs("event-1", 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "invitee_type", "invitee_id", "created_at"}).
			AddRow("inv-3", "event-1", "user", "user-3", now).
			AddRow("inv-4", "event-1", "guest", "guest-1", now))

	repo := NewInvitationRepository(db)
	invs, total, err := repo.ListByEventIDPaginated(ctx, "event-1", domain.PaginationParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.Len(t, invs, 2)
	require.Equal(t, domain.InviteeTypeUser, invs[0].InviteeType)
	require.Equal(t, "guest-1", invs[1].InviteeID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_ListByEventID_Empty(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, invitee_type, invitee_id, created_at`).
		WithArgs("event-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "invitee_type", "invitee_id", "created_at"}))

	repo := NewInvitationRepository(db)
	invs, err := repo.ListByEventID(ctx, "event-1")
	require.NoError(t, err)
	require.NotNil(t, invs)
	require.Empty(t, invs)
}
