package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"meetpoll/internal/domain"
)

func TestEventRepository_CreateWithSuggestions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "success commits event and suggestions",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events \(uuid, name, owner_id, created_at, updated_at\)`).
					WithArgs("aabbccdd", "Team Lunch", "user-1", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("event-1"))
				mock.ExpectQuery(`INSERT INTO suggestions \(event_id, description, position, created_at\)`).
					WithArgs("event-1", "Monday noon", 0, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sug-1"))
				mock.ExpectQuery(`INSERT INTO suggestions \(event_id, description, position, created_at\)`).
					WithArgs("event-1", "Friday noon", 1, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sug-2"))
				mock.ExpectCommit()
			},
		},
		{
			name: "suggestion insert failure rolls everything back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("event-1"))
				mock.ExpectQuery(`INSERT INTO suggestions`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)

			event := &domain.Event{UUID: "aabbccdd", Name: "Team Lunch", OwnerID: "user-1", CreatedAt: now, UpdatedAt: now}
			suggestions := []*domain.Suggestion{
				domain.NewSuggestion("", "Monday noon", 0, now),
				domain.NewSuggestion("", "Friday noon", 1, now),
			}
			err = repo.CreateWithSuggestions(ctx, event, suggestions)
			if tt.wantErr {
				require.Error(t, err)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, "event-1", event.ID)
			require.Equal(t, "sug-1", suggestions[0].ID)
			require.Equal(t, "event-1", suggestions[0].EventID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByUUID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, uuid, name, owner_id, created_at, updated_at`).
			WithArgs("aabbccdd").
			WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "name", "owner_id", "created_at", "updated_at"}).
				AddRow("event-1", "aabbccdd", "Team Lunch", "user-1", now, now))

		repo := NewEventRepository(db)
		event, err := repo.GetByUUID(ctx, "aabbccdd")
		require.NoError(t, err)
		require.Equal(t, "event-1", event.ID)
		require.Equal(t, "Team Lunch", event.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, uuid, name, owner_id, created_at, updated_at`).
			WithArgs("00000000").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByUUID(ctx, "00000000")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("event-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "event-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("event-404").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "event-404"), domain.ErrNotFound)
	})
}
