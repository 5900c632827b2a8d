package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"devevent/internal/database"
	"devevent/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var eventColumnNames = []string{"id", "title", "slug", "description", "overview", "image", "venue", "location", "date", "time", "mode", "audience", "agenda", "organizer", "tags", "created_at", "updated_at"}

var ts = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleEvent() *domain.Event {
	return &domain.Event{
		Title:       "React Summit",
		Slug:        "react-summit",
		Description: "The biggest React conference",
		Overview:    "Two days of talks",
		Image:       "https://cdn.example.com/react.png",
		Venue:       "RAI",
		Location:    "Amsterdam, NL",
		Date:        "2026-06-12",
		Time:        "09:00",
		Mode:        domain.ModeHybrid,
		Audience:    "Developers",
		Agenda:      []string{"Keynote", "Workshops"},
		Organizer:   "GitNation",
		Tags:        []string{"react", "frontend"},
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func addEventRow(rows *sqlmock.Rows, id string, e *domain.Event) *sqlmock.Rows {
	return rows.AddRow(id, e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location,
		e.Date, e.Time, e.Mode, e.Audience, "{Keynote,Workshops}", e.Organizer, "{react,frontend}", e.CreatedAt, e.UpdatedAt)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		mock      func(mock sqlmock.Sqlmock, e *domain.Event)
		wantID    string
		wantErrIs error
		wantErr   bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock, e *domain.Event) {
				mock.ExpectQuery(`INSERT INTO events \(title, slug, description`).
					WithArgs(e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location,
						e.Date, e.Time, e.Mode, e.Audience, pq.Array(e.Agenda), e.Organizer, pq.Array(e.Tags), ts, ts).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name: "duplicate slug",
			mock: func(mock sqlmock.Sqlmock, e *domain.Event) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "events_slug_key"})
			},
			wantErrIs: domain.ErrDuplicateSlug,
			wantErr:   true,
		},
		{
			name: "other unique violation is not a slug collision",
			mock: func(mock sqlmock.Sqlmock, e *domain.Event) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "events_pkey"})
			},
			wantErr: true,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock, e *domain.Event) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErrIs: sql.ErrConnDone,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			e := sampleEvent()
			tt.mock(mock, e)
			repo := NewEventRepository(database.Static{DB: db})
			err = repo.Create(ctx, e)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					require.ErrorIs(t, err, tt.wantErrIs)
				} else {
					require.False(t, errors.Is(err, domain.ErrDuplicateSlug))
				}
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, e.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetBySlug(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		slug    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		wantErr error
	}{
		{
			name: "success",
			slug: "react-summit",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, title, slug, .* FROM events WHERE slug = \$1`).
					WithArgs("react-summit").
					WillReturnRows(addEventRow(sqlmock.NewRows(eventColumnNames), "ev-1", sampleEvent()))
			},
			want: func() *domain.Event {
				e := sampleEvent()
				e.ID = "ev-1"
				return e
			}(),
		},
		{
			name: "not found",
			slug: "missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events WHERE slug = \$1`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			slug: "react-summit",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events WHERE slug = \$1`).
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
			repo := NewEventRepository(database.Static{DB: db})
			got, err := repo.GetBySlug(ctx, tt.slug)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(addEventRow(sqlmock.NewRows(eventColumnNames), "ev-1", sampleEvent()))
			},
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events WHERE id = \$1`).
					WithArgs("ev-missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "malformed uuid",
			id:   "not-a-uuid",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events WHERE id = \$1`).
					WithArgs("not-a-uuid").
					WillReturnError(&pq.Error{Code: "22P02"})
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(database.Static{DB: db})
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.id, got.ID)
			require.Equal(t, []string{"Keynote", "Workshops"}, got.Agenda)
			require.Equal(t, []string{"react", "frontend"}, got.Tags)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows(eventColumnNames)
		addEventRow(rows, "ev-2", sampleEvent())
		addEventRow(rows, "ev-1", sampleEvent())
		mock.ExpectQuery(`FROM events ORDER BY created_at DESC`).WillReturnRows(rows)

		repo := NewEventRepository(database.Static{DB: db})
		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "ev-2", got[0].ID)
		require.Equal(t, "ev-1", got[1].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty returns non-nil slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM events ORDER BY created_at DESC`).WillReturnRows(sqlmock.NewRows(eventColumnNames))

		repo := NewEventRepository(database.Static{DB: db})
		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM events`).WillReturnError(sql.ErrConnDone)

		repo := NewEventRepository(database.Static{DB: db})
		got, err := repo.List(ctx)
		require.Error(t, err)
		require.Nil(t, got)
	})
}

type failingConn struct{ err error }

func (f failingConn) Ensure(ctx context.Context) (*sql.DB, error) { return nil, f.err }

func TestEventRepository_ConnectionFailure(t *testing.T) {
	connErr := errors.Join(domain.ErrConnection, errors.New("refused"))
	repo := NewEventRepository(failingConn{err: connErr})

	_, err := repo.List(context.Background())
	require.ErrorIs(t, err, domain.ErrConnection)

	_, err = repo.GetBySlug(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrConnection)

	err = repo.Create(context.Background(), sampleEvent())
	require.ErrorIs(t, err, domain.ErrConnection)
}
