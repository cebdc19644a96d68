package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundvote/internal/model"
	"fundvote/internal/repository"
)

var columns = []string{"id", "title", "abstract", "institution", "funding", "duration", "status", "created_at", "upvotes", "downvotes"}

var createdAt = time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)

func proposalRow(rows *sqlmock.Rows, id string, up, down int64) *sqlmock.Rows {
	return rows.AddRow(id, "title "+id, "abstract "+id, "institution "+id, 25.5, 24, "pending", createdAt, up, down)
}

func newRepo(t *testing.T) (*ProposalPostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProposalPostgres(db), mock
}

func TestProposalPostgres_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, mock := newRepo(t)
		rows := sqlmock.NewRows(columns)
		proposalRow(rows, "1", 45, 5)
		proposalRow(rows, "2", 72, 8)
		mock.ExpectQuery("SELECT (.+) FROM proposals ORDER BY id").WillReturnRows(rows)

		items, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, model.Proposal{
			ID:          "1",
			Title:       "title 1",
			Abstract:    "abstract 1",
			Institution: "institution 1",
			Funding:     25.5,
			Duration:    24,
			Status:      model.StatusPending,
			CreatedAt:   createdAt,
			Votes:       model.Votes{Upvotes: 45, Downvotes: 5},
		}, items[0])
		assert.Equal(t, "2", items[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM proposals").WillReturnRows(sqlmock.NewRows(columns))

		items, err := repo.List(ctx)

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query error is unavailable", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM proposals").WillReturnError(errors.New("connection refused"))

		items, err := repo.List(ctx)

		assert.ErrorIs(t, err, repository.ErrUnavailable)
		assert.ErrorContains(t, err, "connection refused")
		assert.Nil(t, items)
	})

	t.Run("row error is unavailable", func(t *testing.T) {
		repo, mock := newRepo(t)
		rows := sqlmock.NewRows(columns)
		proposalRow(rows, "1", 1, 1).RowError(0, errors.New("broken row"))
		mock.ExpectQuery("SELECT (.+) FROM proposals").WillReturnRows(rows)

		_, err := repo.List(ctx)

		assert.ErrorIs(t, err, repository.ErrUnavailable)
	})
}

func TestProposalPostgres_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM proposals WHERE id = ?").
			WithArgs("1").
			WillReturnRows(proposalRow(sqlmock.NewRows(columns), "1", 45, 5))

		p, found, err := repo.FindByID(ctx, "1")

		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "1", p.ID)
		assert.Equal(t, model.Votes{Upvotes: 45, Downvotes: 5}, p.Votes)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM proposals WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		p, found, err := repo.FindByID(ctx, "missing")

		assert.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, model.Proposal{}, p)
	})

	t.Run("driver error", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM proposals WHERE id = ?").
			WithArgs("1").
			WillReturnError(errors.New("timeout"))

		_, found, err := repo.FindByID(ctx, "1")

		assert.ErrorIs(t, err, repository.ErrUnavailable)
		assert.False(t, found)
	})
}

func TestProposalPostgres_ApplyVote(t *testing.T) {
	ctx := context.Background()

	t.Run("upvote", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("UPDATE proposals SET upvotes = upvotes \\+ 1 WHERE id = \\$1 RETURNING").
			WithArgs("1").
			WillReturnRows(proposalRow(sqlmock.NewRows(columns), "1", 46, 5))

		p, found, err := repo.ApplyVote(ctx, "1", model.DirectionUp)

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(46), p.Votes.Upvotes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("downvote", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("UPDATE proposals SET downvotes = downvotes \\+ 1 WHERE id = \\$1 RETURNING").
			WithArgs("1").
			WillReturnRows(proposalRow(sqlmock.NewRows(columns), "1", 45, 6))

		p, found, err := repo.ApplyVote(ctx, "1", model.DirectionDown)

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(6), p.Votes.Downvotes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("UPDATE proposals SET upvotes").
			WithArgs("nonexistent").
			WillReturnRows(sqlmock.NewRows(columns))

		_, found, err := repo.ApplyVote(ctx, "nonexistent", model.DirectionUp)

		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("invalid direction issues no statement", func(t *testing.T) {
		repo, mock := newRepo(t)

		_, _, err := repo.ApplyVote(ctx, "1", model.Direction("sideways"))

		assert.ErrorIs(t, err, model.ErrInvalidDirection)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("UPDATE proposals SET upvotes").
			WithArgs("1").
			WillReturnError(errors.New("deadlock detected"))

		_, found, err := repo.ApplyVote(ctx, "1", model.DirectionUp)

		assert.ErrorIs(t, err, repository.ErrUnavailable)
		assert.False(t, found)
	})
}
