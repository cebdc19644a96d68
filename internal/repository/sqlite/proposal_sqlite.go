// Package sqlite stores proposals in a local SQLite file through modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fundvote/internal/model"
	"fundvote/internal/repository"
)

// TimeLayout is how created_at is stored. SQLite has no timestamp type, so the
// column holds text and is parsed on the way out.
const TimeLayout = time.RFC3339Nano

// ProposalSQLite implements repository.ProposalRepository on SQLite.
type ProposalSQLite struct {
	db *sql.DB
}

// NewProposalSQLite creates a new ProposalSQLite repository.
func NewProposalSQLite(db *sql.DB) *ProposalSQLite {
	return &ProposalSQLite{db: db}
}

var _ repository.ProposalRepository = (*ProposalSQLite)(nil)

const (
	qList     = `SELECT ` + repository.ProposalColumns + ` FROM proposals ORDER BY id`
	qFindByID = `SELECT ` + repository.ProposalColumns + ` FROM proposals WHERE id = ?`
	qUpvote   = `UPDATE proposals SET upvotes = upvotes + 1 WHERE id = ? RETURNING ` + repository.ProposalColumns
	qDownvote = `UPDATE proposals SET downvotes = downvotes + 1 WHERE id = ? RETURNING ` + repository.ProposalColumns
)

func (r *ProposalSQLite) List(ctx context.Context) ([]model.Proposal, error) {
	rows, err := r.db.QueryContext(ctx, qList)
	if err != nil {
		return nil, repository.Unavailable("list proposals", err)
	}
	defer rows.Close()

	items := make([]model.Proposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, repository.Unavailable("scan proposal", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.Unavailable("list proposals", err)
	}
	return items, nil
}

func (r *ProposalSQLite) FindByID(ctx context.Context, id string) (model.Proposal, bool, error) {
	return r.one(ctx, "find proposal", qFindByID, id)
}

// ApplyVote relies on UPDATE ... RETURNING, a single atomic statement.
func (r *ProposalSQLite) ApplyVote(ctx context.Context, id string, dir model.Direction) (model.Proposal, bool, error) {
	switch dir {
	case model.DirectionUp:
		return r.one(ctx, "apply vote", qUpvote, id)
	case model.DirectionDown:
		return r.one(ctx, "apply vote", qDownvote, id)
	}
	return model.Proposal{}, false, model.ErrInvalidDirection
}

func (r *ProposalSQLite) one(ctx context.Context, op, q, id string) (model.Proposal, bool, error) {
	p, err := scanProposal(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Proposal{}, false, nil
		}
		return model.Proposal{}, false, repository.Unavailable(op, err)
	}
	return p, true, nil
}

func scanProposal(s repository.RowScanner) (model.Proposal, error) {
	var (
		p         model.Proposal
		status    string
		createdAt string
	)
	if err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Abstract,
		&p.Institution,
		&p.Funding,
		&p.Duration,
		&status,
		&createdAt,
		&p.Votes.Upvotes,
		&p.Votes.Downvotes,
	); err != nil {
		return model.Proposal{}, err
	}
	t, err := time.Parse(TimeLayout, createdAt)
	if err != nil {
		return model.Proposal{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	p.Status = model.Status(status)
	p.CreatedAt = t
	return p, nil
}
