package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fundvote/internal/model"
	"fundvote/internal/repository"
)

// ProposalPostgres is a PostgreSQL implementation of repository.ProposalRepository.
// It uses database/sql with parameterized queries; each vote is a single UPDATE.
type ProposalPostgres struct {
	db *sql.DB
}

// NewProposalPostgres creates a new ProposalPostgres repository.
func NewProposalPostgres(db *sql.DB) *ProposalPostgres {
	return &ProposalPostgres{db: db}
}

var _ repository.ProposalRepository = (*ProposalPostgres)(nil)

const (
	qList = `
		SELECT ` + repository.ProposalColumns + `
		FROM proposals
		ORDER BY id
	`
	qFindByID = `
		SELECT ` + repository.ProposalColumns + `
		FROM proposals
		WHERE id = $1
	`
	qUpvote = `
		UPDATE proposals SET upvotes = upvotes + 1
		WHERE id = $1
		RETURNING ` + repository.ProposalColumns
	qDownvote = `
		UPDATE proposals SET downvotes = downvotes + 1
		WHERE id = $1
		RETURNING ` + repository.ProposalColumns
)

// List returns all proposals ordered by id.
func (r *ProposalPostgres) List(ctx context.Context) ([]model.Proposal, error) {
	rows, err := r.db.QueryContext(ctx, qList)
	if err != nil {
		return nil, repository.Unavailable("list proposals", err)
	}
	defer rows.Close()

	items := make([]model.Proposal, 0)
	for rows.Next() {
		p, err := repository.ScanProposal(rows)
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

// FindByID fetches a single proposal by its ID.
func (r *ProposalPostgres) FindByID(ctx context.Context, id string) (model.Proposal, bool, error) {
	p, err := repository.ScanProposal(r.db.QueryRowContext(ctx, qFindByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Proposal{}, false, nil
		}
		return model.Proposal{}, false, repository.Unavailable("find proposal", err)
	}
	return p, true, nil
}

// ApplyVote increments one counter in place and returns the updated row.
// The increment happens inside the database, so concurrent votes never lose updates.
func (r *ProposalPostgres) ApplyVote(ctx context.Context, id string, dir model.Direction) (model.Proposal, bool, error) {
	var q string
	switch dir {
	case model.DirectionUp:
		q = qUpvote
	case model.DirectionDown:
		q = qDownvote
	default:
		return model.Proposal{}, false, model.ErrInvalidDirection
	}

	p, err := repository.ScanProposal(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Proposal{}, false, nil
		}
		return model.Proposal{}, false, repository.Unavailable("apply vote", err)
	}
	return p, true, nil
}
