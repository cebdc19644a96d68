package repository

import (
	"context"
	"errors"
	"fmt"

	"fundvote/internal/model"
)

// ErrUnavailable marks a transient storage fault. Callers may retry; a vote that
// fails with it has not changed any counter.
var ErrUnavailable = errors.New("proposal store unavailable")

// ProposalRepository is the single source of truth for proposal records.
// Implementations return copies; the only mutation path is ApplyVote.
type ProposalRepository interface {
	// List returns every stored proposal.
	List(ctx context.Context) ([]model.Proposal, error)

	// FindByID returns the proposal with the given id.
	// found is false with a nil error when no such id exists.
	FindByID(ctx context.Context, id string) (p model.Proposal, found bool, err error)

	// ApplyVote atomically increments one vote counter of the proposal and returns the
	// updated record. found is false with a nil error when no such id exists.
	ApplyVote(ctx context.Context, id string, dir model.Direction) (p model.Proposal, found bool, err error)
}

// Unavailable wraps a driver error so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ProposalColumns is the column list ScanProposal expects, in order.
const ProposalColumns = "id, title, abstract, institution, funding, duration, status, created_at, upvotes, downvotes"

// ScanProposal reads one row selected with ProposalColumns.
func ScanProposal(s RowScanner) (model.Proposal, error) {
	var (
		p      model.Proposal
		status string
	)
	if err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Abstract,
		&p.Institution,
		&p.Funding,
		&p.Duration,
		&status,
		&p.CreatedAt,
		&p.Votes.Upvotes,
		&p.Votes.Downvotes,
	); err != nil {
		return model.Proposal{}, err
	}
	p.Status = model.Status(status)
	return p, nil
}
