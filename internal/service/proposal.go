package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"fundvote/internal/model"
	"fundvote/internal/query"
	"fundvote/internal/repository"
)

var (
	ErrIDRequired = errors.New("id is required")
)

// ProposalListResult is the service-level DTO for a derived proposal view.
// An empty Items slice is a valid "no matches" outcome.
type ProposalListResult struct {
	Items  []model.Proposal `json:"data"`
	Total  int              `json:"total"`
	Filter model.Filter     `json:"filter"`
}

// ProposalService defines the use cases of the proposal catalog.
type ProposalService interface {
	// List returns the proposals that pass the filter, in the filter's order.
	// Zero-valued filter fields fall back to the defaults (all statuses, most recent first).
	List(ctx context.Context, f model.Filter) (*ProposalListResult, error)

	// Get returns a single proposal. found is false when the id does not exist.
	Get(ctx context.Context, id string) (p model.Proposal, found bool, err error)

	// Vote adds one up or down vote and returns the updated proposal.
	// found is false, and nothing changes, when the id does not exist.
	Vote(ctx context.Context, id string, dir model.Direction) (p model.Proposal, found bool, err error)
}

type proposalService struct {
	repo    repository.ProposalRepository
	log     *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures the proposal service.
type Option func(*proposalService)

// WithLogger sets the service logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *proposalService) { s.log = l }
}

// WithMetrics records vote outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *proposalService) { s.metrics = m }
}

// NewProposalService constructs a new ProposalService.
func NewProposalService(repo repository.ProposalRepository, opts ...Option) ProposalService {
	s := &proposalService{
		repo:   repo,
		log:    zap.NewNop(),
		tracer: otel.Tracer("fundvote/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *proposalService) List(ctx context.Context, f model.Filter) (*ProposalListResult, error) {
	f, err := model.ParseFilter(string(f.Status), f.SearchTerm, string(f.SortBy))
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "ProposalService.List", trace.WithAttributes(
		attribute.String("filter.status", string(f.Status)),
		attribute.String("filter.sort_by", string(f.SortBy)),
		attribute.Bool("filter.search", f.SearchTerm != ""),
	))
	defer span.End()

	all, err := s.repo.List(ctx)
	if err != nil {
		fail(span, err)
		s.log.Error("list_proposals_failed", zap.Error(err))
		return nil, fmt.Errorf("list proposals: %w", err)
	}

	items := query.Apply(all, f)
	span.SetAttributes(attribute.Int("result.count", len(items)))
	return &ProposalListResult{Items: items, Total: len(items), Filter: f}, nil
}

func (s *proposalService) Get(ctx context.Context, id string) (model.Proposal, bool, error) {
	if id == "" {
		return model.Proposal{}, false, ErrIDRequired
	}

	ctx, span := s.tracer.Start(ctx, "ProposalService.Get", trace.WithAttributes(attribute.String("proposal.id", id)))
	defer span.End()

	p, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		fail(span, err)
		s.log.Error("get_proposal_failed", zap.String("proposal_id", id), zap.Error(err))
		return model.Proposal{}, false, fmt.Errorf("get proposal: %w", err)
	}
	span.SetAttributes(attribute.Bool("proposal.found", found))
	return p, found, nil
}

func (s *proposalService) Vote(ctx context.Context, id string, dir model.Direction) (model.Proposal, bool, error) {
	if id == "" {
		return model.Proposal{}, false, ErrIDRequired
	}
	if dir != model.DirectionUp && dir != model.DirectionDown {
		return model.Proposal{}, false, fmt.Errorf("%w: %q", model.ErrInvalidDirection, dir)
	}

	ctx, span := s.tracer.Start(ctx, "ProposalService.Vote", trace.WithAttributes(
		attribute.String("proposal.id", id),
		attribute.String("vote.direction", string(dir)),
	))
	defer span.End()

	p, found, err := s.repo.ApplyVote(ctx, id, dir)
	switch {
	case err != nil:
		fail(span, err)
		s.metrics.observe(dir, OutcomeError)
		s.log.Error("vote_failed", zap.String("proposal_id", id), zap.String("direction", string(dir)), zap.Error(err))
		return model.Proposal{}, false, fmt.Errorf("vote on proposal: %w", err)
	case !found:
		s.metrics.observe(dir, OutcomeNotFound)
		s.log.Info("vote_target_not_found", zap.String("proposal_id", id))
		return model.Proposal{}, false, nil
	}

	s.metrics.observe(dir, OutcomeApplied)
	s.log.Info("vote_applied",
		zap.String("proposal_id", id),
		zap.String("direction", string(dir)),
		zap.Int64("upvotes", p.Votes.Upvotes),
		zap.Int64("downvotes", p.Votes.Downvotes),
	)
	return p, true, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
