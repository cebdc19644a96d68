package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fundvote/internal/catalog"
	"fundvote/internal/model"
	"fundvote/internal/repository"
)

// Latency is the simulated round-trip time of each operation.
// Zero disables the delay.
type Latency struct {
	List time.Duration
	Get  time.Duration
	Vote time.Duration
}

// ProposalMemory is an in-process implementation of repository.ProposalRepository.
// Records live in a table keyed by id; the seed order is kept for List.
// It is safe for concurrent use.
type ProposalMemory struct {
	mu      sync.RWMutex
	order   []string
	byID    map[string]model.Proposal
	latency Latency
}

var _ repository.ProposalRepository = (*ProposalMemory)(nil)

// Option configures a ProposalMemory.
type Option func(*ProposalMemory)

// WithLatency sets the simulated latency.
func WithLatency(l Latency) Option {
	return func(m *ProposalMemory) { m.latency = l }
}

// NewProposalMemory builds a store seeded with the given proposals.
// Invalid records or duplicate ids are rejected.
func NewProposalMemory(seed []model.Proposal, opts ...Option) (*ProposalMemory, error) {
	if err := catalog.Validate(seed); err != nil {
		return nil, fmt.Errorf("seed memory store: %w", err)
	}
	m := &ProposalMemory{
		order: make([]string, 0, len(seed)),
		byID:  make(map[string]model.Proposal, len(seed)),
	}
	for _, p := range seed {
		m.order = append(m.order, p.ID)
		m.byID[p.ID] = p
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// List returns copies of every record in seed order.
func (m *ProposalMemory) List(ctx context.Context) ([]model.Proposal, error) {
	if err := wait(ctx, m.latency.List); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Proposal, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

// FindByID returns a copy of the record with the given id.
func (m *ProposalMemory) FindByID(ctx context.Context, id string) (model.Proposal, bool, error) {
	if err := wait(ctx, m.latency.Get); err != nil {
		return model.Proposal{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	return p, ok, nil
}

// ApplyVote performs the read-increment-write under the write lock, after the simulated delay.
// A context cancelled during the delay returns its error and changes nothing.
func (m *ProposalMemory) ApplyVote(ctx context.Context, id string, dir model.Direction) (model.Proposal, bool, error) {
	if dir != model.DirectionUp && dir != model.DirectionDown {
		return model.Proposal{}, false, fmt.Errorf("%w: %q", model.ErrInvalidDirection, dir)
	}
	if err := wait(ctx, m.latency.Vote); err != nil {
		return model.Proposal{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return model.Proposal{}, false, nil
	}
	p.Votes = dir.Apply(p.Votes)
	// keep the seed-owned key; id may alias a caller buffer
	m.byID[p.ID] = p
	return p, true, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
