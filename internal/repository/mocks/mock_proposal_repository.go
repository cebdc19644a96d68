package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fundvote/internal/model"
)

type MockProposalRepository struct {
	mock.Mock
}

func (m *MockProposalRepository) List(ctx context.Context) ([]model.Proposal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Proposal), args.Error(1)
}

func (m *MockProposalRepository) FindByID(ctx context.Context, id string) (model.Proposal, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Proposal), args.Bool(1), args.Error(2)
}

func (m *MockProposalRepository) ApplyVote(ctx context.Context, id string, dir model.Direction) (model.Proposal, bool, error) {
	args := m.Called(ctx, id, dir)
	return args.Get(0).(model.Proposal), args.Bool(1), args.Error(2)
}
