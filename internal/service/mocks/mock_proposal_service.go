package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fundvote/internal/model"
	"fundvote/internal/service"
)

type MockProposalService struct {
	mock.Mock
}

func (m *MockProposalService) List(ctx context.Context, f model.Filter) (*service.ProposalListResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProposalListResult), args.Error(1)
}

func (m *MockProposalService) Get(ctx context.Context, id string) (model.Proposal, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Proposal), args.Bool(1), args.Error(2)
}

func (m *MockProposalService) Vote(ctx context.Context, id string, dir model.Direction) (model.Proposal, bool, error) {
	args := m.Called(ctx, id, dir)
	return args.Get(0).(model.Proposal), args.Bool(1), args.Error(2)
}
