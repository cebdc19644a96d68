package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundvote/internal/model"
	"fundvote/internal/repository"
	"fundvote/internal/repository/memory"
	repoMocks "fundvote/internal/repository/mocks"
)

func fixture(id string, funding float64, up, down int64, created time.Time) model.Proposal {
	return model.Proposal{
		ID:          id,
		Title:       "Proposal " + id,
		Abstract:    "Abstract " + id,
		Institution: "Institution " + id,
		Funding:     funding,
		Duration:    12,
		Status:      model.StatusPending,
		CreatedAt:   created,
		Votes:       model.Votes{Upvotes: up, Downvotes: down},
	}
}

func ids(items []model.Proposal) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestProposalService_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	stored := []model.Proposal{
		fixture("1", 25.5, 45, 5, now),
		fixture("2", 18.2, 72, 8, now.Add(time.Hour)),
	}

	tests := []struct {
		name       string
		filter     model.Filter
		setupMocks func(mRepo *repoMocks.MockProposalRepository)
		wantErr    error
		wantIDs    []string
	}{
		{
			name:   "zero filter uses defaults",
			filter: model.Filter{},
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("List", mock.Anything).Return(stored, nil)
			},
			wantIDs: []string{"2", "1"},
		},
		{
			name:   "sort by funding",
			filter: model.Filter{Status: model.StatusAll, SortBy: model.SortFunding},
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("List", mock.Anything).Return(stored, nil)
			},
			wantIDs: []string{"1", "2"},
		},
		{
			name:   "no matches is not an error",
			filter: model.Filter{Status: model.StatusFilter(model.StatusRejected)},
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("List", mock.Anything).Return(stored, nil)
			},
			wantIDs: []string{},
		},
		{
			name:       "invalid status",
			filter:     model.Filter{Status: "archived"},
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {},
			wantErr:    model.ErrInvalidStatus,
		},
		{
			name:       "invalid sort",
			filter:     model.Filter{SortBy: "title"},
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {},
			wantErr:    model.ErrInvalidSort,
		},
		{
			name:   "store unavailable",
			filter: model.DefaultFilter(),
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("List", mock.Anything).Return(nil, repository.Unavailable("list proposals", errors.New("conn reset")))
			},
			wantErr: repository.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockProposalRepository)
			svc := NewProposalService(mRepo)
			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.filter)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantIDs, ids(res.Items))
				assert.Equal(t, len(tt.wantIDs), res.Total)
				assert.NotEmpty(t, res.Filter.Status)
				assert.NotEmpty(t, res.Filter.SortBy)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestProposalService_Get(t *testing.T) {
	ctx := context.Background()
	p := fixture("1", 25.5, 45, 5, time.Now())

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockProposalRepository)
		wantFound  bool
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "1",
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("FindByID", ctx, "1").Return(p, true, nil)
			},
			wantFound: true,
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "nonexistent",
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("FindByID", ctx, "nonexistent").Return(model.Proposal{}, false, nil)
			},
		},
		{
			name: "store unavailable",
			id:   "1",
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("FindByID", ctx, "1").Return(model.Proposal{}, false, repository.Unavailable("find proposal", errors.New("timeout")))
			},
			wantErr: repository.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockProposalRepository)
			svc := NewProposalService(mRepo)
			tt.setupMocks(mRepo)

			got, found, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, p, got)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestProposalService_Vote(t *testing.T) {
	ctx := context.Background()
	p := fixture("1", 25.5, 45, 5, time.Now())
	voted := p
	voted.Votes.Upvotes++

	tests := []struct {
		name        string
		id          string
		dir         model.Direction
		setupMocks  func(mRepo *repoMocks.MockProposalRepository)
		wantFound   bool
		wantErr     error
		wantOutcome string
	}{
		{
			name: "upvote applied",
			id:   "1",
			dir:  model.DirectionUp,
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("ApplyVote", ctx, "1", model.DirectionUp).Return(voted, true, nil)
			},
			wantFound:   true,
			wantOutcome: OutcomeApplied,
		},
		{
			name: "not found",
			id:   "nonexistent",
			dir:  model.DirectionUp,
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("ApplyVote", ctx, "nonexistent", model.DirectionUp).Return(model.Proposal{}, false, nil)
			},
			wantOutcome: OutcomeNotFound,
		},
		{
			name:       "validation - empty id",
			id:         "",
			dir:        model.DirectionUp,
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:       "validation - bad direction",
			id:         "1",
			dir:        model.Direction("upvote"),
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {},
			wantErr:    model.ErrInvalidDirection,
		},
		{
			name: "store unavailable",
			id:   "1",
			dir:  model.DirectionDown,
			setupMocks: func(mRepo *repoMocks.MockProposalRepository) {
				mRepo.On("ApplyVote", ctx, "1", model.DirectionDown).Return(model.Proposal{}, false, repository.Unavailable("apply vote", errors.New("broken pipe")))
			},
			wantErr:     repository.ErrUnavailable,
			wantOutcome: OutcomeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockProposalRepository)
			metrics, err := NewMetrics(prometheus.NewRegistry())
			require.NoError(t, err)
			svc := NewProposalService(mRepo, WithMetrics(metrics))
			tt.setupMocks(mRepo)

			got, found, err := svc.Vote(ctx, tt.id, tt.dir)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, voted, got)
			}
			if tt.wantOutcome != "" {
				assert.Equal(t, 1.0, testutil.ToFloat64(metrics.votes.WithLabelValues(string(tt.dir), tt.wantOutcome)))
			} else {
				assert.Equal(t, 0, testutil.CollectAndCount(metrics.votes))
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

// End to end against the in-memory store: funding and votes orderings, then an upvote
// that does not change the vote ranking.
func TestProposalService_CatalogScenario(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo, err := memory.NewProposalMemory([]model.Proposal{
		fixture("1", 25.5, 45, 5, now),
		fixture("2", 18.2, 72, 8, now),
	})
	require.NoError(t, err)
	svc := NewProposalService(repo)

	res, err := svc.List(ctx, model.Filter{Status: model.StatusAll, SortBy: model.SortFunding})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(res.Items))

	byVotes := model.Filter{Status: model.StatusAll, SortBy: model.SortVotes}
	res, err = svc.List(ctx, byVotes)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(res.Items))

	dir, err := model.ParseDirection("upvote")
	require.NoError(t, err)
	p, found, err := svc.Vote(ctx, "1", dir)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(41), p.Votes.Net())

	res, err = svc.List(ctx, byVotes)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(res.Items))

	_, found, err = svc.Vote(ctx, "nonexistent", model.DirectionUp)
	require.NoError(t, err)
	assert.False(t, found)

	after, _, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, model.Votes{Upvotes: 72, Downvotes: 8}, after.Votes)
}
