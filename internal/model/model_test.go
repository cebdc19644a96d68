package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProposal() Proposal {
	return Proposal{
		ID:          "1",
		Title:       "mRNA vaccines",
		Abstract:    "Vaccines for neglected tropical diseases.",
		Institution: "UFRJ",
		Funding:     25.5,
		Duration:    24,
		Status:      StatusPending,
		CreatedAt:   time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC),
		Votes:       Votes{Upvotes: 45, Downvotes: 5},
	}
}

func TestProposal_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Proposal)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Proposal) {}},
		{name: "zero funding allowed", mutate: func(p *Proposal) { p.Funding = 0 }},
		{name: "empty id", mutate: func(p *Proposal) { p.ID = "" }, wantErr: true},
		{name: "blank title", mutate: func(p *Proposal) { p.Title = "   " }, wantErr: true},
		{name: "empty abstract", mutate: func(p *Proposal) { p.Abstract = "" }, wantErr: true},
		{name: "empty institution", mutate: func(p *Proposal) { p.Institution = "" }, wantErr: true},
		{name: "negative funding", mutate: func(p *Proposal) { p.Funding = -1 }, wantErr: true},
		{name: "zero duration", mutate: func(p *Proposal) { p.Duration = 0 }, wantErr: true},
		{name: "unknown status", mutate: func(p *Proposal) { p.Status = "archived" }, wantErr: true},
		{name: "missing createdAt", mutate: func(p *Proposal) { p.CreatedAt = time.Time{} }, wantErr: true},
		{name: "negative downvotes", mutate: func(p *Proposal) { p.Votes.Downvotes = -3 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProposal()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProposal)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVotes_Net(t *testing.T) {
	assert.Equal(t, int64(40), Votes{Upvotes: 45, Downvotes: 5}.Net())
	assert.Equal(t, int64(-7), Votes{Upvotes: 25, Downvotes: 32}.Net())
	assert.Equal(t, int64(0), Votes{}.Net())
}

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"up", "UP", "upvote", " Upvote "} {
		d, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, DirectionUp, d)
	}
	for _, in := range []string{"down", "downvote", "DownVote"} {
		d, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, DirectionDown, d)
	}
	for _, in := range []string{"", "sideways", "+1"} {
		_, err := ParseDirection(in)
		assert.ErrorIs(t, err, ErrInvalidDirection, in)
	}
}

func TestDirection_Apply(t *testing.T) {
	v := Votes{Upvotes: 45, Downvotes: 5}

	assert.Equal(t, Votes{Upvotes: 46, Downvotes: 5}, DirectionUp.Apply(v))
	assert.Equal(t, Votes{Upvotes: 45, Downvotes: 6}, DirectionDown.Apply(v))
	assert.Equal(t, v, Direction("bogus").Apply(v))
	// the argument is a copy
	assert.Equal(t, Votes{Upvotes: 45, Downvotes: 5}, v)
}

func TestParseFilter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, err := ParseFilter("", "", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultFilter(), f)
	})

	t.Run("explicit values", func(t *testing.T) {
		f, err := ParseFilter("Approved", "quantum", "FUNDING")
		require.NoError(t, err)
		assert.Equal(t, Filter{Status: StatusFilter(StatusApproved), SearchTerm: "quantum", SortBy: SortFunding}, f)
	})

	t.Run("search term kept verbatim", func(t *testing.T) {
		f, err := ParseFilter("all", "  São Paulo ", "votes")
		require.NoError(t, err)
		assert.Equal(t, "  São Paulo ", f.SearchTerm)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := ParseFilter("archived", "", "recent")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("invalid sort", func(t *testing.T) {
		_, err := ParseFilter("all", "", "alphabetical")
		assert.ErrorIs(t, err, ErrInvalidSort)
	})
}

func TestStatusFilter_Admits(t *testing.T) {
	p := validProposal()

	assert.True(t, StatusAll.Admits(p))
	assert.True(t, StatusFilter(StatusPending).Admits(p))
	assert.False(t, StatusFilter(StatusApproved).Admits(p))
	assert.False(t, StatusFilter(StatusRejected).Admits(p))
}
