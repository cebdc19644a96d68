// Package query derives filtered and ordered views of a proposal set.
// Everything here is pure: inputs are never modified and results are fresh slices.
package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"fundvote/internal/model"
)

// Apply keeps the proposals that pass both the status and the search predicate,
// then stable-sorts them by f.SortBy. The result is never nil.
func Apply(proposals []model.Proposal, f model.Filter) []model.Proposal {
	m := newMatcher(f)
	out := make([]model.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if m.match(p) {
			out = append(out, p)
		}
	}
	Sort(out, f.SortBy)
	return out
}

// Sort orders proposals in place, descending by key. Equal elements keep their relative order.
// An unknown key leaves the slice untouched.
func Sort(proposals []model.Proposal, key model.SortKey) {
	var less func(a, b model.Proposal) int
	switch key {
	case model.SortRecent:
		less = func(a, b model.Proposal) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case model.SortVotes:
		less = func(a, b model.Proposal) int { return cmp.Compare(b.Votes.Net(), a.Votes.Net()) }
	case model.SortFunding:
		less = func(a, b model.Proposal) int { return cmp.Compare(b.Funding, a.Funding) }
	default:
		return
	}
	slices.SortStableFunc(proposals, less)
}

// matcher holds a per-call Caser; cases.Caser is stateful and not safe for concurrent use.
type matcher struct {
	status model.StatusFilter
	term   string
	fold   cases.Caser
}

func newMatcher(f model.Filter) *matcher {
	m := &matcher{status: f.Status, fold: cases.Fold()}
	if f.SearchTerm != "" {
		m.term = m.fold.String(f.SearchTerm)
	}
	return m
}

func (m *matcher) match(p model.Proposal) bool {
	if !m.status.Admits(p) {
		return false
	}
	if m.term == "" {
		return true
	}
	for _, field := range []string{p.Title, p.Abstract, p.Institution} {
		if strings.Contains(m.fold.String(field), m.term) {
			return true
		}
	}
	return false
}
