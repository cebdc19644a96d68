package model

import (
	"errors"
	"fmt"
	"strings"
)

// StatusFilter selects proposals by status. StatusAll disables the check.
type StatusFilter string

const (
	StatusAll StatusFilter = "all"
)

// SortKey orders a derived proposal view. Every key sorts descending.
type SortKey string

const (
	SortRecent  SortKey = "recent"
	SortVotes   SortKey = "votes"
	SortFunding SortKey = "funding"
)

var (
	ErrInvalidStatus = errors.New("invalid status filter")
	ErrInvalidSort   = errors.New("invalid sort key")
)

// Filter parameterizes a derived view of the proposal set.
type Filter struct {
	Status     StatusFilter `json:"status"`
	SearchTerm string       `json:"searchTerm"`
	SortBy     SortKey      `json:"sortBy"`
}

// DefaultFilter is the reset state of the listing view.
func DefaultFilter() Filter {
	return Filter{Status: StatusAll, SearchTerm: "", SortBy: SortRecent}
}

// Admits reports whether p passes the status part of the filter.
// The zero value behaves like StatusAll.
func (s StatusFilter) Admits(p Proposal) bool {
	return s == StatusAll || s == "" || Status(s) == p.Status
}

// ParseStatusFilter parses a status filter value. An empty string means StatusAll.
func ParseStatusFilter(s string) (StatusFilter, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == string(StatusAll) {
		return StatusAll, nil
	}
	if Status(v).Valid() {
		return StatusFilter(v), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// ParseSortKey parses a sort key. An empty string means SortRecent.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortRecent, nil
	case SortRecent, SortVotes, SortFunding:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
}

// ParseFilter builds a Filter from raw user input.
func ParseFilter(status, search, sortBy string) (Filter, error) {
	st, err := ParseStatusFilter(status)
	if err != nil {
		return Filter{}, err
	}
	key, err := ParseSortKey(sortBy)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Status: st, SearchTerm: search, SortBy: key}, nil
}
