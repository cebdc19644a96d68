package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the review state of a proposal. It is set when the proposal is
// created and no operation in this service transitions it.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Votes is the two-counter community tally of a proposal.
type Votes struct {
	Upvotes   int64 `json:"upvotes" yaml:"upvotes"`
	Downvotes int64 `json:"downvotes" yaml:"downvotes"`
}

// Net returns upvotes minus downvotes.
func (v Votes) Net() int64 {
	return v.Upvotes - v.Downvotes
}

// Proposal is a research funding request.
// It is a plain value: copying it never shares state with the store that produced it.
type Proposal struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Abstract    string    `json:"abstract" yaml:"abstract"`
	Institution string    `json:"institution" yaml:"institution"`
	Funding     float64   `json:"funding" yaml:"funding"`
	Duration    int       `json:"duration" yaml:"duration"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	Votes       Votes     `json:"votes" yaml:"votes"`
}

var ErrInvalidProposal = errors.New("invalid proposal")

// Validate checks the record invariants. The returned error wraps ErrInvalidProposal.
func (p Proposal) Validate() error {
	var problems []string
	if p.ID == "" {
		problems = append(problems, "id is empty")
	}
	if strings.TrimSpace(p.Title) == "" {
		problems = append(problems, "title is empty")
	}
	if strings.TrimSpace(p.Abstract) == "" {
		problems = append(problems, "abstract is empty")
	}
	if strings.TrimSpace(p.Institution) == "" {
		problems = append(problems, "institution is empty")
	}
	if p.Funding < 0 {
		problems = append(problems, "funding is negative")
	}
	if p.Duration <= 0 {
		problems = append(problems, "duration must be positive")
	}
	if !p.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", p.Status))
	}
	if p.CreatedAt.IsZero() {
		problems = append(problems, "createdAt is missing")
	}
	if p.Votes.Upvotes < 0 || p.Votes.Downvotes < 0 {
		problems = append(problems, "vote counters are negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidProposal, p.ID, strings.Join(problems, ", "))
	}
	return nil
}

// Direction is the kind of vote cast on a proposal.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

var ErrInvalidDirection = errors.New("invalid vote direction")

// ParseDirection accepts "up"/"down" and the "upvote"/"downvote" aliases, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upvote":
		return DirectionUp, nil
	case "down", "downvote":
		return DirectionDown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Apply returns v with the counter for d incremented by one.
func (d Direction) Apply(v Votes) Votes {
	switch d {
	case DirectionUp:
		v.Upvotes++
	case DirectionDown:
		v.Downvotes++
	}
	return v
}
