// Package catalog provides the fixed proposal catalog the stores are seeded with.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fundvote/internal/model"
)

//go:embed seed.json
var seedJSON []byte

// Default returns the embedded seed catalog.
func Default() ([]model.Proposal, error) {
	return Decode(bytes.NewReader(seedJSON))
}

// LoadFile reads a seed catalog from a JSON file on disk.
func LoadFile(path string) ([]model.Proposal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Load returns the catalog at path, or the embedded one when path is empty.
func Load(path string) ([]model.Proposal, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Decode parses a JSON array of proposals and validates every record.
// Duplicate ids are rejected.
func Decode(r io.Reader) ([]model.Proposal, error) {
	var proposals []model.Proposal
	if err := json.NewDecoder(r).Decode(&proposals); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	if err := Validate(proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

// Validate checks each record and id uniqueness across the set.
func Validate(proposals []model.Proposal) error {
	seen := make(map[string]struct{}, len(proposals))
	for _, p := range proposals {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", model.ErrInvalidProposal, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
