package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/termite/internal/partition"
)

// marshalSummary converts a summary to canonical JSON TEXT and its hash.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalSummary(s partition.Summary) (string, string, error) {
	data, err := s.Canonical()
	if err != nil {
		return "", "", fmt.Errorf("marshal summary: %w", err)
	}
	hash, err := s.Hash()
	if err != nil {
		return "", "", fmt.Errorf("marshal summary: %w", err)
	}
	return string(data), hash, nil
}

// unmarshalSummary parses canonical JSON TEXT back into a summary.
func unmarshalSummary(data string) (partition.Summary, error) {
	var s partition.Summary
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return partition.Summary{}, fmt.Errorf("unmarshal summary: %w", err)
	}
	return s, nil
}
