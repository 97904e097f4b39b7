package shared

import (
	"github.com/google/uuid"
)

// NewID generates a fresh entity id. Ids are opaque strings to callers;
// the store keys every record by (tenant key, id), so an id is only
// meaningful within the catalog it was created in.
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether s looks like an id this engine generated.
// Client-supplied placeholder ids (e.g. "tmp-1") fail this check, which is
// why the bulk assignment flow matches groups by name instead.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Dedupe returns ids with duplicates removed, preserving first-seen order.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
