package dto

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/jsamuelsen/scopestore/internal/domain"
)

// MergeRequest is the body of POST /api/v1/context/merge.
type MergeRequest struct {
	// Values are merged into the request scope as a flat union.
	Values map[string]any `json:"values" validate:"required,min=1,dive,keys,notempty,max=128,endkeys"`

	// Overwrite replaces existing keys. Defaults to true.
	Overwrite *bool `json:"overwrite"`
}

// Validate rejects keys that carry request metadata.
func (r *MergeRequest) Validate() error {
	for _, key := range slices.Sorted(maps.Keys(r.Values)) {
		if domain.IsReservedKey(key) {
			return domain.NewValidationErrorWithValue("values."+key, "key is reserved", key)
		}
	}

	return nil
}

// ShouldOverwrite returns the overwrite flag, defaulting to true.
func (r *MergeRequest) ShouldOverwrite() bool {
	return r.Overwrite == nil || *r.Overwrite
}

// ContextResponse describes the caller's scope. Values keeps insertion order
// because it is the slot's own JSON encoding.
type ContextResponse struct {
	Count  int             `json:"count"`
	Keys   []string        `json:"keys"`
	Values json.RawMessage `json:"values"`
}
