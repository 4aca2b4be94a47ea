package network

import (
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/statespace"
)

// UpdateOption configures a validated Update call.
type UpdateOption func(*UpdateRequest)

// UpdateRequest is the resolved form of a set of UpdateOptions.
type UpdateRequest struct {
	// Index is the single node to recompute. Negative values count from the
	// end before resolution; after ResolveUpdate it is in [0, N).
	Index int

	// HasIndex reports whether a single-node update was requested.
	HasIndex bool

	// Pin lists nodes whose values are held fixed across a full update.
	Pin []int
}

// WithIndex restricts the update to a single node.
func WithIndex(index int) UpdateOption {
	return func(r *UpdateRequest) {
		r.Index = index
		r.HasIndex = true
	}
}

// WithPin freezes the given nodes during a full update. They still act as
// inputs to the other nodes.
func WithPin(indices ...int) UpdateOption {
	return func(r *UpdateRequest) {
		r.Pin = append(r.Pin, indices...)
	}
}

// ResolveUpdate validates state and options for a public Update entry point
// and returns the normalized request.
func ResolveUpdate(space statespace.Space, state []int, opts ...UpdateOption) (UpdateRequest, error) {
	var req UpdateRequest
	for _, opt := range opts {
		opt(&req)
	}

	if err := space.Check(state); err != nil {
		return UpdateRequest{}, err
	}

	size := space.Size()
	if req.HasIndex {
		if req.Index < -size || req.Index >= size {
			return UpdateRequest{}, neterr.Validationf("index %d out of range for %d nodes", req.Index, size)
		}
		if len(req.Pin) > 0 {
			return UpdateRequest{}, neterr.Validationf("cannot provide both index and pin")
		}
		if req.Index < 0 {
			req.Index += size
		}
	}

	for _, p := range req.Pin {
		if p < 0 || p >= size {
			return UpdateRequest{}, neterr.Validationf("pinned node %d out of range for %d nodes", p, size)
		}
	}

	return req, nil
}
