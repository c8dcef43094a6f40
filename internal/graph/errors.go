// Package graph owns all neuron and synapse records and the adjacency index
// derived from them. The store is the single owner of entity lifetime; the
// index holds only IDs and is maintained alongside every structural change.
package graph

import "errors"

var (
	ErrDuplicateID = errors.New("id already in use")
	ErrNotFound    = errors.New("entity not found")
)
