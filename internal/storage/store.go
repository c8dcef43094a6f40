package storage

import (
	"context"

	"neurograph/internal/model"
)

// Store persists whole-network snapshots by name.
type Store interface {
	Init(ctx context.Context) error
	SaveNetwork(ctx context.Context, snapshot model.NetworkSnapshot) error
	GetNetwork(ctx context.Context, name string) (model.NetworkSnapshot, bool, error)
	ListNetworks(ctx context.Context) ([]string, error)
	DeleteNetwork(ctx context.Context, name string) error
}
