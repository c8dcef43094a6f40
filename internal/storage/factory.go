package storage

import "fmt"

// NewStore builds a snapshot store for the configured backend. An empty kind
// selects the memory backend.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	}
	return nil, fmt.Errorf("unknown store kind %q (want memory or sqlite)", kind)
}

// CloseIfSupported closes backends holding external resources; the memory
// store has nothing to release.
func CloseIfSupported(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
