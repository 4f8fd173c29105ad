package engine

import (
	"errors"

	"github.com/BibekPathak/shark-db/internal/registry"
	"github.com/BibekPathak/shark-db/internal/store"
)

// The engine's error taxonomy. Table and key errors are sentinels matched
// with errors.Is; all are recoverable and map to HTTP statuses in the
// transport layer.
var (
	ErrKeyNotFound   = errors.New("engine: key not found")
	ErrTableNotFound = registry.ErrTableNotFound
	ErrTableExists   = registry.ErrTableExists
	ErrInvalidName   = registry.ErrInvalidName
	ErrInvalidKey    = store.ErrInvalidKey
)
