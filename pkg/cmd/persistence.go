// Package cmd wires the shared infrastructure used by the service binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tramio/tramio/pkg/persistence"
	"github.com/tramio/tramio/pkg/persistence/file"
	"github.com/tramio/tramio/pkg/persistence/postgresql"
)

// NewPersistence picks the storage backend from the database URL scheme:
// postgres URLs get the relational store, anything else is treated as a
// directory path for the JSON file store.
//
//nolint:ireturn // callers program against the persistence interface
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}
