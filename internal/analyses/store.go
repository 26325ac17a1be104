package analyses

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"resume-match-api/internal/shared/storage/db"
)

// DefaultListLimit applies when List is called with limit <= 0.
const DefaultListLimit = 20

const StoreKindMemory = "memory"

// Store persists analysis results. Implementations are safe for concurrent use.
type Store interface {
	// Create assigns an ID and creation time and stores the record.
	Create(ctx context.Context, draft Draft) (AnalysisResult, error)
	// Get returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (AnalysisResult, error)
	// List returns at most limit records, newest first.
	List(ctx context.Context, limit int) ([]AnalysisResult, error)
}

// StoreConfig selects the backend. An empty DatabaseURL selects the in-memory store.
type StoreConfig struct {
	DatabaseURL string
	Pool        db.Options
	// Shared reuses one process-wide connection pool across invocations (Lambda).
	Shared bool
	// SkipMigrations leaves the schema untouched; cmd/migrate owns it.
	SkipMigrations bool
}

// NewStore builds the configured backend. Connection or migration failures are returned, never masked.
func NewStore(ctx context.Context, cfg StoreConfig) (Store, string, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return NewMemoryStore(), StoreKindMemory, nil
	}

	_, _, dialect := db.ParseURL(cfg.DatabaseURL)
	var (
		conn *sql.DB
		err  error
	)
	if cfg.Shared {
		conn, err = db.GetSingleton(ctx, cfg.DatabaseURL, cfg.Pool)
	} else {
		conn, err = db.Connect(ctx, cfg.DatabaseURL, cfg.Pool)
	}
	if err != nil {
		return nil, "", fmt.Errorf("connect analysis store: %w", err)
	}
	if !cfg.SkipMigrations {
		if err := db.RunMigrations(ctx, conn, dialect); err != nil {
			if !cfg.Shared {
				conn.Close()
			}
			return nil, "", fmt.Errorf("migrate analysis store: %w", err)
		}
	}
	return NewSQLStore(conn, dialect), string(dialect), nil
}
