package repositories

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
)

// ScoreRepository persists the win count of each slot.
type ScoreRepository interface {
	// LoadScores returns the stored win counts keyed by slot id. It returns
	// ErrNotFound when nothing has been stored yet.
	LoadScores(ctx context.Context) (map[int]int, error)
	// SaveScores replaces the stored table with scores.
	SaveScores(ctx context.Context, scores map[int]int) error
	Close(ctx context.Context) error
}

// NewScoreRepository picks a backend from the URL scheme:
//
//	file://scores.txt              flat text table (default)
//	sqlite://racetrack.db          SQLite, migrated from migrationsDir/sqlite
//	postgresql://user@host/db      Postgres, migrated from migrationsDir/postgres
func NewScoreRepository(ctx context.Context, rawURL string, migrationsDir string) (ScoreRepository, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse score url: %v", err)
	}

	switch u.Scheme {
	case "", "file":
		path := u.Host + u.Path
		if u.Scheme == "" {
			path = rawURL
		}
		return NewFileScoreRepository(path), nil
	case "sqlite":
		return NewSQLiteScoreRepository(ctx, u.Host+u.Path, filepath.Join(migrationsDir, "sqlite"))
	case "postgres", "postgresql":
		return NewPostgresScoreRepository(ctx, u.String(), filepath.Join(migrationsDir, "postgres"))
	default:
		return nil, fmt.Errorf("unknown score store type %s", u.Scheme)
	}
}
