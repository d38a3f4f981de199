package repositories

import (
	"context"
	"fmt"

	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/jackc/pgx/v5"
)

type PostgresScoreRepository struct {
	conn *pgx.Conn
}

// NewPostgresScoreRepository connects to the database and applies the
// migrations in the given directory. The caller is responsible for calling
// Close() on the repository.
func NewPostgresScoreRepository(ctx context.Context, connStr string, migrations string) (ScoreRepository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}
	log.Debug("Connected to %s as %s", database, username)

	statements, err := readMigrations(migrations)
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}
	for i, migration := range statements {
		if _, err := conn.Exec(ctx, migration); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("failed to execute migration %d: %v", i, err)
		}
	}

	return &PostgresScoreRepository{
		conn: conn,
	}, nil
}

func (r *PostgresScoreRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresScoreRepository) LoadScores(ctx context.Context) (map[int]int, error) {
	rows, err := r.conn.Query(ctx, "SELECT player_id, wins FROM scores")
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %v", err)
	}
	defer rows.Close()

	scores := make(map[int]int)
	for rows.Next() {
		var id, wins int32
		if err := rows.Scan(&id, &wins); err != nil {
			return nil, fmt.Errorf("failed to scan score: %v", err)
		}
		scores[int(id)] = int(wins)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scores: %v", err)
	}
	if len(scores) == 0 {
		return nil, &ErrNotFound{Store: "postgres"}
	}

	return scores, nil
}

func (r *PostgresScoreRepository) SaveScores(ctx context.Context, scores map[int]int) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	for id, wins := range scores {
		q := `
		INSERT INTO scores (player_id, wins, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (player_id) DO UPDATE SET wins = $2, updated_at = now();
		`
		if _, err := tx.Exec(ctx, q, id, wins); err != nil {
			return fmt.Errorf("failed to upsert score: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}
