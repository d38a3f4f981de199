package repositories

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteScoreRepository struct {
	db *sql.DB
}

func NewSQLiteScoreRepository(ctx context.Context, path string, migrations string) (ScoreRepository, error) {
	// Several worker processes share the file; wait out their write locks.
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	statements, err := readMigrations(migrations)
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range statements {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i, err)
		}
	}

	return &SQLiteScoreRepository{
		db: db,
	}, nil
}

func (r *SQLiteScoreRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteScoreRepository) LoadScores(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT player_id, wins FROM scores")
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %v", err)
	}
	defer rows.Close()

	scores := make(map[int]int)
	for rows.Next() {
		var id, wins int
		if err := rows.Scan(&id, &wins); err != nil {
			return nil, fmt.Errorf("failed to scan score: %v", err)
		}
		scores[id] = wins
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scores: %v", err)
	}
	if len(scores) == 0 {
		return nil, &ErrNotFound{Store: "sqlite"}
	}

	return scores, nil
}

func (r *SQLiteScoreRepository) SaveScores(ctx context.Context, scores map[int]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM scores"); err != nil {
		return fmt.Errorf("failed to clear scores: %v", err)
	}
	for id, wins := range scores {
		q := `
		INSERT INTO scores (player_id, wins, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP);
		`
		if _, err := tx.ExecContext(ctx, q, id, wins); err != nil {
			return fmt.Errorf("failed to insert score: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}
