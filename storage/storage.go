// Package storage persists command usage in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	_ "modernc.org/sqlite"
)

// Usage is a single dispatched invocation.
type Usage struct {
	Command string
	UserID  snowflake.ID
	GuildID *snowflake.ID
	Success bool
	At      time.Time
}

// CommandCount is a command path with the number of times it ran.
type CommandCount struct {
	Command string
	Count   int
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and makes sure the schema
// exists. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite serialises writers anyway, and an in-memory database only
	// lives as long as its connection.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err = s.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS command_usage (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			command TEXT NOT NULL,
			user_id TEXT NOT NULL,
			guild_id TEXT,
			success INTEGER NOT NULL,
			used_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS command_usage_command ON command_usage (command);`,
	}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordUsage stores u. A zero At is replaced with the current time.
func (s *Store) RecordUsage(ctx context.Context, u Usage) error {
	if u.At.IsZero() {
		u.At = time.Now()
	}
	var guildID sql.NullString
	if u.GuildID != nil {
		guildID = sql.NullString{String: u.GuildID.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO command_usage (command, user_id, guild_id, success, used_at) VALUES (?, ?, ?, ?, ?)",
		u.Command, u.UserID.String(), guildID, u.Success, u.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record usage of %q: %w", u.Command, err)
	}
	return nil
}

// Usage returns how many times command has been invoked, failures included.
func (s *Store) Usage(ctx context.Context, command string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM command_usage WHERE command = ?", command).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usage of %q: %w", command, err)
	}
	return count, nil
}

// TopCommands returns the limit most used commands, most used first.
func (s *Store) TopCommands(ctx context.Context, limit int) ([]CommandCount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT command, COUNT(*) AS uses FROM command_usage GROUP BY command ORDER BY uses DESC, command ASC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top commands: %w", err)
	}
	defer rows.Close()

	var top []CommandCount
	for rows.Next() {
		var c CommandCount
		if err := rows.Scan(&c.Command, &c.Count); err != nil {
			return nil, fmt.Errorf("scan top commands: %w", err)
		}
		top = append(top, c)
	}
	return top, rows.Err()
}

// UserUsage returns how many commands userID has run successfully since.
func (s *Store) UserUsage(ctx context.Context, userID snowflake.ID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM command_usage WHERE user_id = ? AND success = 1 AND used_at >= ?",
		userID.String(), since.UnixMilli(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usage of %s: %w", userID, err)
	}
	return count, nil
}
