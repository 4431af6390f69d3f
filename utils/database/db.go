package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the sqlite-backed case and configuration store.
type Store struct {
	db *sqlx.DB
}

// Init opens the database at dbPath and ensures all tables exist.
func Init(dbPath string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// sqlite serialises writers anyway; one connection also keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func dsn(dbPath string) string {
	if dbPath == ":memory:" || strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_busy_timeout=5000&_journal_mode=WAL"
}

func migrate(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS cases (
			case_id TEXT PRIMARY KEY,
			guild_id TEXT NOT NULL,
			target_user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			reason TEXT NOT NULL,
			issuer_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			duration_seconds INTEGER,
			proofs TEXT NOT NULL DEFAULT '[]',
			approved BOOLEAN NOT NULL DEFAULT 0,
			approver_id TEXT NOT NULL DEFAULT '',
			request_state TEXT NOT NULL DEFAULT '',
			log_channel_id TEXT NOT NULL DEFAULT '',
			log_message_id TEXT NOT NULL DEFAULT '',
			request_channel_id TEXT NOT NULL DEFAULT '',
			request_message_id TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cases_guild_created ON cases (guild_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_cases_guild_target ON cases (guild_id, target_user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_cases_guild_issuer ON cases (guild_id, issuer_id);`,
		`CREATE TABLE IF NOT EXISTS modcases (
			guild_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			modcase_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (guild_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS guild_moderation (
			guild_id TEXT PRIMARY KEY,
			warn_mute_request_role TEXT NOT NULL DEFAULT '',
			kick_ban_role TEXT NOT NULL DEFAULT '',
			whitelist_role TEXT NOT NULL DEFAULT '',
			log_channel TEXT NOT NULL DEFAULT '',
			ban_request_channel TEXT NOT NULL DEFAULT '',
			action_proofs_channel TEXT NOT NULL DEFAULT ''
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
