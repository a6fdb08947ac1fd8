package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/sprintboard/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveSession replaces the stored session user. The session table holds
// at most one row.
func (s *SQLiteStore) SaveSession(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshaling session user: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("clearing previous session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO session (id, user_json, saved_at) VALUES (?, ?, ?)",
		uuid.New().String(), string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	return tx.Commit()
}

// LoadSession returns the stored session user, or nil when no session
// has been saved.
func (s *SQLiteStore) LoadSession(ctx context.Context) (*model.User, error) {
	var userJSON string
	err := s.db.GetContext(ctx, &userJSON,
		"SELECT user_json FROM session ORDER BY saved_at DESC LIMIT 1",
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var user model.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("unmarshaling session user: %w", err)
	}

	return &user, nil
}

// ClearSession removes any stored session.
func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// SaveBoardPrefs inserts or replaces the board preferences of a project.
func (s *SQLiteStore) SaveBoardPrefs(ctx context.Context, prefs BoardPrefs) error {
	// JSON object keys are strings; convert the sprint id keys.
	assignees := make(map[string]int, len(prefs.SprintAssignees))
	for sprintID, userID := range prefs.SprintAssignees {
		assignees[strconv.Itoa(sprintID)] = userID
	}
	assigneesJSON, err := json.Marshal(assignees)
	if err != nil {
		return fmt.Errorf("marshaling sprint assignees: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO board_prefs (
			project_id, backlog_assignee, show_finished, sprint_assignees, updated_at
		) VALUES (?, ?, ?, ?, ?)`,
		prefs.ProjectID, prefs.BacklogAssignee,
		boolToInt(prefs.ShowFinished), string(assigneesJSON), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving board prefs for project %d: %w", prefs.ProjectID, err)
	}

	return nil
}

// LoadBoardPrefs returns the stored board preferences for a project, or
// nil when none have been saved.
func (s *SQLiteStore) LoadBoardPrefs(
	ctx context.Context,
	projectID int,
) (*BoardPrefs, error) {
	var (
		backlogAssignee int
		showFinished    int
		assigneesJSON   string
	)
	row := s.db.QueryRowxContext(ctx, `
		SELECT backlog_assignee, show_finished, sprint_assignees
		FROM board_prefs WHERE project_id = ?`, projectID,
	)
	err := row.Scan(&backlogAssignee, &showFinished, &assigneesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading board prefs for project %d: %w", projectID, err)
	}

	var raw map[string]int
	if err := json.Unmarshal([]byte(assigneesJSON), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling sprint assignees: %w", err)
	}
	assignees := make(map[int]int, len(raw))
	for key, userID := range raw {
		sprintID, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		assignees[sprintID] = userID
	}

	return &BoardPrefs{
		ProjectID:       projectID,
		SprintAssignees: assignees,
		BacklogAssignee: backlogAssignee,
		ShowFinished:    showFinished != 0,
	}, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
