package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session (
	id        TEXT PRIMARY KEY,
	user_json TEXT NOT NULL,
	saved_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS board_prefs (
	project_id       INTEGER PRIMARY KEY,
	backlog_assignee INTEGER NOT NULL DEFAULT 0,
	show_finished    INTEGER NOT NULL DEFAULT 0 CHECK(show_finished IN (0, 1)),
	sprint_assignees TEXT NOT NULL DEFAULT '{}',
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
