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

CREATE TABLE IF NOT EXISTS tasks (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	priority          INTEGER NOT NULL DEFAULT 5 CHECK(priority BETWEEN 1 AND 10),
	estimated_time    INTEGER NOT NULL,
	actual_time       INTEGER,
	distraction_level INTEGER CHECK(distraction_level IS NULL OR distraction_level BETWEEN 1 AND 5),
	completed         INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	completed_at      DATETIME,
	created_at        DATETIME NOT NULL,
	owner_id          TEXT,
	is_later          INTEGER NOT NULL DEFAULT 0 CHECK(is_later IN (0, 1)),
	is_focus          INTEGER NOT NULL DEFAULT 0 CHECK(is_focus IN (0, 1)),
	is_mind_map_only  INTEGER NOT NULL DEFAULT 0 CHECK(is_mind_map_only IN (0, 1)),
	archived          INTEGER NOT NULL DEFAULT 0 CHECK(archived IN (0, 1))
);

CREATE TABLE IF NOT EXISTS events (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	due_date     DATETIME NOT NULL,
	priority     INTEGER NOT NULL DEFAULT 5,
	completed    INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	completed_at DATETIME,
	created_at   DATETIME NOT NULL,
	owner_id     TEXT
);

CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks(owner_id);
CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);
CREATE INDEX IF NOT EXISTS idx_events_owner_id ON events(owner_id);
CREATE INDEX IF NOT EXISTS idx_events_due_date ON events(due_date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
