// Package sqlite implements the repository interfaces on SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite — no CGo, no C toolchain, works
// everywhere Go compiles. The blank import registers the driver with
// database/sql under the name "sqlite".
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface (user, question, answer, stats) in this package's files.
type DB struct {
	conn *sql.DB
}

// dsnOptions are appended to every database path.
//
// foreign_keys and busy_timeout are PER-CONNECTION settings in SQLite, so
// they must travel in the DSN — the driver then applies them to each new
// pooled connection. A one-off `PRAGMA` Exec would configure whichever
// single connection the pool handed out and leave the rest with foreign
// keys OFF (no cascade!) and no busy timeout.
//
//   - journal_mode(WAL): concurrent reads while a write is in flight —
//     important when the view counter is bumped on every detail read.
//   - foreign_keys(1): OFF by default in SQLite; must be ON for the
//     question → answers ON DELETE CASCADE to fire.
//   - busy_timeout(5000): a second writer waits for the lock instead of
//     failing immediately with SQLITE_BUSY.
//   - _txlock=immediate: transactions take the write lock at BEGIN, so a
//     read-then-write transaction (accept) queues behind other writers
//     rather than aborting mid-upgrade with SQLITE_BUSY_SNAPSHOT.
const dsnOptions = "?_txlock=immediate" +
	"&_pragma=journal_mode(WAL)" +
	"&_pragma=foreign_keys(1)" +
	"&_pragma=busy_timeout(5000)"

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/board.db" — file-based, persistent
//   - ":memory:"      — in-memory, used by tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its OWN empty
	// database. Pin the pool to a single connection so tests (and every
	// goroutine in them) see the same store.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// sql.Open is lazy; Ping forces a real connection so a bad path or
	// permissions problem surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start.
//
// Tags are stored comma-joined in a single column; the board's tag filter is
// an exact-membership match, which LIKE on the delimited form handles
// without a join table.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			avatar        TEXT NOT NULL DEFAULT '',
			bio           TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS questions (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL,
			code_snippet TEXT NOT NULL DEFAULT '',
			language     TEXT NOT NULL DEFAULT 'javascript',
			tags         TEXT NOT NULL DEFAULT '',
			author_id    TEXT NOT NULL REFERENCES users(id),
			views        INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_questions_created_at ON questions(created_at);
		CREATE INDEX IF NOT EXISTS idx_questions_language   ON questions(language);
		CREATE INDEX IF NOT EXISTS idx_questions_author_id  ON questions(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating questions table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS answers (
			id           TEXT PRIMARY KEY,
			question_id  TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			content      TEXT NOT NULL,
			code_snippet TEXT NOT NULL DEFAULT '',
			author_id    TEXT NOT NULL REFERENCES users(id),
			is_accepted  INTEGER NOT NULL DEFAULT 0,
			votes        INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id);
	`)
	if err != nil {
		return fmt.Errorf("creating answers table: %w", err)
	}

	return nil
}
