package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database tables.
// These run on startup to ensure tables exist.
// The balance columns on friends and users are derived caches written only
// by the ledger recompute paths.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    avatar TEXT NOT NULL DEFAULT '',
    total_owed_to_you REAL NOT NULL DEFAULT 0,
    total_you_owe REAL NOT NULL DEFAULT 0,
    net_balance REAL NOT NULL DEFAULT 0,
    is_verified INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS friends (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    avatar TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    balance REAL NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    friend_id TEXT NOT NULL,
    type TEXT NOT NULL,
    description TEXT NOT NULL,
    bill_total REAL NOT NULL DEFAULT 0,
    user_expense REAL NOT NULL DEFAULT 0,
    friend_expense REAL NOT NULL DEFAULT 0,
    paid_by TEXT NOT NULL DEFAULT '',
    amount REAL NOT NULL DEFAULT 0,
    settled_by TEXT NOT NULL DEFAULT '',
    balance_after REAL NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
    FOREIGN KEY (friend_id) REFERENCES friends(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_friends_user_id ON friends(user_id, is_active);
CREATE INDEX IF NOT EXISTS idx_friends_user_email ON friends(user_id, email);
CREATE INDEX IF NOT EXISTS idx_transactions_pair ON transactions(user_id, friend_id, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, is_active);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
