package db

import (
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_slug TEXT NOT NULL,
  store_name TEXT NOT NULL,
  title TEXT NOT NULL,
  price REAL NOT NULL CHECK (price >= 0),
  currency TEXT NOT NULL DEFAULT 'USD',
  image TEXT,
  images_json TEXT,
  external_url TEXT,
  description TEXT,
  synced_at DATETIME NOT NULL,
  UNIQUE(store_slug, title)
);
CREATE INDEX IF NOT EXISTS idx_products_store_slug ON products(store_slug);
`

// OpenSQLite opens (and if needed creates) a SQLite catalog. dsn may carry a
// "sqlite://" prefix; ":memory:" gives a private in-memory database.
func OpenSQLite(dsn string) (*sqlx.DB, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// IsSQLite reports whether a DATABASE_URL points at SQLite.
func IsSQLite(url string) bool {
	return strings.HasPrefix(url, "sqlite://") || strings.HasSuffix(url, ".db") || url == ":memory:"
}
