// Package sqlite implements the character-sheet persistence engine: the root
// catalog store, per-character sheet stores, the permitted-schema registry,
// and the transactional save/load of complete characters.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// paramLimit bounds how many rows a single batched statement may touch.
// Chunking exists purely to respect the store's per-statement parameter
// ceiling, not for performance tuning.
const paramLimit = 999

// openPragmas is applied once per connection, when a store file is opened.
const openPragmas = `
PRAGMA foreign_keys = off;
PRAGMA journal_mode = WAL;
PRAGMA synchronous = off;
PRAGMA temp_store = memory;
`

// closeStatements tidies a store before the handle is released.
const closeStatements = `PRAGMA optimize;`

// conn is a lazily-opened handle on one store file. The handle stays open
// for the duration of a session; access is serialized through a single
// underlying connection so transactions see a consistent store.
type conn struct {
	path string
	db   *sql.DB
}

// newConn records the store path without opening it.
func newConn(path string) *conn {
	return &conn{path: path}
}

// open returns the store handle, opening the file on first use.
func (c *conn) open() (*sql.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", c.path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(openPragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying pragmas to %s: %w", c.path, err)
	}
	c.db = db
	return c.db, nil
}

// close tidies and releases the handle. Idempotent.
func (c *conn) close() error {
	if c.db == nil {
		return nil
	}
	_, _ = c.db.Exec(closeStatements)
	err := c.db.Close()
	c.db = nil
	if err != nil {
		return fmt.Errorf("closing store %s: %w", c.path, err)
	}
	return nil
}

// removeStoreFiles deletes a store file together with the -wal and -shm
// sidecars a WAL-mode handle leaves behind when it was not closed cleanly.
func removeStoreFiles(path string) error {
	for _, sidecar := range []string{path + "-wal", path + "-shm"} {
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", sidecar, err)
		}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx, so read helpers can run
// inside or outside a transaction.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
