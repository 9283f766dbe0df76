package sqlite

import (
	"database/sql"
	"fmt"
)

// DDL for a per-character sheet store: the self-referencing entity table,
// the flat attribute table, and the notes table.
const (
	createCharacters = `CREATE TABLE IF NOT EXISTS characters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    uuid TEXT NOT NULL,
    character_type TEXT NOT NULL,
    speed INTEGER NOT NULL,
    weight INTEGER,
    size TEXT,
    hp_total INTEGER,
    hp_current INTEGER,
    belongs_to INTEGER,
    part_type INTEGER NOT NULL
);`

	createAttributes = `CREATE TABLE IF NOT EXISTS attributes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    key TEXT NOT NULL,
    value_num INTEGER,
    value_text TEXT,
    description TEXT,
    of INTEGER NOT NULL
);`

	createNotes = `CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT
);`

	idxCharactersUUID   = `CREATE UNIQUE INDEX IF NOT EXISTS idx_characters_uuid ON characters(uuid);`
	idxCharactersOwner  = `CREATE INDEX IF NOT EXISTS idx_characters_belongs_to ON characters(belongs_to);`
	idxAttributesUnique = `CREATE UNIQUE INDEX IF NOT EXISTS idx_attributes_key_of ON attributes(key, of);`
	idxAttributesOwner  = `CREATE INDEX IF NOT EXISTS idx_attributes_of ON attributes(of);`
)

// DDL for the root catalog store: the character registry and the two
// permitted-schema tables.
const (
	createCharacterDBs = `CREATE TABLE IF NOT EXISTS character_dbs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    uuid TEXT NOT NULL,
    db_path TEXT NOT NULL
);`

	createPermittedParts = `CREATE TABLE IF NOT EXISTS permitted_parts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    part_name TEXT NOT NULL,
    part_type INTEGER NOT NULL,
    obligatory INTEGER NOT NULL
);`

	createPermittedAttributes = `CREATE TABLE IF NOT EXISTS permitted_attributes (
    key TEXT NOT NULL,
    attribute_type INTEGER NOT NULL,
    attribute_description TEXT NOT NULL,
    part_name TEXT NOT NULL,
    part_type INTEGER NOT NULL,
    obligatory INTEGER NOT NULL
);`

	idxCharacterDBsKey = `CREATE UNIQUE INDEX IF NOT EXISTS idx_character_dbs_key ON character_dbs(name, uuid);`
	idxPermittedParts  = `CREATE UNIQUE INDEX IF NOT EXISTS idx_permitted_parts_key ON permitted_parts(part_name, part_type);`
	idxPermittedAttrs  = `CREATE UNIQUE INDEX IF NOT EXISTS idx_permitted_attributes_key ON permitted_attributes(key);`
)

// sheetDDL lists everything a fresh character store needs, in order.
var sheetDDL = []string{
	createCharacters,
	createAttributes,
	createNotes,
	idxCharactersUUID,
	idxCharactersOwner,
	idxAttributesUnique,
	idxAttributesOwner,
}

// rootDDL lists everything a fresh root catalog store needs, in order.
var rootDDL = []string{
	createCharacterDBs,
	createPermittedParts,
	createPermittedAttributes,
	idxCharacterDBsKey,
	idxPermittedParts,
	idxPermittedAttrs,
}

// applyDDL executes a DDL list. Table creation is forward-only: statements
// are IF NOT EXISTS and nothing is ever migrated or dropped.
func applyDDL(db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
