package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheets/pkg/types"
)

func i64(n int64) *int64 { return &n }
func str(s string) *string { return &s }

// testSystemDoc describes a small game system used across the engine tests:
// an obligatory main part and torso, an optional pouch and spell, and a
// handful of permitted attributes.
func testSystemDoc() SystemDoc {
	return SystemDoc{
		PermittedParts: []SystemPartDoc{
			{PartName: "character", PartType: "Main", Obligatory: true},
			{PartName: "torso", PartType: "Body", Obligatory: true},
			{PartName: "pouch", PartType: "InventoryItem", Obligatory: false},
			{PartName: "spell", PartType: "Ability", Obligatory: false},
		},
		PermittedAttributes: []SystemAttributeDoc{
			{Key: "strength", AttributeType: 0, AttributeDescription: "Raw power", PartName: "character", PartType: "Main", Obligatory: true},
			{Key: "flavor", AttributeType: 1, AttributeDescription: "Flavor text", PartName: "character", PartType: "Main", Obligatory: false},
			{Key: "toughness", AttributeType: 0, AttributeDescription: "Damage soak", PartName: "torso", PartType: "Body", Obligatory: true},
			{Key: "capacity", AttributeType: 0, AttributeDescription: "Carrying capacity", PartName: "pouch", PartType: "InventoryItem", Obligatory: false},
			{Key: "level", AttributeType: 0, AttributeDescription: "Spell level", PartName: "spell", PartType: "Ability", Obligatory: false},
		},
	}
}

// newTestCatalog creates a fresh game system in a temp directory and returns
// its loaded catalog.
func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cfg := types.Config{DataDir: t.TempDir(), System: "wonder"}
	cat, err := CreateSystem(cfg, testSystemDoc())
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

// newTestSheetDB opens a bare sheet store with schema applied, bypassing the
// catalog, for store-level tests.
func newTestSheetDB(t *testing.T) *sql.DB {
	t.Helper()
	handle := newConn(filepath.Join(t.TempDir(), "sheet.db"))
	db, err := handle.open()
	require.NoError(t, err)
	t.Cleanup(func() { handle.close() })
	require.NoError(t, applyDDL(db, sheetDDL))
	return db
}

// validDoc builds a new document satisfying the test system's schema.
func validDoc(name string) *types.CompleteCharacter {
	return &types.CompleteCharacter{
		Name:     name,
		TypeName: "character",
		Speed:    30,
		Attributes: []types.AttributePair{
			{Key: types.AttributeKey{Key: "strength"}, Value: types.AttributeValue{ValueNum: i64(12)}},
		},
		Parts: []types.CharacterPart{
			{
				Name:     "torso",
				TypeName: "torso",
				Kind:     types.PartBody,
				Attributes: []types.AttributePair{
					{Key: types.AttributeKey{Key: "toughness"}, Value: types.AttributeValue{ValueNum: i64(3)}},
				},
			},
		},
	}
}

// countRows counts rows in a table, optionally constrained by a WHERE clause.
func countRows(t *testing.T, db querier, table, where string, args ...any) int {
	t.Helper()
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRow(q, args...).Scan(&n))
	return n
}
