package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/sheets/pkg/types"
)

// loadAttributesFor bulk-loads the attributes owned by the given entity ids
// and partitions them by owner. The id set is chunked so no single statement
// exceeds the parameter ceiling.
func loadAttributesFor(db querier, owners []int64) (map[int64][]types.AttributePair, error) {
	byOwner := make(map[int64][]types.AttributePair, len(owners))
	for start := 0; start < len(owners); start += paramLimit {
		end := start + paramLimit
		if end > len(owners) {
			end = len(owners)
		}
		chunk := owners[start:end]

		placeholders := strings.Repeat("?,", len(chunk)-1) + "?"
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		rows, err := db.Query(
			"SELECT id, key, value_num, value_text, description, of FROM attributes "+
				"WHERE of IN ("+placeholders+") ORDER BY id ASC", args...)
		if err != nil {
			return nil, fmt.Errorf("loading attributes: %w", err)
		}
		if err := scanAttributeRows(rows, byOwner); err != nil {
			return nil, err
		}
	}
	return byOwner, nil
}

func scanAttributeRows(rows *sql.Rows, byOwner map[int64][]types.AttributePair) error {
	defer rows.Close()
	for rows.Next() {
		var (
			id, of    int64
			key       string
			valueNum  sql.NullInt64
			valueText sql.NullString
			desc      sql.NullString
		)
		if err := rows.Scan(&id, &key, &valueNum, &valueText, &desc, &of); err != nil {
			return fmt.Errorf("scanning attribute: %w", err)
		}
		pair := types.AttributePair{
			Key:   types.AttributeKey{Key: key, Of: of},
			Value: types.AttributeValue{ID: &id},
		}
		if valueNum.Valid {
			pair.Value.ValueNum = &valueNum.Int64
		}
		if valueText.Valid {
			pair.Value.ValueText = &valueText.String
		}
		if desc.Valid {
			pair.Value.Description = &desc.String
		}
		byOwner[of] = append(byOwner[of], pair)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating attributes: %w", err)
	}
	return nil
}

// insertUpdateAttributes reconciles a batch of attribute pairs inside the
// caller's transaction. Pairs without a persisted id become multi-row
// inserts, chunked under the parameter ceiling; pairs with an id are
// replaced by primary key, one statement per row, since a cross-row update
// cannot target different values safely. Any failure aborts the caller's
// transaction: no partial write is observable.
func insertUpdateAttributes(tx *sql.Tx, pairs []types.AttributePair) error {
	var inserts, updates []types.AttributePair
	for _, p := range pairs {
		if p.Value.ID == nil {
			inserts = append(inserts, p)
		} else {
			updates = append(updates, p)
		}
	}

	for start := 0; start < len(inserts); start += paramLimit {
		end := start + paramLimit
		if end > len(inserts) {
			end = len(inserts)
		}
		if err := insertAttributeChunk(tx, inserts[start:end]); err != nil {
			return err
		}
	}

	if len(updates) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(
		"REPLACE INTO attributes (id, key, value_num, value_text, description, of) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing attribute update: %w", err)
	}
	defer stmt.Close()
	for _, p := range updates {
		_, err := stmt.Exec(*p.Value.ID, p.Key.Key, p.Value.ValueNum, p.Value.ValueText, p.Value.Description, p.Key.Of)
		if err != nil {
			return fmt.Errorf("updating attribute %q: %w", p.Key.Key, err)
		}
	}
	return nil
}

// insertAttributeChunk writes one multi-row insert for up to paramLimit
// new attributes.
func insertAttributeChunk(tx *sql.Tx, chunk []types.AttributePair) error {
	if len(chunk) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO attributes (key, value_num, value_text, description, of) VALUES ")
	args := make([]any, 0, len(chunk)*5)
	for i, p := range chunk {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, p.Key.Key, p.Value.ValueNum, p.Value.ValueText, p.Value.Description, p.Key.Of)
	}
	if _, err := tx.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("inserting attributes: %w", err)
	}
	return nil
}
