package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/sheets/pkg/types"
)

const entityColumns = "id, name, uuid, character_type, speed, weight, size, hp_total, hp_current, belongs_to, part_type"

// loadComplete assembles the full aggregate from one sheet store: the single
// root entity, every sub-part, all their attributes, and the sheet notes.
// A pure read; callers needing a snapshot across concurrent writers must
// serialize externally.
func loadComplete(db querier) (*types.CompleteCharacter, error) {
	roots, err := queryEntities(db, "WHERE belongs_to IS NULL ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	switch {
	case len(roots) == 0:
		return nil, fmt.Errorf("no root entity in store: %w", types.ErrNotFound)
	case len(roots) > 1:
		// Two roots means the one-root invariant is broken in the data;
		// surface it instead of picking one.
		return nil, fmt.Errorf("store holds %d root entities, expected exactly one", len(roots))
	}
	root := roots[0]

	parts, err := queryEntities(db, "WHERE belongs_to IS NOT NULL ORDER BY id ASC")
	if err != nil {
		return nil, err
	}

	owners := make([]int64, 0, len(parts)+1)
	owners = append(owners, *root.ID)
	for _, p := range parts {
		owners = append(owners, *p.ID)
	}
	byOwner, err := loadAttributesFor(db, owners)
	if err != nil {
		return nil, err
	}
	for i := range parts {
		parts[i].Attributes = byOwner[*parts[i].ID]
	}

	notes, err := loadNotes(db)
	if err != nil {
		return nil, err
	}

	return &types.CompleteCharacter{
		ID:         root.ID,
		Name:       root.Name,
		UUID:       root.UUID,
		TypeName:   root.TypeName,
		Speed:      root.Speed,
		Weight:     root.Weight,
		Size:       root.Size,
		HPTotal:    root.HPTotal,
		HPCurrent:  root.HPCurrent,
		Attributes: byOwner[*root.ID],
		Parts:      parts,
		Notes:      notes,
	}, nil
}

// queryEntities reads character rows matching the given clause.
func queryEntities(db querier, clause string) ([]types.CharacterPart, error) {
	rows, err := db.Query("SELECT " + entityColumns + " FROM characters " + clause)
	if err != nil {
		return nil, fmt.Errorf("loading entities: %w", err)
	}
	defer rows.Close()

	var out []types.CharacterPart
	for rows.Next() {
		var (
			p         types.CharacterPart
			id, kind  int64
			weight    sql.NullInt64
			size      sql.NullString
			hpTotal   sql.NullInt64
			hpCurrent sql.NullInt64
			belongsTo sql.NullInt64
		)
		err := rows.Scan(&id, &p.Name, &p.UUID, &p.TypeName, &p.Speed,
			&weight, &size, &hpTotal, &hpCurrent, &belongsTo, &kind)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		p.ID = &id
		p.Kind = types.PartKindFromInt(kind)
		if weight.Valid {
			p.Weight = &weight.Int64
		}
		if size.Valid {
			p.Size = &size.String
		}
		if hpTotal.Valid {
			p.HPTotal = &hpTotal.Int64
		}
		if hpCurrent.Valid {
			p.HPCurrent = &hpCurrent.Int64
		}
		if belongsTo.Valid {
			p.BelongsTo = &belongsTo.Int64
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return out, nil
}

// saveComplete reconciles a candidate aggregate into the sheet store inside
// one transaction. Validation runs first and aborts on the first violation;
// the write phase then updates existing rows in place, purges rows whose
// uuid left the document, and finally inserts the queued new rows. Either
// everything lands or nothing does.
func saveComplete(db *sql.DB, c *types.CompleteCharacter, reg *Registry) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	occupied, err := validateAgainstStore(tx, c, reg.Rules())
	if err != nil {
		return err
	}
	if err := writeAggregate(tx, c, occupied); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

// validateAgainstStore runs the five save preconditions in order: identity
// collision, main-type permission, part permission, obligatory-part
// completeness, and per-entity attribute permission. All are pure reads.
// It reports whether the store already holds a root entity, since the write
// phase must decide insert-vs-update from the store, not from the document.
func validateAgainstStore(tx *sql.Tx, c *types.CompleteCharacter, rules *types.Ruleset) (bool, error) {
	var (
		exID           int64
		exName, exUUID string
	)
	err := tx.QueryRow(
		"SELECT id, name, uuid FROM characters WHERE belongs_to IS NULL AND part_type = ?",
		int64(types.PartMain)).Scan(&exID, &exName, &exUUID)
	hasRoot := err == nil
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("checking sheet occupant: %w", err)
	}
	if hasRoot && (c.ID == nil || *c.ID != exID) {
		return false, types.SchemaViolationf(
			"a character already exists on this sheet: name %q, uuid %s", exName, exUUID)
	}

	if !rules.PartPermitted(c.TypeName, types.PartMain) {
		return false, types.SchemaViolationf("main type %q not permitted in this system", c.TypeName)
	}

	// The obligatory check is count-based: the main part satisfies one slot
	// and each obligatory sub-part one more. A count below the schema's
	// obligatory total means at least one obligatory part is absent.
	obligatory := 1
	for i := range c.Parts {
		p := &c.Parts[i]
		if !rules.PartPermitted(p.TypeName, p.Kind) {
			return false, types.SchemaViolationf("forbidden part %q (%s)", p.TypeName, p.Kind)
		}
		if rules.PartObligatory(p.TypeName, p.Kind) {
			obligatory++
		}
	}
	if obligatory < rules.ObligatoryPartCount() {
		return false, types.SchemaViolationf("obligatory part missing")
	}

	if err := rules.CheckAttributes(c.Attributes, c.TypeName, types.PartMain); err != nil {
		return false, err
	}
	for i := range c.Parts {
		p := &c.Parts[i]
		if err := rules.CheckAttributes(p.Attributes, p.TypeName, p.Kind); err != nil {
			return false, err
		}
	}
	return hasRoot, nil
}

// writeAggregate performs the write phase of a save. The candidate is
// mutated in place: fresh uuids and storage-assigned ids are filled in as
// rows are created.
func writeAggregate(tx *sql.Tx, c *types.CompleteCharacter, occupied bool) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}

	// A document can carry ids from the store it was loaded out of while
	// being written to an empty one, as when a loaded character is renamed
	// and saved under the new name. Ids only mean anything inside the store
	// being written: when it holds no root, everything inserts as new rows.
	if !occupied {
		c.ID = nil
		for i := range c.Attributes {
			c.Attributes[i].Value.ID = nil
		}
		for i := range c.Parts {
			c.Parts[i].ID = nil
		}
	}

	var rootID int64
	if c.ID != nil {
		rootID = *c.ID
		if err := updateEntity(tx, rootID, rootRow(c)); err != nil {
			return err
		}
	} else {
		id, err := insertEntity(tx, rootRow(c))
		if err != nil {
			return err
		}
		rootID = id
		c.ID = &rootID
	}

	pairs := make([]types.AttributePair, 0, len(c.Attributes))
	for _, a := range c.Attributes {
		a.Key.Of = rootID
		pairs = append(pairs, a)
	}

	// Update existing parts in place; queue the rest for insertion after
	// the stale purge.
	var newParts []*types.CharacterPart
	for i := range c.Parts {
		p := &c.Parts[i]
		if p.UUID == "" {
			p.UUID = uuid.NewString()
		}
		p.BelongsTo = &rootID
		if p.ID == nil {
			newParts = append(newParts, p)
			continue
		}
		if err := updateEntity(tx, *p.ID, *p); err != nil {
			return err
		}
		for _, a := range p.Attributes {
			a.Key.Of = *p.ID
			pairs = append(pairs, a)
		}
	}

	// Purge rows whose uuid is no longer in the document, attributes first.
	// Deleting before inserting the queued rows avoids a transient window
	// with duplicate uuids inside the transaction.
	keep := make(map[string]bool, len(c.Parts)+1)
	keep[c.UUID] = true
	for i := range c.Parts {
		keep[c.Parts[i].UUID] = true
	}
	if err := purgeStaleEntities(tx, keep); err != nil {
		return err
	}

	for _, p := range newParts {
		id, err := insertEntity(tx, *p)
		if err != nil {
			return err
		}
		p.ID = &id
		for j := range p.Attributes {
			p.Attributes[j].Key.Of = id
			p.Attributes[j].Value.ID = nil
			pairs = append(pairs, p.Attributes[j])
		}
	}

	return insertUpdateAttributes(tx, pairs)
}

// rootRow views the aggregate root as a bare entity row.
func rootRow(c *types.CompleteCharacter) types.CharacterPart {
	row := c.RootPart()
	row.BelongsTo = nil
	return row
}

// insertEntity writes one new character row and returns its assigned id.
func insertEntity(tx *sql.Tx, p types.CharacterPart) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO characters (name, uuid, character_type, speed, weight, size, hp_total, hp_current, belongs_to, part_type) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.Name, p.UUID, p.TypeName, p.Speed, p.Weight, p.Size, p.HPTotal, p.HPCurrent, p.BelongsTo, int64(p.Kind))
	if err != nil {
		return 0, fmt.Errorf("inserting entity %q: %w", p.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted entity id: %w", err)
	}
	return id, nil
}

// updateEntity rewrites one character row in place by id. An id that matches
// no row is a stale document, not a silent no-op.
func updateEntity(tx *sql.Tx, id int64, p types.CharacterPart) error {
	res, err := tx.Exec(
		"UPDATE characters SET name = ?, uuid = ?, character_type = ?, speed = ?, weight = ?, size = ?, "+
			"hp_total = ?, hp_current = ?, belongs_to = ?, part_type = ? WHERE id = ?",
		p.Name, p.UUID, p.TypeName, p.Speed, p.Weight, p.Size, p.HPTotal, p.HPCurrent, p.BelongsTo, int64(p.Kind), id)
	if err != nil {
		return fmt.Errorf("updating entity %q: %w", p.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update of entity %q: %w", p.Name, err)
	}
	if affected == 0 {
		return fmt.Errorf("entity %q carries id %d but the store has no such row: %w",
			p.Name, id, types.ErrNotFound)
	}
	return nil
}

// purgeStaleEntities deletes every character row whose uuid is not in the
// keep set, along with its attribute rows.
func purgeStaleEntities(tx *sql.Tx, keep map[string]bool) error {
	rows, err := tx.Query("SELECT id, uuid FROM characters")
	if err != nil {
		return fmt.Errorf("listing entities for purge: %w", err)
	}
	var stale []int64
	for rows.Next() {
		var id int64
		var u string
		if err := rows.Scan(&id, &u); err != nil {
			rows.Close()
			return fmt.Errorf("scanning entity for purge: %w", err)
		}
		if !keep[u] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating entities for purge: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	if err := deleteByIDs(tx, "attributes", "of", stale); err != nil {
		return err
	}
	return deleteByIDs(tx, "characters", "id", stale)
}

// deleteByIDs deletes rows by an id column, chunked under the parameter
// ceiling.
func deleteByIDs(tx *sql.Tx, table, column string, ids []int64) error {
	for start := 0; start < len(ids); start += paramLimit {
		end := start + paramLimit
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		placeholders := make([]byte, 0, len(chunk)*2)
		args := make([]any, len(chunk))
		for i, id := range chunk {
			if i > 0 {
				placeholders = append(placeholders, ',')
			}
			placeholders = append(placeholders, '?')
			args[i] = id
		}
		_, err := tx.Exec("DELETE FROM "+table+" WHERE "+column+" IN ("+string(placeholders)+")", args...)
		if err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
	}
	return nil
}
