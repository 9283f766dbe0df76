package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/sheets/pkg/types"
)

// sheetKey identifies one character store in the catalog.
type sheetKey struct {
	name string
	uuid string
}

// Catalog is a loaded game system: the root catalog store, the permitted
// schema loaded from it, and a cache of lazily-opened per-character store
// handles. A Catalog is not safe for concurrent use; callers serialize.
type Catalog struct {
	cfg      types.Config
	root     *conn
	registry *Registry
	refs     map[sheetKey]types.SheetRef
	sheets   map[sheetKey]*conn
}

// Load opens an existing game system: the root store must already exist at
// cfg.RootPath(). The permitted schema and the character list are read
// eagerly; character stores are opened on first use.
func Load(cfg types.Config) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.RootPath()); err != nil {
		return nil, fmt.Errorf("system %q at %s: %w", cfg.System, cfg.DataDir, types.ErrNotFound)
	}
	cat := &Catalog{
		cfg:    cfg,
		root:   newConn(cfg.RootPath()),
		refs:   make(map[sheetKey]types.SheetRef),
		sheets: make(map[sheetKey]*conn),
	}
	db, err := cat.root.open()
	if err != nil {
		return nil, err
	}
	reg, err := loadRegistry(db)
	if err != nil {
		cat.root.close()
		return nil, err
	}
	cat.registry = reg
	if err := cat.Refresh(); err != nil {
		cat.root.close()
		return nil, err
	}
	return cat, nil
}

// Registry exposes the loaded permitted schema.
func (c *Catalog) Registry() *Registry {
	return c.registry
}

// Refresh re-reads the character list from the root store. Cached store
// handles whose catalog row disappeared are closed and dropped; handles for
// surviving rows are kept open.
func (c *Catalog) Refresh() error {
	db, err := c.root.open()
	if err != nil {
		return err
	}
	rows, err := db.Query("SELECT id, name, uuid, db_path FROM character_dbs ORDER BY id ASC")
	if err != nil {
		return fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	refs := make(map[sheetKey]types.SheetRef)
	for rows.Next() {
		var ref types.SheetRef
		var id int64
		if err := rows.Scan(&id, &ref.Name, &ref.UUID, &ref.DBPath); err != nil {
			return fmt.Errorf("scanning character row: %w", err)
		}
		ref.ID = &id
		refs[sheetKey{name: ref.Name, uuid: ref.UUID}] = ref
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating character rows: %w", err)
	}

	for key, handle := range c.sheets {
		if _, ok := refs[key]; !ok {
			handle.close()
			delete(c.sheets, key)
		}
	}
	c.refs = refs
	return nil
}

// ListCharacters refreshes the catalog and returns every character
// reference, ordered by catalog row id.
func (c *Catalog) ListCharacters() ([]types.SheetRef, error) {
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	out := make([]types.SheetRef, 0, len(c.refs))
	for _, ref := range c.refs {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out, nil
}

// sheetDB returns the open store handle for one character, opening the file
// on first use.
func (c *Catalog) sheetDB(name, uid string) (*sql.DB, error) {
	key := sheetKey{name: name, uuid: uid}
	ref, ok := c.refs[key]
	if !ok {
		return nil, fmt.Errorf("character (%s, uuid = %s): %w", name, uid, types.ErrNotFound)
	}
	handle, ok := c.sheets[key]
	if !ok {
		handle = newConn(ref.DBPath)
		c.sheets[key] = handle
	}
	return handle.open()
}

// CreateSheet creates a new character sheet: a catalog row, a fresh backing
// store file, and the seeded skeleton a new character of this system starts
// with. A failure after the catalog insert triggers a compensating delete
// so the catalog never points at a store that was not created.
func (c *Catalog) CreateSheet(name string) (types.SheetRef, error) {
	return c.newSheet(name, true)
}

func (c *Catalog) newSheet(name string, seed bool) (types.SheetRef, error) {
	if err := types.CheckName(name); err != nil {
		return types.SheetRef{}, err
	}
	root, err := c.root.open()
	if err != nil {
		return types.SheetRef{}, err
	}

	uid := uuid.NewString()
	path := filepath.Join(c.cfg.DataDir, fmt.Sprintf("%s_%s.db", name, uid))

	res, err := root.Exec("INSERT INTO character_dbs (name, uuid, db_path) VALUES (?, ?, ?)",
		name, uid, path)
	if err != nil {
		return types.SheetRef{}, fmt.Errorf("registering sheet %q: %w", name, err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return types.SheetRef{}, fmt.Errorf("reading sheet row id: %w", err)
	}

	handle := newConn(path)
	if err := c.initSheet(handle, name, uid, seed); err != nil {
		handle.close()
		removeStoreFiles(path)
		// Compensating delete: the catalog must not reference a store that
		// failed to come into existence.
		if _, derr := root.Exec("DELETE FROM character_dbs WHERE id = ?", rowID); derr != nil {
			return types.SheetRef{}, fmt.Errorf("creating sheet %q: %v (catalog row %d not cleaned up: %w)",
				name, err, rowID, derr)
		}
		return types.SheetRef{}, fmt.Errorf("creating sheet %q: %w", name, err)
	}

	ref := types.SheetRef{ID: &rowID, Name: name, UUID: uid, DBPath: path}
	key := sheetKey{name: name, uuid: uid}
	c.refs[key] = ref
	c.sheets[key] = handle
	return ref, nil
}

// initSheet creates the store file, applies the sheet schema, and optionally
// seeds the new-character skeleton.
func (c *Catalog) initSheet(handle *conn, name, uid string, seed bool) error {
	db, err := handle.open()
	if err != nil {
		return err
	}
	if err := applyDDL(db, sheetDDL); err != nil {
		return err
	}
	if !seed {
		return nil
	}
	return c.seedSheet(db, name, uid)
}

// seedSheet populates a fresh store with the skeleton every character of
// this system starts from: the root entity, one row per obligatory
// sub-part, and every obligatory attribute declared for those entities,
// seeded with null values to be filled in later.
func (c *Catalog) seedSheet(db *sql.DB, name, uid string) error {
	rules := c.registry.Rules()
	mainPart, err := c.registry.MainPart()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning sheet seed: %w", err)
	}
	defer tx.Rollback()

	rootID, err := insertEntity(tx, types.CharacterPart{
		Name:     name,
		UUID:     uid,
		TypeName: mainPart.Name,
		Kind:     types.PartMain,
	})
	if err != nil {
		return err
	}

	seeded := []types.CharacterPart{{ID: &rootID, TypeName: mainPart.Name, Kind: types.PartMain}}
	for _, p := range c.registry.Parts {
		if !p.Obligatory || p.Kind == types.PartMain {
			continue
		}
		id, err := insertEntity(tx, types.CharacterPart{
			Name:      p.Name,
			UUID:      uuid.NewString(),
			TypeName:  p.Name,
			BelongsTo: &rootID,
			Kind:      p.Kind,
		})
		if err != nil {
			return err
		}
		seeded = append(seeded, types.CharacterPart{ID: &id, TypeName: p.Name, Kind: p.Kind})
	}

	var pairs []types.AttributePair
	for _, entity := range seeded {
		for _, a := range rules.ObligatoryAttributesFor(entity.TypeName, entity.Kind) {
			desc := a.Description
			pairs = append(pairs, types.AttributePair{
				Key:   types.AttributeKey{Key: a.Key, Of: *entity.ID},
				Value: types.AttributeValue{Description: &desc},
			})
		}
	}
	if err := insertUpdateAttributes(tx, pairs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sheet seed: %w", err)
	}
	return nil
}

// DeleteCharacter removes a character's catalog row and destroys its
// backing store file. File removal is retried once before the failure is
// surfaced; by then the catalog row is already gone.
func (c *Catalog) DeleteCharacter(name, uid string) error {
	key := sheetKey{name: name, uuid: uid}
	ref, ok := c.refs[key]
	if !ok {
		return fmt.Errorf("character (%s, uuid = %s): %w", name, uid, types.ErrNotFound)
	}
	if handle, ok := c.sheets[key]; ok {
		handle.close()
		delete(c.sheets, key)
	}

	root, err := c.root.open()
	if err != nil {
		return err
	}
	if _, err := root.Exec("DELETE FROM character_dbs WHERE name = ? AND uuid = ?", name, uid); err != nil {
		return fmt.Errorf("deleting catalog row for %q: %w", name, err)
	}
	delete(c.refs, key)

	if err := removeStoreFiles(ref.DBPath); err != nil {
		if err := removeStoreFiles(ref.DBPath); err != nil {
			return fmt.Errorf("removing store for %q: %w", name, err)
		}
	}
	return nil
}

// LoadCharacter loads the complete aggregate for one character.
func (c *Catalog) LoadCharacter(name, uid string) (*types.CompleteCharacter, error) {
	db, err := c.sheetDB(name, uid)
	if err != nil {
		return nil, err
	}
	return loadComplete(db)
}

// CreateOrUpdateCharacter saves an aggregate into its store, creating the
// store first when the (name, uuid) pair is not yet in the catalog. A new
// store is created bare, without the seeded skeleton: the incoming document
// must itself satisfy the schema, so seeding would only collide with it.
// The saved aggregate is returned with storage-assigned ids filled in.
func (c *Catalog) CreateOrUpdateCharacter(doc *types.CompleteCharacter) (*types.CompleteCharacter, error) {
	key := sheetKey{name: doc.Name, uuid: doc.UUID}
	db, err := c.sheetDB(doc.Name, doc.UUID)
	if err != nil {
		if _, known := c.refs[key]; known {
			return nil, err
		}
		ref, err := c.newSheet(doc.Name, false)
		if err != nil {
			return nil, err
		}
		doc.UUID = ref.UUID
		db, err = c.sheetDB(ref.Name, ref.UUID)
		if err != nil {
			return nil, err
		}
	}
	if err := saveComplete(db, doc, c.registry); err != nil {
		return nil, err
	}
	return doc, nil
}

// entityRow fetches the (type name, kind, belongs_to) identity of one
// entity row.
func entityRow(db querier, id int64) (types.CharacterPart, error) {
	var (
		p         types.CharacterPart
		kind      int64
		belongsTo sql.NullInt64
	)
	err := db.QueryRow("SELECT character_type, part_type, belongs_to FROM characters WHERE id = ?", id).
		Scan(&p.TypeName, &kind, &belongsTo)
	if err == sql.ErrNoRows {
		return p, fmt.Errorf("entity %d: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("loading entity %d: %w", id, err)
	}
	p.ID = &id
	p.Kind = types.PartKindFromInt(kind)
	if belongsTo.Valid {
		p.BelongsTo = &belongsTo.Int64
	}
	return p, nil
}

// rootID returns the row id of a sheet's root entity.
func rootID(db querier) (int64, error) {
	var id int64
	err := db.QueryRow("SELECT id FROM characters WHERE belongs_to IS NULL AND part_type = ?",
		int64(types.PartMain)).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no root entity in store: %w", types.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("loading root entity: %w", err)
	}
	return id, nil
}

// CreatePart creates one new sub-part on an existing sheet, seeds the
// obligatory attributes declared for it, and returns the updated aggregate.
func (c *Catalog) CreatePart(in types.InputPart, name, uid string) (*types.CompleteCharacter, error) {
	db, err := c.sheetDB(name, uid)
	if err != nil {
		return nil, err
	}
	rules := c.registry.Rules()
	if in.Kind == types.PartMain {
		return nil, types.SchemaViolationf("part %q has kind Main, but one already exists on this sheet", in.Name)
	}
	if !rules.PartPermitted(in.TypeName, in.Kind) {
		return nil, types.SchemaViolationf("forbidden part %q (%s)", in.TypeName, in.Kind)
	}
	owner, err := rootID(db)
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning part insert: %w", err)
	}
	defer tx.Rollback()

	id, err := insertEntity(tx, types.CharacterPart{
		Name:      in.Name,
		UUID:      uuid.NewString(),
		TypeName:  in.TypeName,
		Speed:     in.Speed,
		Weight:    in.Weight,
		Size:      in.Size,
		HPTotal:   in.HPTotal,
		HPCurrent: in.HPCurrent,
		BelongsTo: &owner,
		Kind:      in.Kind,
	})
	if err != nil {
		return nil, err
	}

	var pairs []types.AttributePair
	for _, a := range rules.ObligatoryAttributesFor(in.TypeName, in.Kind) {
		desc := a.Description
		pairs = append(pairs, types.AttributePair{
			Key:   types.AttributeKey{Key: a.Key, Of: id},
			Value: types.AttributeValue{Description: &desc},
		})
	}
	if err := insertUpdateAttributes(tx, pairs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing part insert: %w", err)
	}
	return loadComplete(db)
}

// DeletePart removes one sub-part row and its attributes by id. The root
// entity cannot be deleted this way.
func (c *Catalog) DeletePart(id int64, name, uid string) (*types.CompleteCharacter, error) {
	db, err := c.sheetDB(name, uid)
	if err != nil {
		return nil, err
	}
	row, err := entityRow(db, id)
	if err != nil {
		return nil, err
	}
	if row.BelongsTo == nil {
		return nil, types.SchemaViolationf("entity %d is the sheet's root and cannot be deleted as a part", id)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning part delete: %w", err)
	}
	defer tx.Rollback()
	if err := deleteByIDs(tx, "attributes", "of", []int64{id}); err != nil {
		return nil, err
	}
	if err := deleteByIDs(tx, "characters", "id", []int64{id}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing part delete: %w", err)
	}
	return loadComplete(db)
}

// CreateUpdatePart inserts a new sub-part or rewrites an existing one by
// row id, and returns the updated aggregate.
func (c *Catalog) CreateUpdatePart(p types.CharacterPart, name, uid string) (*types.CompleteCharacter, error) {
	db, err := c.sheetDB(name, uid)
	if err != nil {
		return nil, err
	}
	rules := c.registry.Rules()
	if p.Kind == types.PartMain {
		return nil, types.SchemaViolationf("part %q has kind Main, but one already exists on this sheet", p.Name)
	}
	if !rules.PartPermitted(p.TypeName, p.Kind) {
		return nil, types.SchemaViolationf("forbidden part %q (%s)", p.TypeName, p.Kind)
	}
	owner, err := rootID(db)
	if err != nil {
		return nil, err
	}
	p.BelongsTo = &owner
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning part upsert: %w", err)
	}
	defer tx.Rollback()
	if p.ID == nil {
		id, err := insertEntity(tx, p)
		if err != nil {
			return nil, err
		}
		var pairs []types.AttributePair
		for _, a := range rules.ObligatoryAttributesFor(p.TypeName, p.Kind) {
			desc := a.Description
			pairs = append(pairs, types.AttributePair{
				Key:   types.AttributeKey{Key: a.Key, Of: id},
				Value: types.AttributeValue{Description: &desc},
			})
		}
		if err := insertUpdateAttributes(tx, pairs); err != nil {
			return nil, err
		}
	} else if err := updateEntity(tx, *p.ID, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing part upsert: %w", err)
	}
	return loadComplete(db)
}

// CreateAttribute creates one new attribute on an existing entity, checked
// against the permitted schema, and returns the updated aggregate.
func (c *Catalog) CreateAttribute(in types.InputAttribute, name, uid string) (*types.CompleteCharacter, error) {
	db, err := c.sheetDB(name, uid)
	if err != nil {
		return nil, err
	}
	owner, err := entityRow(db, in.Of)
	if err != nil {
		return nil, err
	}
	if !c.registry.Rules().AttributePermitted(in.Key, owner.TypeName, owner.Kind) {
		return nil, types.SchemaViolationf("illegal attribute %q for %q", in.Key, owner.TypeName)
	}
	_, err = db.Exec("INSERT INTO attributes (key, value_num, value_text, description, of) VALUES (?, ?, ?, ?, ?)",
		in.Key, in.ValueNum, in.ValueText, in.Description, in.Of)
	if err != nil {
		return nil, fmt.Errorf("inserting attribute %q: %w", in.Key, err)
	}
	return loadComplete(db)
}

// CreateUpdateAttribute writes an attribute value by (key, owner), creating
// the row when absent and overwriting it in place when present.
func (c *Catalog) CreateUpdateAttribute(k types.AttributeKey, v types.AttributeValue, name, uid string) error {
	db, err := c.sheetDB(name, uid)
	if err != nil {
		return err
	}
	owner, err := entityRow(db, k.Of)
	if err != nil {
		return err
	}
	if !c.registry.Rules().AttributePermitted(k.Key, owner.TypeName, owner.Kind) {
		return types.SchemaViolationf("illegal attribute %q for %q", k.Key, owner.TypeName)
	}
	_, err = db.Exec(
		"INSERT INTO attributes (key, value_num, value_text, description, of) VALUES (?, ?, ?, ?, ?) "+
			"ON CONFLICT(key, of) DO UPDATE SET value_num = excluded.value_num, "+
			"value_text = excluded.value_text, description = excluded.description",
		k.Key, v.ValueNum, v.ValueText, v.Description, k.Of)
	if err != nil {
		return fmt.Errorf("writing attribute %q: %w", k.Key, err)
	}
	return nil
}

// CreateNote adds a note to a sheet and returns the stored note with its
// assigned id and date.
func (c *Catalog) CreateNote(in types.InputNote, name, uid string) (types.Note, error) {
	db, err := c.sheetDB(name, uid)
	if err != nil {
		return types.Note{}, err
	}
	return insertNote(db, in)
}

// UpdateNote rewrites an existing note on a sheet.
func (c *Catalog) UpdateNote(n types.Note, name, uid string) error {
	db, err := c.sheetDB(name, uid)
	if err != nil {
		return err
	}
	return updateNote(db, n)
}

// Close releases every open store handle, the root catalog last. The first
// error encountered is returned; closing continues regardless.
func (c *Catalog) Close() error {
	var first error
	for key, handle := range c.sheets {
		if err := handle.close(); err != nil && first == nil {
			first = err
		}
		delete(c.sheets, key)
	}
	if err := c.root.close(); err != nil && first == nil {
		first = err
	}
	return first
}
