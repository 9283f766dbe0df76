package types

// CharacterPart is one sub-entity of a character: a body part, an inventory
// item, an ability, and so on. Its BelongsTo field points at the root
// entity's row id; the model is exactly one level deep.
type CharacterPart struct {
	ID         *int64          `json:"id"`
	Name       string          `json:"name"`
	UUID       string          `json:"uuid"`
	TypeName   string          `json:"character_type"`
	Speed      int64           `json:"speed"`
	Weight     *int64          `json:"weight"`
	Size       *string         `json:"size"`
	HPTotal    *int64          `json:"hp_total"`
	HPCurrent  *int64          `json:"hp_current"`
	BelongsTo  *int64          `json:"belongs_to"`
	Kind       PartKind        `json:"part_type"`
	Attributes []AttributePair `json:"attributes"`
}

// SameRow reports whether two parts carry identical entity-row fields.
// Attributes are not compared.
func (p *CharacterPart) SameRow(o *CharacterPart) bool {
	return eqID(p.ID, o.ID) &&
		p.Name == o.Name &&
		p.UUID == o.UUID &&
		p.TypeName == o.TypeName &&
		p.Speed == o.Speed &&
		eqID(p.Weight, o.Weight) &&
		eqStr(p.Size, o.Size) &&
		eqID(p.HPTotal, o.HPTotal) &&
		eqID(p.HPCurrent, o.HPCurrent) &&
		eqID(p.BelongsTo, o.BelongsTo) &&
		p.Kind == o.Kind
}

// CompleteCharacter is the aggregate root handed to and returned by the
// engine: the root entity, its attributes, every sub-part with its own
// attributes, and the sheet's notes. An aggregate with a nil ID has never
// been persisted.
type CompleteCharacter struct {
	ID         *int64          `json:"id"`
	Name       string          `json:"name"`
	UUID       string          `json:"uuid"`
	TypeName   string          `json:"character_type"`
	Speed      int64           `json:"speed"`
	Weight     *int64          `json:"weight"`
	Size       *string         `json:"size"`
	HPTotal    *int64          `json:"hp_total"`
	HPCurrent  *int64          `json:"hp_current"`
	Attributes []AttributePair `json:"attributes"`
	Parts      []CharacterPart `json:"parts"`
	Notes      []Note          `json:"notes"`
}

// SameHeader reports whether the root entity fields of two aggregates are
// identical. Attributes, parts and notes are not compared.
func (c *CompleteCharacter) SameHeader(o *CompleteCharacter) bool {
	return eqID(c.ID, o.ID) &&
		c.Name == o.Name &&
		c.UUID == o.UUID &&
		c.TypeName == o.TypeName &&
		c.Speed == o.Speed &&
		eqID(c.Weight, o.Weight) &&
		eqStr(c.Size, o.Size) &&
		eqID(c.HPTotal, o.HPTotal) &&
		eqID(c.HPCurrent, o.HPCurrent)
}

// RootPart returns the root entity's fields as a bare CharacterPart.
func (c *CompleteCharacter) RootPart() CharacterPart {
	return CharacterPart{
		ID:        c.ID,
		Name:      c.Name,
		UUID:      c.UUID,
		TypeName:  c.TypeName,
		Speed:     c.Speed,
		Weight:    c.Weight,
		Size:      c.Size,
		HPTotal:   c.HPTotal,
		HPCurrent: c.HPCurrent,
		Kind:      PartMain,
	}
}

// InputPart describes a brand-new sub-part to create on an existing sheet.
type InputPart struct {
	Name      string   `json:"name"`
	TypeName  string   `json:"character_type"`
	Speed     int64    `json:"speed"`
	Weight    *int64   `json:"weight"`
	Size      *string  `json:"size"`
	HPTotal   *int64   `json:"hp_total"`
	HPCurrent *int64   `json:"hp_current"`
	BelongsTo *int64   `json:"belongs_to"`
	Kind      PartKind `json:"part_type"`
}

func eqID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
