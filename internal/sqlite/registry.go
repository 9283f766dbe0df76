package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/sheets/pkg/types"
)

// Registry is the permitted-schema loaded from the root catalog store. It is
// read-mostly: loaded once when a system is opened and reloaded on demand.
// There is no cache invalidation; callers that mutate the schema reload.
type Registry struct {
	Parts      []types.PermittedPart
	Attributes []types.PermittedAttribute

	rules *types.Ruleset
}

// loadRegistry reads both permitted tables and builds the lookup rule set.
func loadRegistry(db querier) (*Registry, error) {
	parts, err := loadAllParts(db)
	if err != nil {
		return nil, err
	}
	attrs, err := loadAllAttributes(db)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Parts:      parts,
		Attributes: attrs,
		rules:      types.NewRuleset(parts, attrs),
	}, nil
}

// Rules returns the in-memory lookup structure for validation.
func (r *Registry) Rules() *types.Ruleset {
	return r.rules
}

// MainPart returns the schema's Main permitted part. Every well-formed
// system defines exactly one.
func (r *Registry) MainPart() (types.PermittedPart, error) {
	for _, p := range r.Parts {
		if p.Kind == types.PartMain {
			return p, nil
		}
	}
	return types.PermittedPart{}, fmt.Errorf("system defines no Main part: %w", types.ErrSchemaViolation)
}

// loadAllParts reads every permitted part, ordered by kind then id for
// deterministic consumption.
func loadAllParts(db querier) ([]types.PermittedPart, error) {
	rows, err := db.Query(
		"SELECT id, part_name, part_type, obligatory FROM permitted_parts ORDER BY part_type ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("loading permitted parts: %w", err)
	}
	defer rows.Close()

	var parts []types.PermittedPart
	for rows.Next() {
		var p types.PermittedPart
		var id, kind int64
		if err := rows.Scan(&id, &p.Name, &kind, &p.Obligatory); err != nil {
			return nil, fmt.Errorf("scanning permitted part: %w", err)
		}
		p.ID = &id
		p.Kind = types.PartKindFromInt(kind)
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permitted parts: %w", err)
	}
	return parts, nil
}

// loadAllAttributes reads every permitted attribute, ordered by part kind
// then key.
func loadAllAttributes(db querier) ([]types.PermittedAttribute, error) {
	return queryPermittedAttributes(db,
		"SELECT key, attribute_type, attribute_description, part_name, part_type, obligatory "+
			"FROM permitted_attributes ORDER BY part_type ASC, key ASC")
}

// loadObligatoryAttributes reads only the obligatory permitted attributes.
func loadObligatoryAttributes(db querier) ([]types.PermittedAttribute, error) {
	return queryPermittedAttributes(db,
		"SELECT key, attribute_type, attribute_description, part_name, part_type, obligatory "+
			"FROM permitted_attributes WHERE obligatory = 1 ORDER BY part_type ASC, key ASC")
}

func queryPermittedAttributes(db querier, query string) ([]types.PermittedAttribute, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("loading permitted attributes: %w", err)
	}
	defer rows.Close()

	var attrs []types.PermittedAttribute
	for rows.Next() {
		var a types.PermittedAttribute
		var kind int64
		if err := rows.Scan(&a.Key, &a.KindOfValue, &a.Description, &a.PartName, &kind, &a.Obligatory); err != nil {
			return nil, fmt.Errorf("scanning permitted attribute: %w", err)
		}
		a.PartKind = types.PartKindFromInt(kind)
		attrs = append(attrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permitted attributes: %w", err)
	}
	return attrs, nil
}
