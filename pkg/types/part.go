package types

import "fmt"

// PartKind categorizes a character sub-entity. Kinds are stored as small
// integers; any unrecognized stored value decodes to PartOther.
type PartKind int

// The closed set of part kinds. PartOther deliberately encodes as 255 so
// that new kinds can be added between Minion and Other without renumbering.
const (
	PartMain          PartKind = 0
	PartBody          PartKind = 1
	PartMechanical    PartKind = 2
	PartInventoryItem PartKind = 3
	PartAsset         PartKind = 4
	PartAbility       PartKind = 5
	PartSummon        PartKind = 6
	PartMinion        PartKind = 7
	PartOther         PartKind = 255
)

// partKindNames maps each kind to the textual name used in system schema
// documents.
var partKindNames = map[PartKind]string{
	PartMain:          "Main",
	PartBody:          "Body",
	PartMechanical:    "Mechanical",
	PartInventoryItem: "InventoryItem",
	PartAsset:         "Asset",
	PartAbility:       "Ability",
	PartSummon:        "Summon",
	PartMinion:        "Minion",
	PartOther:         "Other",
}

// PartKindFromInt decodes a stored integer into a PartKind.
// Unrecognized values decode to PartOther.
func PartKindFromInt(n int64) PartKind {
	k := PartKind(n)
	if _, ok := partKindNames[k]; !ok {
		return PartOther
	}
	return k
}

// ParsePartKind converts the textual name used in schema documents
// ("Main", "Body", ...) into a PartKind.
func ParsePartKind(s string) (PartKind, error) {
	for k, name := range partKindNames {
		if name == s {
			return k, nil
		}
	}
	return PartOther, fmt.Errorf("unknown part kind %q", s)
}

// String returns the schema-document name of the kind.
func (k PartKind) String() string {
	if name, ok := partKindNames[k]; ok {
		return name
	}
	return partKindNames[PartOther]
}
