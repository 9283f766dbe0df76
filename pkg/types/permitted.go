package types

// PermittedPart is one row of the root catalog's permitted_parts table: a
// (name, kind) pair a character of this game system may contain, and whether
// every character must contain it.
type PermittedPart struct {
	ID         *int64   `json:"id"`
	Name       string   `json:"part_name"`
	Kind       PartKind `json:"part_type"`
	Obligatory bool     `json:"obligatory"`
}

// PermittedAttribute is one row of the permitted_attributes table: an
// attribute key that entities matching (PartName, PartKind) may carry, and
// whether they must.
type PermittedAttribute struct {
	Key         string   `json:"key"`
	KindOfValue int64    `json:"attribute_type"`
	Description string   `json:"attribute_description"`
	PartName    string   `json:"part_name"`
	PartKind    PartKind `json:"part_type"`
	Obligatory  bool     `json:"obligatory"`
}

// ObligatoryFor reports whether this attribute must be present on an entity
// of the given (name, kind).
func (a *PermittedAttribute) ObligatoryFor(name string, kind PartKind) bool {
	return a.Obligatory && a.PartName == name && a.PartKind == kind
}

// PartRef keys the permitted-part lookup: the (type name, kind) identity of
// an entity.
type PartRef struct {
	Name string
	Kind PartKind
}

// attributeRule is the flattened permission for one attribute key.
type attributeRule struct {
	partName   string
	partKind   PartKind
	obligatory bool
}

// Ruleset is the in-memory lookup structure built from the loaded schema.
// The permitted schema is data, not types: every validation consults these
// maps rather than anything compiled into the program.
type Ruleset struct {
	parts      map[PartRef]bool // value: obligatory
	attributes map[string]attributeRule
	obligatory []PermittedAttribute
}

// NewRuleset builds the lookup structure from the loaded permitted parts
// and attributes.
func NewRuleset(parts []PermittedPart, attrs []PermittedAttribute) *Ruleset {
	r := &Ruleset{
		parts:      make(map[PartRef]bool, len(parts)),
		attributes: make(map[string]attributeRule, len(attrs)),
	}
	for _, p := range parts {
		r.parts[PartRef{Name: p.Name, Kind: p.Kind}] = p.Obligatory
	}
	for _, a := range attrs {
		r.attributes[a.Key] = attributeRule{
			partName:   a.PartName,
			partKind:   a.PartKind,
			obligatory: a.Obligatory,
		}
		if a.Obligatory {
			r.obligatory = append(r.obligatory, a)
		}
	}
	return r
}

// PartPermitted reports whether an entity of (name, kind) may exist.
func (r *Ruleset) PartPermitted(name string, kind PartKind) bool {
	_, ok := r.parts[PartRef{Name: name, Kind: kind}]
	return ok
}

// PartObligatory reports whether (name, kind) is a permitted, obligatory part.
func (r *Ruleset) PartObligatory(name string, kind PartKind) bool {
	return r.parts[PartRef{Name: name, Kind: kind}]
}

// ObligatoryPartCount returns how many distinct (name, kind) pairs the
// schema marks obligatory.
func (r *Ruleset) ObligatoryPartCount() int {
	n := 0
	for _, obligatory := range r.parts {
		if obligatory {
			n++
		}
	}
	return n
}

// ObligatoryAttributesFor returns the obligatory attribute keys declared for
// entities of (name, kind).
func (r *Ruleset) ObligatoryAttributesFor(name string, kind PartKind) []PermittedAttribute {
	var out []PermittedAttribute
	for _, a := range r.obligatory {
		if a.PartName == name && a.PartKind == kind {
			out = append(out, a)
		}
	}
	return out
}

// AttributePermitted reports whether an entity of (name, kind) may carry an
// attribute with the given key.
func (r *Ruleset) AttributePermitted(key, name string, kind PartKind) bool {
	rule, ok := r.attributes[key]
	return ok && rule.partName == name && rule.partKind == kind
}

// CheckAttributes validates one entity's attribute list against the schema:
// every present key must be declared for this entity's (name, kind), and
// every obligatory key declared for it must be present. Returns a schema
// violation naming the offending key, or nil.
func (r *Ruleset) CheckAttributes(attrs []AttributePair, name string, kind PartKind) error {
	present := make(map[string]bool, len(attrs))
	for _, pair := range attrs {
		rule, ok := r.attributes[pair.Key.Key]
		if !ok {
			return SchemaViolationf("illegal attribute %q", pair.Key.Key)
		}
		if rule.partName != name || rule.partKind != kind {
			return SchemaViolationf("attribute %q not allowed for %q", pair.Key.Key, name)
		}
		present[pair.Key.Key] = true
	}
	for _, a := range r.obligatory {
		if a.PartName == name && a.PartKind == kind && !present[a.Key] {
			return SchemaViolationf("obligatory attribute %q missing", a.Key)
		}
	}
	return nil
}
