package types

// AttributeKey identifies an attribute within one sheet store: the attribute
// key plus the row id of the owning entity. (key, of) is unique per store.
type AttributeKey struct {
	Key string `json:"key"`
	Of  int64  `json:"of"`
}

// AttributeValue carries the stored value of an attribute. ID is nil until
// the attribute has been persisted; an attribute with an ID is updated in
// place on save, never re-inserted.
type AttributeValue struct {
	ID          *int64  `json:"id"`
	ValueNum    *int64  `json:"value_num"`
	ValueText   *string `json:"value_text"`
	Description *string `json:"description"`
}

// AttributePair is one attribute of an entity. Aggregates carry attributes
// as ordered pair lists so they serialize deterministically.
type AttributePair struct {
	Key   AttributeKey   `json:"key"`
	Value AttributeValue `json:"value"`
}

// InputAttribute describes a brand-new attribute to create on an entity.
type InputAttribute struct {
	Key         string  `json:"key"`
	ValueNum    *int64  `json:"value_num"`
	ValueText   *string `json:"value_text"`
	Description *string `json:"description"`
	Of          int64   `json:"of"`
}
