package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRuleset() *Ruleset {
	parts := []PermittedPart{
		{Name: "character", Kind: PartMain, Obligatory: true},
		{Name: "torso", Kind: PartBody, Obligatory: true},
		{Name: "pouch", Kind: PartInventoryItem, Obligatory: false},
	}
	attrs := []PermittedAttribute{
		{Key: "strength", PartName: "character", PartKind: PartMain, Obligatory: true},
		{Key: "flavor", PartName: "character", PartKind: PartMain, Obligatory: false},
		{Key: "toughness", PartName: "torso", PartKind: PartBody, Obligatory: true},
	}
	return NewRuleset(parts, attrs)
}

func TestRulesetParts(t *testing.T) {
	r := testRuleset()

	assert.True(t, r.PartPermitted("character", PartMain))
	assert.True(t, r.PartPermitted("pouch", PartInventoryItem))
	assert.False(t, r.PartPermitted("pouch", PartBody), "kind is part of the identity")
	assert.False(t, r.PartPermitted("wings", PartBody))

	assert.True(t, r.PartObligatory("torso", PartBody))
	assert.False(t, r.PartObligatory("pouch", PartInventoryItem))
	assert.Equal(t, 2, r.ObligatoryPartCount())
}

func TestRulesetAttributePermitted(t *testing.T) {
	r := testRuleset()

	assert.True(t, r.AttributePermitted("strength", "character", PartMain))
	assert.False(t, r.AttributePermitted("strength", "torso", PartBody), "declared for a different part")
	assert.False(t, r.AttributePermitted("charm", "character", PartMain))
}

func TestRulesetObligatoryAttributesFor(t *testing.T) {
	r := testRuleset()

	oblig := r.ObligatoryAttributesFor("character", PartMain)
	require.Len(t, oblig, 1)
	assert.Equal(t, "strength", oblig[0].Key)

	assert.Empty(t, r.ObligatoryAttributesFor("pouch", PartInventoryItem))
}

func TestRulesetCheckAttributes(t *testing.T) {
	r := testRuleset()
	pair := func(key string) AttributePair {
		return AttributePair{Key: AttributeKey{Key: key}}
	}

	tests := []struct {
		name    string
		attrs   []AttributePair
		owner   string
		kind    PartKind
		wantErr string
	}{
		{
			name:  "all declared keys present",
			attrs: []AttributePair{pair("strength"), pair("flavor")},
			owner: "character", kind: PartMain,
		},
		{
			name:  "obligatory alone suffices",
			attrs: []AttributePair{pair("strength")},
			owner: "character", kind: PartMain,
		},
		{
			name:  "undeclared key rejected",
			attrs: []AttributePair{pair("strength"), pair("charm")},
			owner: "character", kind: PartMain,
			wantErr: "illegal attribute",
		},
		{
			name:  "key declared for another part rejected",
			attrs: []AttributePair{pair("strength"), pair("toughness")},
			owner: "character", kind: PartMain,
			wantErr: "not allowed",
		},
		{
			name:  "missing obligatory key rejected",
			attrs: []AttributePair{pair("flavor")},
			owner: "character", kind: PartMain,
			wantErr: "obligatory attribute",
		},
		{
			name:  "part with no declared attributes passes empty",
			attrs: nil,
			owner: "pouch", kind: PartInventoryItem,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.CheckAttributes(tt.attrs, tt.owner, tt.kind)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaViolation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
