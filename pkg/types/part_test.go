package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartKindFromInt(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want PartKind
	}{
		{name: "main", in: 0, want: PartMain},
		{name: "body", in: 1, want: PartBody},
		{name: "minion", in: 7, want: PartMinion},
		{name: "other", in: 255, want: PartOther},
		{name: "unrecognized decodes to other", in: 42, want: PartOther},
		{name: "negative decodes to other", in: -1, want: PartOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartKindFromInt(tt.in))
		})
	}
}

func TestParsePartKind(t *testing.T) {
	t.Run("every kind round-trips through its name", func(t *testing.T) {
		kinds := []PartKind{
			PartMain, PartBody, PartMechanical, PartInventoryItem,
			PartAsset, PartAbility, PartSummon, PartMinion, PartOther,
		}
		for _, k := range kinds {
			got, err := ParsePartKind(k.String())
			require.NoError(t, err)
			assert.Equal(t, k, got)
		}
	})

	t.Run("unknown name fails", func(t *testing.T) {
		_, err := ParsePartKind("Tentacle")
		assert.Error(t, err)
	})
}

func TestPartKindString(t *testing.T) {
	assert.Equal(t, "Main", PartMain.String())
	assert.Equal(t, "InventoryItem", PartInventoryItem.String())
	assert.Equal(t, "Other", PartKind(99).String())
}
