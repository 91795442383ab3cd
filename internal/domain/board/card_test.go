package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	owner := testOwner(t)

	card := NewCard(owner, "5551", "#1001", SystemColumnCode, 30)
	assert.Equal(t, owner.Kind, card.OwnerKind)
	assert.Equal(t, owner.ID, card.OwnerID)
	assert.Equal(t, "5551", card.ShopOrderID)
	assert.Equal(t, "#1001", card.ShopOrderNumber)
	assert.Equal(t, SystemColumnCode, card.ColumnCode)
	assert.Equal(t, 30, card.Position)
}

func TestCardMoveTo(t *testing.T) {
	owner := testOwner(t)
	card := NewCard(owner, "5551", "#1001", SystemColumnCode, 0)

	card.MoveTo("packed", 20)
	assert.Equal(t, "packed", card.ColumnCode)
	assert.Equal(t, 20, card.Position)
}

func TestExtractOrderID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5551", "5551"},
		{" 5551 ", "5551"},
		{"gid://shopify/Order/820982911946154508", "820982911946154508"},
		{"gid://shopify/DraftOrder/123", "gid://shopify/DraftOrder/123"},
		{"abc", "abc"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractOrderID(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeOrderIDs(t *testing.T) {
	t.Run("strips blanks and duplicates keeping first occurrence", func(t *testing.T) {
		got := NormalizeOrderIDs([]string{"3", "", "1", " ", "3", "2", "1"})
		assert.Equal(t, []string{"3", "1", "2"}, got)
	})

	t.Run("empty input yields empty slice", func(t *testing.T) {
		got := NormalizeOrderIDs(nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestNewOwner(t *testing.T) {
	t.Run("shop domains are normalized", func(t *testing.T) {
		owner, err := NewShopOwner("  Demo-Store.MyShopify.com ")
		require.NoError(t, err)
		assert.Equal(t, "demo-store.myshopify.com", owner.ID)
		assert.Equal(t, OwnerKindShop, owner.Kind)
	})

	t.Run("empty identifiers are rejected", func(t *testing.T) {
		_, err := NewUserOwner("")
		assert.Error(t, err)
		_, err = NewShopOwner("   ")
		assert.Error(t, err)
	})
}
