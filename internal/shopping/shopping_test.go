package shopping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityDecoding(t *testing.T) {
	var items []Item
	err := json.Unmarshal([]byte(`[
		{"ingredient":"Tomates","quantity":"1-2","unit":"kg","category":"Frutas y Verduras"},
		{"ingredient":"Huevos","quantity":12,"unit":"unidades","category":"Lácteos y Huevos"},
		{"ingredient":"Aceite","quantity":0.5,"unit":"l","category":"Despensa"},
		{"ingredient":"Sal","quantity":null,"unit":"","category":""}
	]`), &items)
	require.NoError(t, err)

	assert.Equal(t, Quantity("1-2"), items[0].Quantity)
	assert.Equal(t, Quantity("12"), items[1].Quantity)
	assert.Equal(t, Quantity("0.5"), items[2].Quantity)
	assert.Equal(t, Quantity(""), items[3].Quantity)

	var bad Item
	assert.Error(t, json.Unmarshal([]byte(`{"quantity": true}`), &bad))
}

func TestGroupByCategory(t *testing.T) {
	items := []Item{
		{Ingredient: "Pan", Category: "Panadería"},
		{Ingredient: "Tomates", Category: "Frutas y Verduras", Checked: true},
		{Ingredient: "Sal"},
		{Ingredient: "Cebollas", Category: "Frutas y Verduras"},
	}

	groups := GroupByCategory(items, false)
	require.Len(t, groups, 3)
	assert.Equal(t, "Frutas y Verduras", groups[0].Category)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, DefaultCategory, groups[1].Category)
	assert.Equal(t, "Panadería", groups[2].Category)

	unchecked := GroupByCategory(items, true)
	require.Len(t, unchecked, 3)
	assert.Equal(t, []Item{{Ingredient: "Cebollas", Category: "Frutas y Verduras"}}, unchecked[0].Items)

	assert.Empty(t, GroupByCategory([]Item{{Ingredient: "x", Checked: true}}, true))
}

func TestToggle(t *testing.T) {
	items := []Item{{Ingredient: "Pan"}, {Ingredient: "Sal"}}

	next, err := Toggle(items, 1)
	require.NoError(t, err)
	assert.True(t, next[1].Checked)
	assert.False(t, items[1].Checked)
	assert.Equal(t, 1, Remaining(next))

	back, err := Toggle(next, 1)
	require.NoError(t, err)
	assert.False(t, back[1].Checked)

	_, err = Toggle(items, 2)
	assert.Error(t, err)
}
