package consolidate

import (
	"testing"

	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByCategory(t *testing.T) {
	rows := []common.MergedIngredient{
		{Name: "cake", Category: CategoryDesserts},
		{Name: "tomato", Category: CategoryVegetables},
		{Name: "mystery", Category: "unknown-category"},
		{Name: "onion", Category: CategoryVegetables},
		{Name: "blank", Category: ""},
	}

	groups := GroupByCategory(rows)
	require.Len(t, groups, 3)

	// 分組順序依固定優先序，蔬菜在甜點前，others 墊底
	assert.Equal(t, CategoryVegetables, groups[0].Category)
	assert.Equal(t, CategoryDesserts, groups[1].Category)
	assert.Equal(t, CategoryOthers, groups[2].Category)

	// 組內保留輸入順序
	require.Len(t, groups[0].Items, 2)
	assert.Equal(t, "tomato", groups[0].Items[0].Name)
	assert.Equal(t, "onion", groups[0].Items[1].Name)

	// 未知與空分類都歸入 others
	require.Len(t, groups[2].Items, 2)
}

func TestGroupByCategoryOmitsEmptyGroups(t *testing.T) {
	groups := GroupByCategory([]common.MergedIngredient{
		{Name: "milk", Category: CategoryDairy},
	})
	require.Len(t, groups, 1)
	assert.Equal(t, CategoryDairy, groups[0].Category)
}

func TestGroupByCategoryEmptyInput(t *testing.T) {
	assert.Empty(t, GroupByCategory(nil))
}

func TestLookupReference(t *testing.T) {
	entry, ok := LookupReference("Tomato")
	require.True(t, ok)
	assert.Equal(t, CategoryVegetables, entry.Category)

	// 修飾詞靠部分比對涵蓋
	entry, ok = LookupReference("chopped onions")
	require.True(t, ok)
	assert.Equal(t, "onion", entry.Name)

	_, ok = LookupReference("unobtainium")
	assert.False(t, ok)

	_, ok = LookupReference("")
	assert.False(t, ok)
}

func TestDefaultCategory(t *testing.T) {
	assert.Equal(t, CategoryMeat, DefaultCategory("beef"))
	assert.Equal(t, CategoryOthers, DefaultCategory("unobtainium"))
}

func TestImageQueryFor(t *testing.T) {
	assert.Equal(t, "fresh tomato", ImageQueryFor("tomatoes"))
	assert.Equal(t, "dragon fruit jam", ImageQueryFor("Dragon Fruit Jam"))
}
