package consolidate

import (
	"testing"

	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeKey(t *testing.T) {
	tests := []struct {
		name string
		a    common.LineItem
		b    common.LineItem
		same bool
	}{
		{
			name: "同名同單位",
			a:    common.LineItem{Name: "Tomato", Unit: "g"},
			b:    common.LineItem{Name: "tomato", Unit: "gram"},
			same: true,
		},
		{
			name: "複數視為同名",
			a:    common.LineItem{Name: "Tomato", Unit: "g"},
			b:    common.LineItem{Name: "tomatoes", Unit: "g"},
			same: true,
		},
		{
			name: "冠詞與標點不影響",
			a:    common.LineItem{Name: "an onion", Unit: "piece"},
			b:    common.LineItem{Name: "Onion.", Unit: "pcs"},
			same: true,
		},
		{
			name: "同名不同單位不可合併",
			a:    common.LineItem{Name: "flour", Unit: "g"},
			b:    common.LineItem{Name: "flour", Unit: "cup"},
			same: false,
		},
		{
			name: "不同名同單位不可合併",
			a:    common.LineItem{Name: "salt", Unit: "g"},
			b:    common.LineItem{Name: "sugar", Unit: "g"},
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.same {
				assert.Equal(t, MergeKey(tt.a), MergeKey(tt.b))
			} else {
				assert.NotEqual(t, MergeKey(tt.a), MergeKey(tt.b))
			}
		})
	}
}

func TestMergeRuleBased(t *testing.T) {
	items := []common.LineItem{
		{Name: "Tomato", Quantity: 200, Unit: "g", Source: common.SourceRecipe},
		{Name: "tomatoes", Quantity: 300, Unit: "gram", Source: common.SourceRecipe},
	}

	merged := MergeRuleBased(items)
	require.Len(t, merged, 1)

	row := merged[0]
	assert.Equal(t, "Tomato", row.Name) // 保留第一次出現的顯示名稱
	assert.Equal(t, float64(500), row.Quantity)
	assert.Equal(t, "g", row.Unit)
	assert.Equal(t, 2, row.MergedCount)
	assert.Equal(t, []string{"recipe"}, row.MergedFrom)
	assert.False(t, row.IsAIMerged)
}

func TestMergeRuleBasedNoCrossUnitSum(t *testing.T) {
	items := []common.LineItem{
		{Name: "flour", Quantity: 500, Unit: "g", Source: common.SourceRecipe},
		{Name: "flour", Quantity: 1, Unit: "kg", Source: common.SourceManual},
		{Name: "flour", Quantity: 2, Unit: "cup", Source: common.SourceManual},
	}

	merged := MergeRuleBased(items)
	require.Len(t, merged, 3)

	// 每個單位家族各自一行，數量不得跨單位換算加總
	assert.Equal(t, float64(500), merged[0].Quantity)
	assert.Equal(t, "g", merged[0].Unit)
	assert.Equal(t, float64(1), merged[1].Quantity)
	assert.Equal(t, "kg", merged[1].Unit)
	assert.Equal(t, float64(2), merged[2].Quantity)
	assert.Equal(t, "cup", merged[2].Unit)
}

func TestMergeRuleBasedPreservesFirstSeenOrder(t *testing.T) {
	items := []common.LineItem{
		{Name: "onion", Quantity: 1, Unit: "piece", Source: common.SourceRecipe},
		{Name: "garlic", Quantity: 2, Unit: "piece", Source: common.SourceRecipe},
		{Name: "onions", Quantity: 3, Unit: "piece", Source: common.SourceManual},
	}

	merged := MergeRuleBased(items)
	require.Len(t, merged, 2)
	assert.Equal(t, "onion", merged[0].Name)
	assert.Equal(t, float64(4), merged[0].Quantity)
	assert.ElementsMatch(t, []string{"recipe", "manual"}, merged[0].MergedFrom)
	assert.Equal(t, "garlic", merged[1].Name)
}

func TestMergeRuleBasedSumsEstimatedPrice(t *testing.T) {
	items := []common.LineItem{
		{Name: "beef", Quantity: 300, Unit: "g", EstimatedPrice: 120, Source: common.SourceRecipe},
		{Name: "beef", Quantity: 200, Unit: "g", EstimatedPrice: 80, Source: common.SourceManual},
	}

	merged := MergeRuleBased(items)
	require.Len(t, merged, 1)
	assert.Equal(t, float64(200), merged[0].EstimatedPrice)
}

func TestMergeRuleBasedFillsDefaultCategory(t *testing.T) {
	merged := MergeRuleBased([]common.LineItem{
		{Name: "tomato", Quantity: 1, Unit: "piece", Source: common.SourceManual},
		{Name: "mystery sauce", Quantity: 1, Unit: "ml", Source: common.SourceManual},
	})
	require.Len(t, merged, 2)
	assert.Equal(t, CategoryVegetables, merged[0].Category)
	assert.Equal(t, CategoryOthers, merged[1].Category)
}

func TestMergeRuleBasedEmptyInput(t *testing.T) {
	assert.Empty(t, MergeRuleBased(nil))
	assert.Empty(t, MergeRuleBased([]common.LineItem{}))
}
