package consolidate

import (
	"meal-planner/internal/pkg/common"
)

// 分類名稱
const (
	CategoryVegetables = "vegetables"
	CategoryFruits     = "fruits"
	CategoryMeat       = "meat"
	CategorySeafood    = "seafood"
	CategoryDairy      = "dairy"
	CategoryGrains     = "grains"
	CategorySnacks     = "snacks"
	CategoryDrinks     = "drinks"
	CategoryDesserts   = "desserts"
	CategoryOthers     = "others"
)

// categoryPriority 分類的固定顯示順序
var categoryPriority = []string{
	CategoryVegetables,
	CategoryFruits,
	CategoryMeat,
	CategorySeafood,
	CategoryDairy,
	CategoryGrains,
	CategorySnacks,
	CategoryDrinks,
	CategoryDesserts,
	CategoryOthers,
}

// GroupByCategory 依分類分組，未知分類歸入 others，空分組不輸出
// 分組順序依 categoryPriority，組內保留輸入順序
func GroupByCategory(rows []common.MergedIngredient) []common.CategoryGroup {
	known := make(map[string]bool, len(categoryPriority))
	for _, c := range categoryPriority {
		known[c] = true
	}

	buckets := make(map[string][]common.MergedIngredient)
	for _, row := range rows {
		category := row.Category
		if category == "" || !known[category] {
			category = CategoryOthers
		}
		buckets[category] = append(buckets[category], row)
	}

	out := make([]common.CategoryGroup, 0, len(buckets))
	for _, category := range categoryPriority {
		if items, ok := buckets[category]; ok {
			out = append(out, common.CategoryGroup{
				Category: category,
				Items:    items,
			})
		}
	}
	return out
}
