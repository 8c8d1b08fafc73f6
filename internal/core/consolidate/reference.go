package consolidate

import (
	"strings"
)

// ReferenceEntry 食材參考資料，提供預設分類與圖片查詢關鍵字
type ReferenceEntry struct {
	Name       string
	Category   string
	ImageQuery string
}

// referenceCatalog 靜態參考資料表
// 查詢採先精確後部分比對，表內順序即部分比對的優先順序
var referenceCatalog = []ReferenceEntry{
	{Name: "tomato", Category: CategoryVegetables, ImageQuery: "fresh tomato"},
	{Name: "onion", Category: CategoryVegetables, ImageQuery: "onion"},
	{Name: "garlic", Category: CategoryVegetables, ImageQuery: "garlic bulb"},
	{Name: "potato", Category: CategoryVegetables, ImageQuery: "potato"},
	{Name: "carrot", Category: CategoryVegetables, ImageQuery: "carrot"},
	{Name: "cabbage", Category: CategoryVegetables, ImageQuery: "cabbage"},
	{Name: "spinach", Category: CategoryVegetables, ImageQuery: "spinach leaves"},
	{Name: "broccoli", Category: CategoryVegetables, ImageQuery: "broccoli"},
	{Name: "cucumber", Category: CategoryVegetables, ImageQuery: "cucumber"},
	{Name: "lettuce", Category: CategoryVegetables, ImageQuery: "lettuce"},
	{Name: "mushroom", Category: CategoryVegetables, ImageQuery: "mushroom"},
	{Name: "bell pepper", Category: CategoryVegetables, ImageQuery: "bell pepper"},
	{Name: "ginger", Category: CategoryVegetables, ImageQuery: "ginger root"},
	{Name: "scallion", Category: CategoryVegetables, ImageQuery: "scallion"},

	{Name: "apple", Category: CategoryFruits, ImageQuery: "red apple"},
	{Name: "banana", Category: CategoryFruits, ImageQuery: "banana"},
	{Name: "orange", Category: CategoryFruits, ImageQuery: "orange fruit"},
	{Name: "lemon", Category: CategoryFruits, ImageQuery: "lemon"},
	{Name: "lime", Category: CategoryFruits, ImageQuery: "lime fruit"},
	{Name: "strawberry", Category: CategoryFruits, ImageQuery: "strawberries"},
	{Name: "grape", Category: CategoryFruits, ImageQuery: "grapes"},
	{Name: "watermelon", Category: CategoryFruits, ImageQuery: "watermelon"},
	{Name: "mango", Category: CategoryFruits, ImageQuery: "mango"},

	{Name: "chicken", Category: CategoryMeat, ImageQuery: "raw chicken"},
	{Name: "beef", Category: CategoryMeat, ImageQuery: "raw beef"},
	{Name: "pork", Category: CategoryMeat, ImageQuery: "pork meat"},
	{Name: "bacon", Category: CategoryMeat, ImageQuery: "bacon strips"},
	{Name: "sausage", Category: CategoryMeat, ImageQuery: "sausage"},

	{Name: "salmon", Category: CategorySeafood, ImageQuery: "salmon fillet"},
	{Name: "shrimp", Category: CategorySeafood, ImageQuery: "shrimp"},
	{Name: "tuna", Category: CategorySeafood, ImageQuery: "tuna"},

	{Name: "milk", Category: CategoryDairy, ImageQuery: "milk bottle"},
	{Name: "egg", Category: CategoryDairy, ImageQuery: "eggs"},
	{Name: "butter", Category: CategoryDairy, ImageQuery: "butter"},
	{Name: "cheese", Category: CategoryDairy, ImageQuery: "cheese"},
	{Name: "yogurt", Category: CategoryDairy, ImageQuery: "yogurt"},
	{Name: "cream", Category: CategoryDairy, ImageQuery: "cooking cream"},

	{Name: "rice", Category: CategoryGrains, ImageQuery: "white rice"},
	{Name: "pasta", Category: CategoryGrains, ImageQuery: "pasta"},
	{Name: "noodle", Category: CategoryGrains, ImageQuery: "noodles"},
	{Name: "bread", Category: CategoryGrains, ImageQuery: "bread loaf"},
	{Name: "flour", Category: CategoryGrains, ImageQuery: "flour"},

	{Name: "chip", Category: CategorySnacks, ImageQuery: "potato chips"},
	{Name: "cracker", Category: CategorySnacks, ImageQuery: "crackers"},
	{Name: "popcorn", Category: CategorySnacks, ImageQuery: "popcorn"},
	{Name: "nut", Category: CategorySnacks, ImageQuery: "mixed nuts"},

	{Name: "juice", Category: CategoryDrinks, ImageQuery: "fruit juice"},
	{Name: "soda", Category: CategoryDrinks, ImageQuery: "soda cans"},
	{Name: "coffee", Category: CategoryDrinks, ImageQuery: "coffee beans"},
	{Name: "tea", Category: CategoryDrinks, ImageQuery: "tea"},
	{Name: "wine", Category: CategoryDrinks, ImageQuery: "wine bottle"},
	{Name: "beer", Category: CategoryDrinks, ImageQuery: "beer bottles"},

	{Name: "chocolate", Category: CategoryDesserts, ImageQuery: "chocolate"},
	{Name: "cake", Category: CategoryDesserts, ImageQuery: "cake"},
	{Name: "cookie", Category: CategoryDesserts, ImageQuery: "cookies"},
	{Name: "ice cream", Category: CategoryDesserts, ImageQuery: "ice cream"},
}

// LookupReference 查詢食材參考資料
// 先做精確比對，再做雙向子字串比對（項目名稱包含參考名稱，或反之）
// 部分比對刻意寬鬆，為了涵蓋複數與修飾詞（chopped onions 對上 onion），
// 代價是偶發誤判，列表順序決定同分時的勝者
func LookupReference(name string) (ReferenceEntry, bool) {
	key := NormalizeName(name)
	if key == "" {
		return ReferenceEntry{}, false
	}

	for _, entry := range referenceCatalog {
		if entry.Name == key {
			return entry, true
		}
	}

	for _, entry := range referenceCatalog {
		if strings.Contains(key, entry.Name) || strings.Contains(entry.Name, key) {
			return entry, true
		}
	}

	return ReferenceEntry{}, false
}

// DefaultCategory 取得食材的預設分類，查不到時歸入 others
func DefaultCategory(name string) string {
	if entry, ok := LookupReference(name); ok {
		return entry.Category
	}
	return CategoryOthers
}

// ImageQueryFor 取得食材的圖片查詢關鍵字，查不到時用正規化名稱
func ImageQueryFor(name string) string {
	if entry, ok := LookupReference(name); ok {
		return entry.ImageQuery
	}
	return NormalizeName(name)
}
