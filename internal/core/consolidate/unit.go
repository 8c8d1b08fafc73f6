package consolidate

import (
	"strings"
)

// DefaultUnit 空白單位的預設值，視為可數單位
const DefaultUnit = "unit"

// unitSynonyms 單位同義詞表，每個單位家族對應一個正規化代號
// 只做拼寫正規化，不做量值換算（量值換算屬於顯示層，見 quantity.go）
var unitSynonyms = map[string]string{
	// 質量
	"g":         "g",
	"gram":      "g",
	"grams":     "g",
	"克":         "g",
	"公克":        "g",
	"kg":        "kg",
	"kilogram":  "kg",
	"kilograms": "kg",
	"公斤":        "kg",

	// 體積
	"ml":          "ml",
	"milliliter":  "ml",
	"milliliters": "ml",
	"毫升":          "ml",
	"l":           "l",
	"liter":       "l",
	"liters":      "l",
	"litre":       "l",
	"litres":      "l",
	"公升":          "l",

	// 廚房量匙
	"tbsp":        "tbsp",
	"tablespoon":  "tbsp",
	"tablespoons": "tbsp",
	"湯匙":          "tbsp",
	"tsp":         "tsp",
	"teaspoon":    "tsp",
	"teaspoons":   "tsp",
	"茶匙":          "tsp",
	"cup":         "cup",
	"cups":        "cup",
	"杯":           "cup",

	// 可數單位
	"piece":  "piece",
	"pieces": "piece",
	"pc":     "piece",
	"pcs":    "piece",
	"item":   "piece",
	"items":  "piece",
	"個":      "piece",
	"顆":      "piece",
	"unit":   "unit",
	"units":  "unit",
	"份":      "unit",
}

// NormalizeUnit 正規化單位拼寫
// 未知單位保留原樣（小寫、去除空白），永遠不會失敗
func NormalizeUnit(raw string) string {
	unit := strings.ToLower(strings.TrimSpace(raw))
	if unit == "" {
		return DefaultUnit
	}
	if canonical, ok := unitSynonyms[unit]; ok {
		return canonical
	}
	return unit
}
