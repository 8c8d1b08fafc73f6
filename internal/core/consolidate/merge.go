package consolidate

import (
	"meal-planner/internal/pkg/common"
)

// MergeKey 合併鍵，只有名稱與單位都正規化後相同的項目才會被加總
func MergeKey(item common.LineItem) string {
	return NormalizeName(item.Name) + "::" + NormalizeUnit(item.Unit)
}

// MergeRuleBased 規則式合併：依合併鍵分組並加總數量
// AI 合併不可用時的確定性後備方案，輸出依首次出現順序排列
func MergeRuleBased(items []common.LineItem) []common.MergedIngredient {
	index := make(map[string]int, len(items))
	grouped := make([][]common.LineItem, 0, len(items))
	out := make([]common.MergedIngredient, 0, len(items))

	for _, item := range items {
		key := MergeKey(item)
		if i, ok := index[key]; ok {
			out[i].Quantity += item.Quantity
			out[i].EstimatedPrice += item.EstimatedPrice
			out[i].MergedCount++
			grouped[i] = append(grouped[i], item)
			continue
		}

		category := item.Category
		if category == "" {
			category = DefaultCategory(item.Name)
		}

		index[key] = len(out)
		grouped = append(grouped, []common.LineItem{item})
		out = append(out, common.MergedIngredient{
			Name:           item.Name, // 保留第一次出現的顯示名稱
			OriginalName:   item.Name,
			Quantity:       item.Quantity,
			Unit:           NormalizeUnit(item.Unit),
			Category:       category,
			EstimatedPrice: item.EstimatedPrice,
			MergedCount:    1,
		})
	}

	for i := range out {
		out[i].MergedFrom = common.SourceStrings(grouped[i])
	}
	return out
}
