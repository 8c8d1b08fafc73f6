package common

import (
	"fmt"
	"strings"
	"time"
)

// Source 食材項目來源
type Source string

const (
	// SourceRecipe 由食譜展開的項目，使用者不可移除
	SourceRecipe Source = "recipe"
	// SourceManual 使用者手動加入的項目
	SourceManual Source = "manual"
)

// LineItem 單一食材項目
type LineItem struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category,omitempty"`
	Source         Source  `json:"source"`
	EstimatedPrice float64 `json:"estimated_price,omitempty"`
}

// Quantity 顯示用數量與單位
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// MergedIngredient 合併後的採買項目
type MergedIngredient struct {
	Name           string   `json:"name"`
	OriginalName   string   `json:"original_name,omitempty"` // 第一次出現時的原始名稱
	Quantity       float64  `json:"quantity"`                // 基礎單位下的加總
	Unit           string   `json:"unit"`                    // 正規化後的單位
	Category       string   `json:"category,omitempty"`
	EstimatedPrice float64  `json:"estimated_price,omitempty"`
	MergedFrom     []string `json:"merged_from"`
	MergedCount    int      `json:"merged_count"`
	IsAIMerged     bool     `json:"is_ai_merged"`
	Display        Quantity `json:"display"`
	ImageURL       string   `json:"image_url,omitempty"`
}

// CategoryGroup 依分類分組的合併結果
type CategoryGroup struct {
	Category string             `json:"category"`
	Items    []MergedIngredient `json:"items"`
}

// ShoppingListSnapshot 後端產生的權威採買清單
type ShoppingListSnapshot struct {
	EventID     string     `json:"event_id"`
	Items       []LineItem `json:"items"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// FormatLineItems 將項目列表格式化為提示詞用的條列文字
func FormatLineItems(items []LineItem) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s: %g %s (%s)\n",
			item.Name, item.Quantity, item.Unit, item.Category))
	}
	return sb.String()
}

// SourceStrings 取出項目來源列表，去除重複
func SourceStrings(items []LineItem) []string {
	var out []string
	seen := make(map[string]bool)
	for _, item := range items {
		s := string(item.Source)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
