package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"meal-planner/internal/core/consolidate"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// mergeRow 合併服務回傳的單列結果
type mergeRow struct {
	Name          string   `json:"name"`
	Quantity      float64  `json:"quantity"`
	Unit          string   `json:"unit"`
	Category      string   `json:"category"`
	EstimatedCost float64  `json:"estimated_cost"`
	OriginalItems []string `json:"original_items"`
}

// Service AI 輔助合併服務
// 失敗時一律退回規則式合併，呼叫端永遠拿得到結果
type Service struct {
	config       *config.Config
	client       Completer
	cacheManager *CacheManager

	mu        sync.Mutex
	attempted map[string]bool // 每組輸入只嘗試一次，控制模型調用成本
}

// NewService 創建合併服務
func NewService(cfg *config.Config, client Completer, cacheManager *CacheManager) *Service {
	return &Service{
		config:       cfg,
		client:       client,
		cacheManager: cacheManager,
		attempted:    make(map[string]bool),
	}
}

// MergeIngredients 合併食材清單
// AI 路徑失敗、停用或已嘗試過時，回傳規則式合併結果，永不回傳錯誤
func (s *Service) MergeIngredients(ctx context.Context, items []common.LineItem) []common.MergedIngredient {
	if len(items) == 0 {
		return nil
	}

	if !s.config.Recommender.Enabled || s.client == nil {
		return consolidate.MergeRuleBased(items)
	}

	key := populationKey(items)

	// 檢查緩存
	if s.cacheManager != nil {
		if val, ok := s.cacheManager.Get(key); ok {
			var cached []common.MergedIngredient
			if err := common.ParseJSON(val, &cached); err == nil {
				return cached
			}
		}
	}

	// 每組輸入只調用一次模型，重複請求直接走規則式合併
	s.mu.Lock()
	if s.attempted[key] {
		s.mu.Unlock()
		return consolidate.MergeRuleBased(items)
	}
	s.attempted[key] = true
	s.mu.Unlock()

	start := time.Now()
	merged, err := s.callMergeService(ctx, items)
	common.LogMergeCall(len(items), time.Since(start), err)
	if err != nil {
		common.LogWarn("AI 合併失敗，改用規則式合併",
			zap.Error(err),
			zap.Int("項目數", len(items)),
		)
		return consolidate.MergeRuleBased(items)
	}

	if s.cacheManager != nil {
		if serialized, err := common.ToJSON(merged); err == nil {
			_ = s.cacheManager.Set(key, serialized)
		}
	}

	return merged
}

// callMergeService 調用模型執行語意合併
func (s *Service) callMergeService(ctx context.Context, items []common.LineItem) ([]common.MergedIngredient, error) {
	prompt := fmt.Sprintf(`你是採買清單的合併助手。請將以下食材項目去除重複並合併，
語意相同的項目（例如 onion 與 red onion）應合併為一列，單位相同時數量加總。
(不需要考慮可讀性，請省略所有空格和換行，返回最緊湊的 JSON 格式)
要求：
1. 只能合併語意相同或高度相近的項目
2. 不同單位的項目不可直接加總
3. original_items 必須列出被合併的原始名稱
4. estimated_cost 為該列的估計花費，無法估計時填 0
5. 所有欄位必須使用雙引號
請以以下 JSON 格式返回：
[{"name":"合併後名稱","quantity":數量,"unit":"單位","category":"分類","estimated_cost":金額,"original_items":["原始名稱"]}]

食材清單：
%s`, common.FormatLineItems(items))

	content, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to call merge service: %w", err)
	}

	// 解析回應
	raw := common.ExtractJSONArray(content)
	var rows []mergeRow
	if err := common.ParseJSON(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse merge response: %w", err)
	}

	// 空結果或超出輸入數量都視為格式錯誤
	if len(rows) == 0 {
		return nil, fmt.Errorf("merge response is empty")
	}
	if len(rows) > len(items) {
		return nil, fmt.Errorf("merge response has more rows than input items")
	}

	return reconstruct(rows, items), nil
}

// reconstruct 以原始項目為底，覆蓋模型回傳的欄位
func reconstruct(rows []mergeRow, items []common.LineItem) []common.MergedIngredient {
	out := make([]common.MergedIngredient, 0, len(rows))
	for _, row := range rows {
		// 找出代表性的原始項目：第一個 original_items 名稱的不分大小寫精確比對
		// 找不到時退回輸入清單的第一項
		rep := items[0]
		if len(row.OriginalItems) > 0 {
			for _, item := range items {
				if strings.EqualFold(item.Name, row.OriginalItems[0]) {
					rep = item
					break
				}
			}
		}

		category := row.Category
		if category == "" {
			category = consolidate.DefaultCategory(row.Name)
		}

		merged := common.MergedIngredient{
			Name:           row.Name,
			OriginalName:   rep.Name,
			Quantity:       row.Quantity,
			Unit:           consolidate.NormalizeUnit(row.Unit),
			Category:       category,
			EstimatedPrice: row.EstimatedCost,
			MergedFrom:     row.OriginalItems,
			MergedCount:    len(row.OriginalItems),
			IsAIMerged:     true,
		}
		if merged.MergedCount == 0 {
			merged.MergedFrom = []string{rep.Name}
			merged.MergedCount = 1
		}
		out = append(out, merged)
	}
	return out
}

// populationKey 計算輸入清單的指紋，與項目順序無關
func populationKey(items []common.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s|%g|%s|%s",
			consolidate.NormalizeName(item.Name),
			item.Quantity,
			consolidate.NormalizeUnit(item.Unit),
			item.Category,
		))
	}
	sort.Strings(parts)
	hash := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(hash[:])
}
