package shopping

import (
	"context"
	"fmt"

	"meal-planner/internal/core/consolidate"
	"meal-planner/internal/core/pending"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// ItemSource 已儲存項目的來源
type ItemSource interface {
	GetItems(ctx context.Context, eventID string) ([]common.LineItem, error)
}

// Merger 清單合併介面，失敗時由實作自行退回規則式合併
type Merger interface {
	MergeIngredients(ctx context.Context, items []common.LineItem) []common.MergedIngredient
}

// Enricher 圖片補充介面
type Enricher interface {
	Enrich(ctx context.Context, names []string) map[string]string
}

// Service 採買清單服務
// 把已儲存項目與待儲存項目攤平後合併、分組、換算顯示數量、補圖片
type Service struct {
	config   *config.Config
	items    ItemSource
	merger   Merger
	enricher Enricher
	pending  *pending.Store
}

// NewService 創建採買清單服務
func NewService(cfg *config.Config, items ItemSource, merger Merger, enricher Enricher, pendingStore *pending.Store) *Service {
	return &Service{
		config:   cfg,
		items:    items,
		merger:   merger,
		enricher: enricher,
		pending:  pendingStore,
	}
}

// ConsolidatedList 產生整合後的採買清單
// 合併與分組永遠會完成；圖片補充失敗不影響清單內容
func (s *Service) ConsolidatedList(ctx context.Context, eventID string) ([]common.CategoryGroup, error) {
	serverItems, err := s.items.GetItems(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved items: %w", err)
	}

	// 登記伺服器端項目，移除守衛需要知道它們的來源
	s.pending.TrackServerItems(eventID, serverItems)

	pendingItems := s.pending.Pending(eventID)
	all := make([]common.LineItem, 0, len(serverItems)+len(pendingItems))
	all = append(all, serverItems...)
	all = append(all, pendingItems...)

	if len(all) == 0 {
		return nil, nil
	}

	merged := s.merger.MergeIngredients(ctx, all)

	// 顯示數量換算
	for i := range merged {
		merged[i].Display = consolidate.FormatSmartQuantity(merged[i].Quantity, merged[i].Unit)
	}

	// 圖片補充，與清單正確性解耦
	if s.enricher != nil {
		names := make([]string, 0, len(merged))
		for _, row := range merged {
			names = append(names, consolidate.ImageQueryFor(row.Name))
		}
		images := s.enricher.Enrich(ctx, names)
		for i := range merged {
			merged[i].ImageURL = images[consolidate.ImageQueryFor(merged[i].Name)]
		}
	}

	groups := consolidate.GroupByCategory(merged)

	common.LogInfo("採買清單整合完成",
		zap.String("event_id", eventID),
		zap.Int("item_count", len(all)),
		zap.Int("merged_count", len(merged)),
		zap.Int("group_count", len(groups)),
	)
	return groups, nil
}
