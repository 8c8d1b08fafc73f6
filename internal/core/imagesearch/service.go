package imagesearch

import (
	"context"
	"sync"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Lookup 單一圖片查詢介面
type Lookup interface {
	// LookupImage 以關鍵字查詢代表圖片，查無結果時回傳空字串
	LookupImage(ctx context.Context, query string) (string, error)
}

// Service 食材圖片查詢服務
// 查詢失敗一律落到佔位圖，不影響清單本身
// 每個名稱在行程存活期間最多只查一次
type Service struct {
	config *config.Config
	lookup Lookup

	mu   sync.Mutex
	seen map[string]string // 名稱 -> 圖片 URL（含佔位圖）
}

// NewService 創建圖片查詢服務
func NewService(cfg *config.Config, lookup Lookup) *Service {
	return &Service{
		config: cfg,
		lookup: lookup,
		seen:   make(map[string]string),
	}
}

// Enrich 批次補上食材圖片
// 以固定批次大小並行查詢，批次之間停頓以尊重外部服務的流量限制
func (s *Service) Enrich(ctx context.Context, names []string) map[string]string {
	out := make(map[string]string, len(names))
	if !s.config.ImageSearch.Enabled || s.lookup == nil {
		for _, name := range names {
			out[name] = s.config.ImageSearch.PlaceholderURL
		}
		return out
	}

	// 先用已查過的結果，剩下的才進查詢批次
	var todo []string
	s.mu.Lock()
	for _, name := range names {
		if url, ok := s.seen[name]; ok {
			out[name] = url
		} else {
			todo = append(todo, name)
		}
	}
	s.mu.Unlock()

	batchSize := s.config.ImageSearch.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
loop:
	for start := 0; start < len(todo); start += batchSize {
		end := start + batchSize
		if end > len(todo) {
			end = len(todo)
		}

		var wg sync.WaitGroup
		for _, name := range todo[start:end] {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				url := s.lookupOne(ctx, name)
				s.mu.Lock()
				s.seen[name] = url
				s.mu.Unlock()
			}(name)
		}
		wg.Wait()

		// 批次間的停頓
		if end < len(todo) && s.config.ImageSearch.BatchDelay > 0 {
			select {
			case <-time.After(s.config.ImageSearch.BatchDelay):
			case <-ctx.Done():
				break loop
			}
		}
	}

	// 收尾：沒查到的名稱一律給佔位圖
	s.mu.Lock()
	for _, name := range todo {
		url, ok := s.seen[name]
		if !ok {
			url = s.config.ImageSearch.PlaceholderURL
			s.seen[name] = url
		}
		out[name] = url
	}
	s.mu.Unlock()
	return out
}

// lookupOne 查詢單一名稱，任何失敗都回傳佔位圖
func (s *Service) lookupOne(ctx context.Context, name string) string {
	url, err := s.lookup.LookupImage(ctx, name)
	if err != nil {
		common.LogDebug("圖片查詢失敗，改用佔位圖",
			zap.String("name", name),
			zap.Error(err),
		)
		return s.config.ImageSearch.PlaceholderURL
	}
	if url == "" {
		return s.config.ImageSearch.PlaceholderURL
	}
	return url
}
