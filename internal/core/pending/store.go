package pending

import (
	"context"
	"sync"
	"time"

	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// State 手動項目的生命週期狀態
// 狀態轉移：NotCreated → Pending → (Removed | Persisted)，Persisted 為終態
type State string

const (
	// StatePending 僅存在於本服務記憶體，尚未送到後端
	StatePending State = "pending"
	// StatePersisted 已確認儲存，之後不再允許本地修改
	StatePersisted State = "persisted"
)

// Item 待儲存項目，帶明確的狀態標記而非布林旗標
type Item struct {
	common.LineItem
	State   State     `json:"state"`
	AddedAt time.Time `json:"added_at"`
}

// Persister 後端儲存服務介面
type Persister interface {
	AddItemsBulk(ctx context.Context, eventID string, items []common.LineItem) error
	GenerateShoppingList(ctx context.Context, eventID string) (*common.ShoppingListSnapshot, error)
}

// eventState 單一事件的對帳狀態
type eventState struct {
	pending []Item
	// tracked 記錄本 session 看過的伺服器端項目，用於移除時的守衛判斷
	tracked map[string]common.Source
	saving  bool
}

// Store 待儲存項目對帳層
// 每個事件各自維護 pending 清單，儲存作業同一時間只允許一個在途
type Store struct {
	persister Persister
	mu        sync.Mutex
	events    map[string]*eventState
}

// NewStore 創建對帳層
func NewStore(persister Persister) *Store {
	return &Store{
		persister: persister,
		events:    make(map[string]*eventState),
	}
}

func (s *Store) eventLocked(eventID string) *eventState {
	ev, ok := s.events[eventID]
	if !ok {
		ev = &eventState{tracked: make(map[string]common.Source)}
		s.events[eventID] = ev
	}
	return ev
}

// Add 加入待儲存項目，只動記憶體，不碰後端
// 來源一律視為手動，並配發項目 ID
func (s *Store) Add(eventID string, item common.LineItem) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = common.GenerateUUID()
	item.Source = common.SourceManual

	entry := Item{
		LineItem: item,
		State:    StatePending,
		AddedAt:  time.Now(),
	}

	ev := s.eventLocked(eventID)
	ev.pending = append(ev.pending, entry)

	common.LogInfo("加入待儲存項目",
		zap.String("event_id", eventID),
		zap.String("item_id", item.ID),
		zap.Int("pending_count", len(ev.pending)),
	)
	return entry
}

// TrackServerItems 登記伺服器端回來的項目來源，供移除守衛判斷
func (s *Store) TrackServerItems(eventID string, items []common.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.eventLocked(eventID)
	for _, item := range items {
		if item.ID != "" {
			ev.tracked[item.ID] = item.Source
		}
	}
}

// Remove 移除待儲存項目
// 食譜項目與已儲存的手動項目都會被拒絕，且不是靜默忽略
func (s *Store) Remove(eventID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.eventLocked(eventID)
	for i, item := range ev.pending {
		if item.ID == itemID {
			ev.pending = append(ev.pending[:i], ev.pending[i+1:]...)
			common.LogInfo("移除待儲存項目",
				zap.String("event_id", eventID),
				zap.String("item_id", itemID),
				zap.Int("pending_count", len(ev.pending)),
			)
			return nil
		}
	}

	if source, ok := ev.tracked[itemID]; ok {
		if source == common.SourceRecipe {
			return common.ErrRecipeItemLocked
		}
		// 已儲存手動項目目前不支援在此流程移除，屬已知限制
		return common.ErrPersistedItemFixed
	}

	return common.ErrPendingItemMissing
}

// Pending 取得事件目前的待儲存項目
func (s *Store) Pending(eventID string) []common.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.eventLocked(eventID)
	out := make([]common.LineItem, 0, len(ev.pending))
	for _, item := range ev.pending {
		out = append(out, item.LineItem)
	}
	return out
}

// SaveResult 儲存作業結果
type SaveResult struct {
	Snapshot *common.ShoppingListSnapshot
	// Stale 表示項目已儲存成功，但權威清單重建失敗，畫面內容可能過期
	Stale bool
	Saved int
}

// SaveAll 批次儲存所有待儲存項目
// 步驟一（批次建立）失敗時 pending 完全不動，可安全重試
// 步驟一成功後即清空 pending；步驟二（清單重建）失敗只回報 Stale，
// 項目已安全落地，這個不對稱是既定行為
func (s *Store) SaveAll(ctx context.Context, eventID string) (*SaveResult, error) {
	s.mu.Lock()
	ev := s.eventLocked(eventID)
	if ev.saving {
		s.mu.Unlock()
		return nil, common.ErrSaveInProgress
	}
	if len(ev.pending) == 0 {
		s.mu.Unlock()
		return nil, common.ErrNoPendingItems
	}
	ev.saving = true
	toSave := make([]common.LineItem, 0, len(ev.pending))
	for _, item := range ev.pending {
		toSave = append(toSave, item.LineItem)
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		ev.saving = false
		s.mu.Unlock()
	}()

	// 步驟一：批次建立
	if err := s.persister.AddItemsBulk(ctx, eventID, toSave); err != nil {
		common.LogError("批次儲存失敗，保留待儲存項目",
			zap.String("event_id", eventID),
			zap.Int("item_count", len(toSave)),
			zap.Error(err),
		)
		return nil, err
	}

	// 項目已落地，晉升為 persisted
	// 只清掉本次送出的快照；儲存期間新加入的項目仍是 pending，等下一次儲存
	s.mu.Lock()
	saved := make(map[string]bool, len(toSave))
	for _, item := range toSave {
		saved[item.ID] = true
		ev.tracked[item.ID] = common.SourceManual
	}
	var remaining []Item
	for _, item := range ev.pending {
		if !saved[item.ID] {
			remaining = append(remaining, item)
		}
	}
	ev.pending = remaining
	s.mu.Unlock()

	common.LogInfo("批次儲存成功",
		zap.String("event_id", eventID),
		zap.Int("item_count", len(toSave)),
	)

	// 步驟二：重建權威清單
	snapshot, err := s.persister.GenerateShoppingList(ctx, eventID)
	if err != nil {
		common.LogWarn("清單重建失敗，項目已儲存但畫面可能過期",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return &SaveResult{Stale: true, Saved: len(toSave)}, nil
	}

	return &SaveResult{Snapshot: snapshot, Saved: len(toSave)}, nil
}
